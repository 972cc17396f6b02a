// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lfcd/lfcd/pkg/importer"
	"github.com/lfcd/lfcd/pkg/profile"
)

func registerProfileMethods(d *Dispatcher) {
	d.register("profile.list", handleListProfiles) // shared with list.profiles
	d.register("profile.getActive", handleProfileGetActive)
	d.register("profile.setActive", handleProfileSetActive)
	d.register("profile.load", handleProfileLoad)
	d.register("profile.save", handleProfileSave)
	d.register("profile.rename", handleProfileRename)
	d.register("profile.delete", handleProfileDelete)
	d.register("profile.import", handleProfileImport)
	d.register("profile.importAs", handleProfileImportAs)
	d.register("profile.importStatus", handleProfileImportStatus)
	d.register("profile.importJobs", handleProfileImportJobs)
	d.register("profile.importCommit", handleProfileImportCommit)
	d.register("profile.importCancel", handleProfileImportCancel)
	d.register("profile.verifyMapping", handleProfileVerifyMapping)
}

func handleProfileGetActive(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	p := d.Engine.ActiveProfile()
	if p == nil {
		return nil, nil
	}
	return p, nil
}

type profileNameParams struct {
	Name string `json:"name"`
}

func handleProfileSetActive(ctx context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[profileNameParams](params)
	if err != nil {
		return nil, err
	}
	loaded, err := profile.Load(filepath.Join(d.ProfilesDir, p.Name+".json"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileNotFound, err)
	}

	v, err := d.Bus.Submit(ctx, func(ctx context.Context) (any, error) {
		report := d.Engine.ApplyProfile(loaded)
		return report, nil
	})
	return v, err
}

type profilePathParams struct {
	Path string `json:"path"`
}

func handleProfileLoad(_ context.Context, _ *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[profilePathParams](params)
	if err != nil {
		return nil, err
	}
	loaded, err := profile.Load(p.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileNotFound, err)
	}
	return loaded, nil
}

func handleProfileSave(_ context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[profile.Profile](params)
	if err != nil {
		return nil, err
	}
	path, err := profile.Save(d.ProfilesDir, &p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileSaveFailed, err)
	}
	return map[string]string{"path": path}, nil
}

type profileRenameParams struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

func handleProfileRename(_ context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[profileRenameParams](params)
	if err != nil {
		return nil, err
	}
	path, err := profile.Rename(d.ProfilesDir, p.OldName, p.NewName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileNotFound, err)
	}
	return map[string]string{"path": path}, nil
}

func handleProfileDelete(_ context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[profileNameParams](params)
	if err != nil {
		return nil, err
	}
	if err := profile.Delete(d.ProfilesDir, p.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileNotFound, err)
	}
	return map[string]bool{"deleted": true}, nil
}

type profileImportParams struct {
	Data           json.RawMessage `json:"data"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	ValidateDetect bool            `json:"validateDetect"`
	RpmMin         int             `json:"rpmMin"`
	TimeoutMs      int             `json:"timeoutMs"`
}

func (p profileImportParams) toOptions() importer.Options {
	return importer.Options{
		ProfileName:    p.Name,
		Description:    p.Description,
		ValidateDetect: p.ValidateDetect,
		RpmMin:         p.RpmMin,
		DetectTimeout:  time.Duration(p.TimeoutMs) * time.Millisecond,
	}
}

// handleProfileImport runs a synchronous import: parse + map + validate
// (and optionally live-detect) before returning. No job ID is involved.
func handleProfileImport(ctx context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[profileImportParams](params)
	if err != nil {
		return nil, err
	}
	res, err := importer.Import(ctx, d.Inventory, d.VendorMap, p.Data, p.toOptions())
	if err != nil {
		return res, err
	}
	return res, nil
}

// handleProfileImportAs starts an asynchronous import job and returns its
// ID immediately; the caller polls importStatus.
func handleProfileImportAs(_ context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[profileImportParams](params)
	if err != nil {
		return nil, err
	}
	job, err := d.ImportMgr.Start(context.Background(), p.Data, p.toOptions())
	if err != nil {
		return nil, err
	}
	return map[string]string{"jobId": job.Status().ID}, nil
}

type jobIDParams struct {
	JobID string `json:"jobId"`
}

func handleProfileImportStatus(_ context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[jobIDParams](params)
	if err != nil {
		return nil, err
	}
	job, ok := d.ImportMgr.Job(p.JobID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportJobNotFound, p.JobID)
	}
	return job.Status(), nil
}

func handleProfileImportJobs(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	return d.ImportMgr.Jobs(), nil
}

func handleProfileImportCommit(ctx context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[jobIDParams](params)
	if err != nil {
		return nil, err
	}

	v, err := d.Bus.Submit(ctx, func(ctx context.Context) (any, error) {
		path, report, err := d.ImportMgr.Commit(p.JobID, d.ProfilesDir, d.Engine)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportCommitFailed, err)
		}
		return map[string]any{"path": path, "validationReport": report}, nil
	})
	return v, err
}

func handleProfileImportCancel(_ context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[jobIDParams](params)
	if err != nil {
		return nil, err
	}
	if err := d.ImportMgr.Cancel(p.JobID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportNotCancelable, err)
	}
	return map[string]bool{"canceled": true}, nil
}

type verifyMappingParams struct {
	Name      string `json:"name"`
	RpmMin    int    `json:"rpmMin"`
	TimeoutMs int    `json:"timeoutMs"`
}

func handleProfileVerifyMapping(ctx context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[verifyMappingParams](params)
	if err != nil {
		return nil, err
	}

	var target *profile.Profile
	if p.Name == "" {
		target = d.Engine.ActiveProfile()
		if target == nil {
			return nil, fmt.Errorf("%w: no active profile and no name given", ErrInvalidParams)
		}
	} else {
		loaded, err := profile.Load(filepath.Join(d.ProfilesDir, p.Name+".json"))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProfileNotFound, err)
		}
		target = loaded
	}

	timeout := time.Duration(p.TimeoutMs) * time.Millisecond
	report := importer.VerifyMapping(ctx, d.Inventory, target, p.RpmMin, timeout)
	return report, nil
}
