// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lfcd/lfcd/pkg/updater"
)

func registerDaemonMethods(d *Dispatcher) {
	d.register("daemon.restart", handleDaemonRestart)
	d.register("daemon.shutdown", handleDaemonShutdown)
	d.register("daemon.update", handleDaemonUpdate)
}

func handleDaemonRestart(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	d.Controller.Restart()
	return map[string]bool{"restarting": true}, nil
}

func handleDaemonShutdown(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	d.Controller.Shutdown()
	return map[string]bool{"shuttingDown": true}, nil
}

type daemonUpdateParams struct {
	TargetPath string `json:"targetPath"`
}

func handleDaemonUpdate(ctx context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[daemonUpdateParams](params)
	if err != nil {
		return nil, err
	}

	available, latest, err := d.Updater.CheckUpdate(ctx, d.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpdateFetchFailed, err)
	}
	if !available {
		return map[string]any{"updated": false, "latestVersion": latest}, nil
	}

	if err := d.Updater.Update(ctx, p.TargetPath); err != nil {
		if errors.Is(err, updater.ErrNoReleaseAsset) {
			return nil, fmt.Errorf("%w: %v", ErrUpdateNoAsset, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpdateDownload, err)
	}
	return map[string]any{"updated": true, "latestVersion": latest}, nil
}
