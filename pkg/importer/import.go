// SPDX-License-Identifier: BSD-3-Clause

package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lfcd/lfcd/pkg/detect"
	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/profile"
	"github.com/lfcd/lfcd/pkg/vendormap"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Options configures a single import run.
type Options struct {
	ProfileName    string
	Description    string
	ValidateDetect bool
	RpmMin         int
	DetectTimeout  time.Duration
}

// Result is the outcome of mapping a legacy document against the current
// inventory: the built profile (even if invalid — callers decide whether to
// keep it around for inspection) plus every non-fatal mapping warning.
type Result struct {
	Profile  *profile.Profile
	Warnings []string
	Report   profile.ValidationReport
}

// Import parses data, maps every legacy rule against inv (using vm for
// PWM/fan chip-token resolution), builds a profile.Profile, and validates
// it. A rule whose sensor or fan identifier cannot be resolved at all is a
// hard error aborting the whole import; an ambiguous PWM match is a
// collected warning instead.
func Import(ctx context.Context, inv *hwmon.Inventory, vm *vendormap.Mapper, data []byte, opts Options) (*Result, error) {
	legacyRules, err := parse(data)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Profile: &profile.Profile{
			Name:          opts.ProfileName,
			SchemaVersion: profile.CurrentSchemaVersion,
			Description:   opts.Description,
		},
	}

	for _, lr := range legacyRules {
		tempPath, err := resolveTemp(inv, lr.Sensor)
		if err != nil {
			return nil, err
		}

		pwmPath, warn, err := resolvePwm(inv, vm, lr.FanID)
		if err != nil {
			return nil, err
		}
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}

		rule := profile.Rule{
			PwmPath:  pwmPath,
			Nickname: lr.Identifier,
			Sources: []profile.Source{{
				TempPaths: []string{tempPath},
				Points:    normalizeCurve(lr.Points),
				Settings: profile.Settings{
					MinPercent:         0,
					MaxPercent:         100,
					MixFunction:        profile.MixMax,
					HysteresisC:        lr.Hysteresis,
					ResponseTauSeconds: lr.ResponseTime,
				},
			}},
		}
		res.Profile.Rules = append(res.Profile.Rules, rule)
	}

	res.Report = profile.Validate(res.Profile, inv)
	if !res.Report.Valid {
		return res, fmt.Errorf("%w: %d error(s)", ErrValidationFailed, len(res.Report.Errors))
	}

	if opts.ValidateDetect {
		if err := validateDetect(ctx, inv, res.Profile, opts); err != nil {
			res.Report.Valid = false
			res.Report.Errors = append(res.Report.Errors, err.Error())
			return res, fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
	}

	return res, nil
}

// validateDetect runs a synchronous detection sweep over every PWM the
// profile references and requires each to reach rpmMin on some tach of its
// chip.
func validateDetect(ctx context.Context, inv *hwmon.Inventory, p *profile.Profile, opts Options) error {
	rpmMin := opts.RpmMin
	if rpmMin <= 0 {
		rpmMin = 1
	}
	timeout := opts.DetectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	pwmPaths := make([]string, 0, len(p.Rules))
	for _, r := range p.Rules {
		pwmPaths = append(pwmPaths, r.PwmPath)
	}

	mgr := detect.NewManager(inv, noopSuspender{}, discardLogger(), detect.DefaultSettleDuration, detect.DefaultFloorPercent)
	detectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	job, err := mgr.Start(detectCtx, pwmPaths)
	if err != nil {
		return err
	}
	select {
	case <-job.Done():
	case <-detectCtx.Done():
		job.Abort()
		<-job.Done()
	}

	status := job.Status()
	for i, rpm := range status.PerPwmPeakRpm {
		if rpm < rpmMin {
			return fmt.Errorf("pwm %s did not reach rpmMin=%d (peak %d)", pwmPaths[i], rpmMin, rpm)
		}
	}
	return nil
}

// VerifyMapping runs the same synchronous live-detection gate Import uses
// for ValidateDetect, but against an already-resolved profile (e.g. the
// engine's active one) rather than a freshly parsed legacy document. It
// reuses profile.Validate for the referential/numeric checks first, so a
// profile with a dangling path fails fast without spinning any fans.
func VerifyMapping(ctx context.Context, inv *hwmon.Inventory, p *profile.Profile, rpmMin int, timeout time.Duration) profile.ValidationReport {
	report := profile.Validate(p, inv)
	if !report.Valid {
		return report
	}

	opts := Options{RpmMin: rpmMin, DetectTimeout: timeout}
	if err := validateDetect(ctx, inv, p, opts); err != nil {
		report.Valid = false
		report.Errors = append(report.Errors, err.Error())
	}
	return report
}

type noopSuspender struct{}

func (noopSuspender) Suspend() {}
func (noopSuspender) Resume()  {}
