// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"context"
	"fmt"
)

// maxConsecutiveFailures before a PWM is reported degraded and skipped by
// the engine (see PwmOutput.Degraded).
const maxConsecutiveFailures = 3

// RefreshValues reopens every already-registered file and refreshes its
// cached value. Entries whose backing file has vanished are dropped; no new
// entries are added (that requires a fresh Discover). Guaranteed O(existing).
func RefreshValues(ctx context.Context, inv *Inventory) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	for path, t := range inv.Temps {
		v, err := ReadIntCtx(ctx, path)
		if err != nil {
			if isGone(err) {
				delete(inv.Temps, path)
				continue
			}
			t.Available = false
			continue
		}
		c := float64(v) / 1000.0
		t.CurrentC = c
		t.Available = c >= -20 && c <= 150
	}

	for path, f := range inv.Fans {
		v, err := ReadIntCtx(ctx, path)
		if err != nil {
			if isGone(err) {
				delete(inv.Fans, path)
				continue
			}
			f.Available = false
			continue
		}
		f.Rpm = v
		f.Available = true
	}

	for path, p := range inv.Pwms {
		v, err := ReadIntCtx(ctx, path)
		if err != nil {
			if isGone(err) {
				delete(inv.Pwms, path)
			}
			continue
		}
		p.mu.Lock()
		p.RawValue = ClampRaw(v, p.PwmMax)
		p.Percent = Percent(p.RawValue, p.PwmMax)
		p.mu.Unlock()
	}
}

func isGone(err error) bool {
	return err != nil && (isErr(err, ErrFileNotFound) || isErr(err, ErrDeviceNotFound))
}

func isErr(err, target error) bool {
	for err != nil {
		if err == target { //nolint:errorlint
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// WritePwm clamps rawValue to [0, pwmMax], ensures the enable file (if any)
// is in MANUAL mode, and writes the raw duty value. It updates the
// in-memory cache and the per-PWM failure counter used to mark a PWM
// degraded after three consecutive failures.
func WritePwm(ctx context.Context, inv *Inventory, path string, rawValue int) error {
	p, ok := inv.Pwm(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	raw := ClampRaw(rawValue, p.PwmMax)

	if p.EnablePath != "" {
		if _, err := inv.AcquireLease(ctx, path); err != nil {
			return recordFailure(p, err)
		}
	}

	if err := WriteIntCtx(ctx, path, raw); err != nil {
		return recordFailure(p, err)
	}

	p.mu.Lock()
	p.RawValue = raw
	p.Percent = Percent(raw, p.PwmMax)
	p.consecutiveFail = 0
	p.degraded = false
	p.mu.Unlock()
	return nil
}

func recordFailure(p *PwmOutput, cause error) error {
	p.mu.Lock()
	p.consecutiveFail++
	if p.consecutiveFail >= maxConsecutiveFailures {
		p.degraded = true
	}
	p.mu.Unlock()
	return cause
}

// Degraded reports whether a PWM has hit three consecutive write failures
// and should be skipped by the engine until a write succeeds again.
func (p *PwmOutput) Degraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degraded
}

// WriteEnable writes the enable file directly, bypassing lease bookkeeping.
// Used by lease Release and by explicit RPC-driven enable-mode changes.
func WriteEnable(ctx context.Context, enablePath string, mode EnableMode) error {
	return WriteIntCtx(ctx, enablePath, int(mode))
}
