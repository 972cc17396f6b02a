// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"time"

	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/profile"
)

// Tick runs one evaluation pass over every rule in the active profile and
// writes any PWM whose computed raw value differs from its last write. It
// is a no-op returning (nil, ErrNoProfile) or (nil, ErrSuspended) when the
// engine isn't ready to evaluate; callers (the daemon run loop) should treat
// both as "skip this tick", not as fatal errors.
//
// Per rule the steps are: read cached temps for each source -> mix per
// source -> curve lookup -> hysteresis -> mix across sources ->
// exponential smoothing -> clamp to [min,max] -> spin-up override ->
// compare against the last written raw value and write only on change.
// Smoothing is applied once per rule, to the value mixed across sources;
// individual source outputs are not smoothed.
func (e *Engine) Tick(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	if e.profile == nil {
		e.mu.Unlock()
		return nil, ErrNoProfile
	}
	if !e.enabled {
		e.mu.Unlock()
		return nil, ErrSuspended
	}
	if e.suspend {
		e.mu.Unlock()
		return nil, ErrSuspended
	}
	p := e.profile
	now := time.Now()
	var dt float64
	if !e.lastTick.IsZero() {
		dt = now.Sub(e.lastTick).Seconds()
	}
	e.lastTick = now
	e.mu.Unlock()

	var changed []string

	for _, rule := range p.Rules {
		pwm, ok := e.inv.Pwm(rule.PwmPath)
		if !ok {
			if e.log != nil {
				e.log.Warn("rule references missing pwm, skipping", "pwmPath", rule.PwmPath)
			}
			continue
		}
		if pwm.Degraded() {
			if e.log != nil {
				e.log.Warn("pwm degraded, skipping rule", "pwmPath", rule.PwmPath)
			}
			continue
		}

		e.mu.Lock()
		st, ok := e.states[rule.PwmPath]
		if !ok {
			st = &ruleState{hysteresis: make(map[int]*profile.HysteresisState)}
			e.states[rule.PwmPath] = st
		}
		e.mu.Unlock()

		sourceOutputs := make([]float64, 0, len(rule.Sources))
		anySource := false

		for si, src := range rule.Sources {
			temps, ok := e.readSourceTemps(src.TempPaths)
			if !ok {
				continue
			}
			anySource = true

			mixedTemp := profile.Mix(src.Settings.MixFunction, temps)

			hs, ok := st.hysteresis[si]
			if !ok {
				hs = &profile.HysteresisState{}
				st.hysteresis[si] = hs
			}
			target := hs.Apply(src.Points, mixedTemp, src.Settings.HysteresisC)
			sourceOutputs = append(sourceOutputs, target)
		}

		if !anySource {
			if e.log != nil {
				e.log.Warn("rule has no available temperature sources, skipping", "pwmPath", rule.PwmPath)
			}
			continue
		}

		settings := rule.Sources[0].Settings
		mixed := profile.Mix(settings.MixFunction, sourceOutputs)

		prevOut := mixed
		if st.hasOutput {
			prevOut = st.lastOutput
		}
		smoothed := profile.Smooth(prevOut, mixed, dt, settings.ResponseTauSeconds)
		st.lastOutput = smoothed
		st.hasOutput = true

		clamped := profile.Clamp(smoothed, settings.MinPercent, settings.MaxPercent)

		effective := clamped
		if settings.SpinupPercent != nil && settings.SpinupDurationMs != nil {
			effective = applySpinup(st, now, prevOut, clamped, *settings.SpinupPercent, *settings.SpinupDurationMs)
		}

		rawTarget := hwmon.ClampRaw(int((effective/100.0)*float64(pwm.PwmMax)+0.5), pwm.PwmMax)

		if rawTarget == pwm.RawValue {
			continue
		}

		if err := hwmon.WritePwm(ctx, e.inv, rule.PwmPath, rawTarget); err != nil {
			if e.log != nil {
				e.log.Error("pwm write failed", "pwmPath", rule.PwmPath, "error", err)
			}
			continue
		}
		changed = append(changed, rule.PwmPath)
	}

	return changed, nil
}

// readSourceTemps resolves a source's temp paths to current readings,
// skipping unavailable ones, and records each path's last-seen value (under
// e.mu) for DueTick's deltaC gating. Returns ok=false if none resolve.
func (e *Engine) readSourceTemps(paths []string) ([]float64, bool) {
	var out []float64
	for _, path := range paths {
		t, ok := e.inv.Temp(path)
		if !ok || !t.Available {
			continue
		}
		e.mu.Lock()
		e.lastTemps[path] = t.CurrentC
		e.mu.Unlock()
		out = append(out, t.CurrentC)
	}
	return out, len(out) > 0
}

// applySpinup forces the output to spinupPercent for spinupDurationMs
// whenever the target crosses from zero (or near-zero) to a nonzero
// target, to help fans that stall at low duty actually start spinning.
// prevOut must be the smoothed output from before this tick overwrote
// st.lastOutput, or the zero-to-nonzero transition is never observed.
func applySpinup(st *ruleState, now time.Time, prevOut, target, spinupPercent float64, spinupDurationMs int) float64 {
	const stoppedThreshold = 1.0

	wasStopped := !st.inSpinup && prevOut < stoppedThreshold
	if wasStopped && target >= stoppedThreshold {
		st.inSpinup = true
		st.spinupUntil = now.Add(time.Duration(spinupDurationMs) * time.Millisecond)
	}

	if st.inSpinup {
		if now.After(st.spinupUntil) {
			st.inSpinup = false
		} else if target < spinupPercent {
			return spinupPercent
		}
	}

	return target
}
