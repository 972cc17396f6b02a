// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/profile"
)

// ruleState is the per-rule mutable state carried across ticks: hysteresis
// branch, last smoothed output, spin-up window and consecutive failures.
type ruleState struct {
	hysteresis  map[int]*profile.HysteresisState // per-source
	lastOutput  float64
	hasOutput   bool
	lastEvalAt  time.Time
	spinupUntil time.Time
	inSpinup    bool
}

// Engine evaluates an applied Profile against a hwmon.Inventory on each
// tick and writes changed PWM outputs.
type Engine struct {
	mu      sync.Mutex
	inv     *hwmon.Inventory
	log     *slog.Logger
	enabled bool
	suspend bool

	profile *profile.Profile
	states  map[string]*ruleState // keyed by pwmPath

	lastTemps map[string]float64 // path -> last evaluated temperature, for deltaC gating
	lastTick  time.Time
}

// New creates an Engine bound to the given inventory.
func New(inv *hwmon.Inventory, log *slog.Logger) *Engine {
	return &Engine{
		inv:       inv,
		log:       log,
		states:    make(map[string]*ruleState),
		lastTemps: make(map[string]float64),
	}
}

// Enable turns on tick evaluation. A no-op if no profile is applied; the
// caller still gets enabled=true so a profile applied afterward takes
// effect immediately on the next due tick.
func (e *Engine) Enable() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = true
}

// Disable stops tick evaluation; outstanding PWM writes are left as-is.
func (e *Engine) Disable() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = false
}

// Reset disables the engine, drops the active profile, and restores every
// PWM enable mode this engine's writes have put into MANUAL.
func (e *Engine) Reset(ctx context.Context) []error {
	e.mu.Lock()
	e.enabled = false
	e.profile = nil
	e.states = make(map[string]*ruleState)
	e.mu.Unlock()

	return e.inv.ReleaseAllLeases(ctx)
}

// Status is a read-only snapshot of engine state for RPC/telemetry.
type Status struct {
	Enabled     bool   `json:"enabled"`
	Suspended   bool   `json:"suspended"`
	ProfileName string `json:"profileName,omitempty"`
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Status{Enabled: e.enabled, Suspended: e.suspend}
	if e.profile != nil {
		s.ProfileName = e.profile.Name
	}
	return s
}

// ActiveProfile returns the currently applied profile, or nil if none has
// been applied. Callers must treat the result as read-only.
func (e *Engine) ActiveProfile() *profile.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// ApplyProfile atomically swaps the active profile. The engine stays
// disabled until Enable is called explicitly, even for a valid profile.
// Returns the validation report (which may report warnings even when
// Valid=true, e.g. an unused temp path).
func (e *Engine) ApplyProfile(p *profile.Profile) profile.ValidationReport {
	report := profile.Validate(p, e.inv)

	e.mu.Lock()
	e.enabled = false
	e.profile = p
	e.states = make(map[string]*ruleState)
	e.mu.Unlock()

	return report
}

// Suspend marks the engine suspended (a detection job owns all PWMs) so
// Tick becomes a no-op until Resume is called.
func (e *Engine) Suspend() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suspend = true
}

// Resume clears suspension.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suspend = false
}

// DueTick reports whether a tick is due right now given deltaC gating and
// forceTickMs, and the profile's full set of referenced temp paths.
func (e *Engine) DueTick(deltaC float64, forceTickMs int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.profile == nil || !e.enabled || e.suspend {
		return false
	}

	if time.Since(e.lastTick) >= time.Duration(forceTickMs)*time.Millisecond {
		return true
	}

	for _, rule := range e.profile.Rules {
		for _, src := range rule.Sources {
			for _, tp := range src.TempPaths {
				t, ok := e.inv.Temp(tp)
				if !ok || !t.Available {
					continue
				}
				last, seen := e.lastTemps[tp]
				if !seen || absFloat(t.CurrentC-last) >= deltaC {
					return true
				}
			}
		}
	}
	return false
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
