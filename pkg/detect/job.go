// SPDX-License-Identifier: BSD-3-Clause

package detect

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lfcd/lfcd/pkg/hwmon"
)

// DefaultSettleDuration is the minimum settle window between ramping a PWM
// and recording its peak RPM.
const DefaultSettleDuration = 3 * time.Second

// DefaultFloorPercent is the duty held on every PWM not currently under
// test, expressed as a percentage of its own pwmMax.
const DefaultFloorPercent = 30

// sampleInterval governs how often fan tachs are refreshed during SETTLE.
const sampleInterval = 200 * time.Millisecond

// Suspender is the subset of the control engine a sweep needs: pausing tick
// evaluation for its duration and resuming it afterwards, regardless of
// outcome.
type Suspender interface {
	Suspend()
	Resume()
}

type baseline struct {
	rawValue int
	lease    *hwmon.PwmLease
}

// Manager runs at most one detection sweep at a time.
type Manager struct {
	inv       *hwmon.Inventory
	engine    Suspender
	log       *slog.Logger
	settle    time.Duration
	floorPct  int

	current *Job
}

// NewManager builds a detection job manager. settle and floorPercent fall
// back to DefaultSettleDuration/DefaultFloorPercent when zero.
func NewManager(inv *hwmon.Inventory, engine Suspender, log *slog.Logger, settle time.Duration, floorPercent int) *Manager {
	if settle <= 0 {
		settle = DefaultSettleDuration
	}
	if floorPercent <= 0 {
		floorPercent = DefaultFloorPercent
	}
	return &Manager{inv: inv, engine: engine, log: log, settle: settle, floorPct: floorPercent}
}

// Start launches a sweep over pwmPaths and returns immediately with a handle
// the caller polls via Status/Done. Only one sweep may be active; Start
// returns ErrJobAlreadyRunning while a previous job hasn't finished.
func (m *Manager) Start(ctx context.Context, pwmPaths []string) (*Job, error) {
	if len(pwmPaths) == 0 {
		return nil, ErrNoPwms
	}
	if m.current != nil {
		select {
		case <-m.current.Done():
		default:
			return nil, ErrJobAlreadyRunning
		}
	}

	job, err := newJob(ctx, uuid.NewString(), pwmPaths)
	if err != nil {
		return nil, err
	}
	m.current = job

	go m.run(ctx, job)

	return job, nil
}

// Job returns the current or most recently completed job, if any.
func (m *Manager) Job() (*Job, bool) {
	if m.current == nil {
		return nil, false
	}
	return m.current, true
}

func (m *Manager) run(ctx context.Context, job *Job) {
	job.setRunning(ctx)

	m.engine.Suspend()
	defer m.engine.Resume()

	baselines := m.captureBaseline(ctx, job)

	aborted := false
	for i, path := range job.pwmPaths {
		if job.aborted() {
			aborted = true
			break
		}
		job.setIndex(i)
		m.sweepOne(ctx, job, i, path, baselines)
	}

	m.restore(ctx, job, baselines)

	if aborted || job.aborted() {
		job.finish(ctx, StateAborted, nil)
		return
	}
	job.finish(ctx, StateDone, nil)
}

func (m *Manager) captureBaseline(ctx context.Context, job *Job) map[string]baseline {
	out := make(map[string]baseline, len(job.pwmPaths))
	for _, path := range job.pwmPaths {
		p, ok := m.inv.Pwm(path)
		if !ok {
			continue
		}
		lease, err := m.inv.AcquireLease(ctx, path)
		if err != nil {
			m.log.Warn("detect: acquire lease failed", "pwm", path, "error", err)
		}
		out[path] = baseline{rawValue: p.RawValue, lease: lease}
	}
	return out
}

func (m *Manager) sweepOne(ctx context.Context, job *Job, index int, path string, baselines map[string]baseline) {
	job.setPhase(ctx, "ramp")
	m.applyFloors(ctx, path, baselines)

	p, ok := m.inv.Pwm(path)
	if !ok {
		return
	}
	if err := hwmon.WritePwm(ctx, m.inv, path, p.PwmMax); err != nil {
		m.log.Warn("detect: ramp write failed", "pwm", path, "error", err)
		return
	}

	job.setPhase(ctx, "settle")
	m.settleAndRecord(ctx, job, index, path)

	job.setPhase(ctx, "record")
}

// applyFloors writes every PWM other than target to its configured floor
// percent, leaving target untouched for the caller to ramp.
func (m *Manager) applyFloors(ctx context.Context, target string, baselines map[string]baseline) {
	for path := range baselines {
		if path == target {
			continue
		}
		p, ok := m.inv.Pwm(path)
		if !ok {
			continue
		}
		floorRaw := hwmon.ClampRaw(int(float64(p.PwmMax)*float64(m.floorPct)/100.0+0.5), p.PwmMax)
		if err := hwmon.WritePwm(ctx, m.inv, path, floorRaw); err != nil {
			m.log.Warn("detect: floor write failed", "pwm", path, "error", err)
		}
	}
}

func (m *Manager) settleAndRecord(ctx context.Context, job *Job, index int, path string) {
	p, ok := m.inv.Pwm(path)
	if !ok {
		return
	}

	deadline := time.Now().Add(m.settle)
	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	for {
		hwmon.RefreshValues(ctx, m.inv)
		for _, f := range m.inv.FansOnChip(p.ChipPath) {
			if f.Available {
				job.recordPeak(index, f.Rpm)
			}
		}

		if job.aborted() || time.Now().After(deadline) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (m *Manager) restore(ctx context.Context, job *Job, baselines map[string]baseline) {
	job.setPhase(ctx, "restore")
	for _, path := range job.pwmPaths {
		b, ok := baselines[path]
		if !ok {
			continue
		}
		if err := hwmon.WritePwm(ctx, m.inv, path, b.rawValue); err != nil {
			m.log.Warn("detect: restore write failed", "pwm", path, "error", err)
		}
		if b.lease != nil {
			if err := b.lease.Release(ctx); err != nil {
				m.log.Warn("detect: release lease failed", "pwm", path, "error", err)
			}
		}
	}
}
