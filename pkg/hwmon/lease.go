// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"context"
	"fmt"
	"sync"
)

// PwmLease is the owned handle described in the daemon's design notes:
// whichever caller first puts a PWM into MANUAL mode captures the prior
// enable mode here, and Release restores it. A second AcquireLease call for
// the same path is a no-op that returns the existing lease, so the engine
// and a detection job sharing a PWM never fight over who restores it.
type PwmLease struct {
	inv        *Inventory
	path       string
	enablePath string
	priorMode  EnableMode

	mu       sync.Mutex
	released bool
}

// AcquireLease transitions a PWM's enable file to MANUAL if it isn't
// already, recording whatever mode it found so Release can put it back.
// Safe to call repeatedly for the same path; only the first call performs
// the write and capture.
func (inv *Inventory) AcquireLease(ctx context.Context, pwmPath string) (*PwmLease, error) {
	p, ok := inv.Pwm(pwmPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, pwmPath)
	}
	if p.EnablePath == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoEnablePath, pwmPath)
	}

	inv.mu.Lock()
	if existing, ok := inv.leases[pwmPath]; ok {
		inv.mu.Unlock()
		return existing, nil
	}
	inv.mu.Unlock()

	prior, err := ReadIntCtx(ctx, p.EnablePath)
	if err != nil {
		return nil, err
	}
	priorMode := NormalizeEnableMode(prior)

	if priorMode != EnableManual {
		if err := WriteEnable(ctx, p.EnablePath, EnableManual); err != nil {
			return nil, err
		}
	}

	lease := &PwmLease{inv: inv, path: pwmPath, enablePath: p.EnablePath, priorMode: priorMode}

	inv.mu.Lock()
	if existing, ok := inv.leases[pwmPath]; ok {
		inv.mu.Unlock()
		return existing, nil
	}
	inv.leases[pwmPath] = lease
	inv.mu.Unlock()

	p.mu.Lock()
	p.EnableMode = EnableManual
	p.mu.Unlock()

	return lease, nil
}

// Release restores the PWM's enable mode to whatever it was before this
// lease was acquired. Idempotent: subsequent calls are no-ops. Best-effort
// on shutdown paths — callers in the run loop log but do not fail if
// Release returns an error (the enable file may have already vanished).
func (l *PwmLease) Release(ctx context.Context) error {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return nil
	}
	l.released = true
	l.mu.Unlock()

	l.inv.mu.Lock()
	delete(l.inv.leases, l.path)
	l.inv.mu.Unlock()

	if l.priorMode == EnableManual {
		return nil
	}
	return WriteEnable(ctx, l.enablePath, l.priorMode)
}

// ReleaseAllLeases restores every outstanding lease, used on daemon
// shutdown and on engine.reset. Errors are collected but do not stop the
// sweep — every lease gets an attempt.
func (inv *Inventory) ReleaseAllLeases(ctx context.Context) []error {
	inv.mu.Lock()
	leases := make([]*PwmLease, 0, len(inv.leases))
	for _, l := range inv.leases {
		leases = append(leases, l)
	}
	inv.mu.Unlock()

	var errs []error
	for _, l := range leases {
		if err := l.Release(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
