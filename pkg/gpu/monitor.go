// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"log/slog"
	"sync"
)

// backend is one discovery source. Snapshot returns every device it
// currently sees; a back-end has no separate metric-only refresh call.
type backend interface {
	Name() string
	Snapshot(ctx context.Context) ([]Device, error)
}

// Monitor holds the merged GPU inventory across all configured back-ends.
type Monitor struct {
	mu       sync.RWMutex
	devices  map[string]Device
	order    []string
	backends []backend
	disabled disabledSet
	log      *slog.Logger
}

// New builds a Monitor with the default back-end enumeration order: DRM,
// AMDSMI, NVML, IGCL. A back-end that fails its own internal init check is
// still included here; Snapshot disables it for the process lifetime on
// its first failure.
func New(log *slog.Logger, hwmonRoot string) *Monitor {
	return &Monitor{
		devices: make(map[string]Device),
		backends: []backend{
			newDRMBackend(hwmonRoot),
			newAMDSMIBackend(),
			newNVMLBackend(),
			newIGCLBackend(),
		},
		log: log,
	}
}

// disabled tracks back-ends that failed once and should be skipped on
// subsequent snapshots without re-attempting initialization.
type disabledSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (d *disabledSet) mark(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = make(map[string]bool)
	}
	d.seen[name] = true
}

func (d *disabledSet) is(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[name]
}

// Snapshot re-enumerates every enabled back-end in order, merging results
// into a fresh device set. A back-end that errors is logged once and
// disabled for the remainder of the process.
func (m *Monitor) Snapshot(ctx context.Context) {
	merged := make(map[string]Device)
	var order []string

	for _, b := range m.backends {
		if m.isDisabled(b.Name()) {
			continue
		}
		devs, err := b.Snapshot(ctx)
		if err != nil {
			m.disableBackend(b.Name())
			if m.log != nil {
				m.log.Warn("gpu backend disabled", "backend", b.Name(), "error", err)
			}
			continue
		}
		for _, d := range devs {
			k := d.key()
			if existing, ok := merged[k]; ok {
				merged[k] = merge(existing, d)
			} else {
				merged[k] = d
				order = append(order, k)
			}
		}
	}

	m.mu.Lock()
	m.devices = merged
	m.order = order
	m.mu.Unlock()
}

func (m *Monitor) isDisabled(name string) bool { return m.disabled.is(name) }
func (m *Monitor) disableBackend(name string)  { m.disabled.mark(name) }

// RefreshMetrics applies metric-only samples (as produced by a back-end's
// own lightweight refresh, keyed the same way as Snapshot) to existing
// entries. Devices not already present are not added; that requires a new
// Snapshot.
func (m *Monitor) RefreshMetrics(samples []Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range samples {
		k := s.key()
		if existing, ok := m.devices[k]; ok {
			m.devices[k] = applySample(existing, s)
		}
	}
}

// Close releases any back-end resources that need explicit teardown (only
// the NVML binding currently does).
func (m *Monitor) Close() error {
	for _, b := range m.backends {
		if closer, ok := b.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Devices returns a stable-ordered snapshot of the current inventory.
func (m *Monitor) Devices() []Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Device, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.devices[k])
	}
	return out
}
