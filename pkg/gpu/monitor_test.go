// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	name string
	devs []Device
	err  error
}

func (f *fakeBackend) Name() string { return f.name }
func (f *fakeBackend) Snapshot(ctx context.Context) ([]Device, error) {
	return f.devs, f.err
}

func TestSnapshotMergesByCompositeKeyWithoutOverwrite(t *testing.T) {
	m := &Monitor{devices: make(map[string]Device)}
	m.backends = []backend{
		&fakeBackend{name: "drm", devs: []Device{{Backend: "drm", PciBDF: "0000:01:00.0", Name: "card0"}}},
		&fakeBackend{name: "nvml", devs: []Device{{Backend: "nvml", PciBDF: "0000:01:00.0", Vendor: "NVIDIA", TempC: 55, TempOK: true}}},
	}

	m.Snapshot(context.Background())

	devs := m.Devices()
	require.Len(t, devs, 1)
	require.Equal(t, "card0", devs[0].Name)
	require.Equal(t, "NVIDIA", devs[0].Vendor)
	require.True(t, devs[0].TempOK)
	require.InDelta(t, 55, devs[0].TempC, 0.001)
}

func TestSnapshotDisablesFailingBackend(t *testing.T) {
	m := &Monitor{devices: make(map[string]Device)}
	failing := &fakeBackend{name: "amdsmi", err: ErrBackendUnavailable}
	m.backends = []backend{failing}

	m.Snapshot(context.Background())
	require.True(t, m.isDisabled("amdsmi"))

	// a subsequent snapshot should not call the backend again (no way to
	// assert a call count here without touching fakeBackend, so just check
	// the result set stays empty and disabled stays true)
	m.Snapshot(context.Background())
	require.Empty(t, m.Devices())
}

func TestRefreshMetricsUpdatesExistingOnly(t *testing.T) {
	m := &Monitor{devices: map[string]Device{
		"bdf:0000:01:00.0": {Backend: "drm", PciBDF: "0000:01:00.0", Name: "card0"},
	}, order: []string{"bdf:0000:01:00.0"}}

	m.RefreshMetrics([]Device{
		{PciBDF: "0000:01:00.0", TempC: 60, TempOK: true},
		{PciBDF: "0000:02:00.0", TempC: 70, TempOK: true}, // unknown, dropped
	})

	devs := m.Devices()
	require.Len(t, devs, 1)
	require.InDelta(t, 60, devs[0].TempC, 0.001)
}
