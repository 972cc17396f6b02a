// SPDX-License-Identifier: BSD-3-Clause

package detect

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lfcd/lfcd/pkg/hwmon"
)

type fakeSuspender struct {
	suspended bool
	calls     int
}

func (f *fakeSuspender) Suspend() { f.suspended = true; f.calls++ }
func (f *fakeSuspender) Resume()  { f.suspended = false }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// buildTwoPwmChip writes a single fake hwmon chip with two pwm/fan pairs
// sharing one tach each, so a sweep has something to ramp and to float at a
// floor.
func buildTwoPwmChip(t *testing.T) (*hwmon.Inventory, []string) {
	t.Helper()
	root := t.TempDir()
	chip := filepath.Join(root, "hwmon0")

	writeFile(t, filepath.Join(chip, "name"), "testchip\n")
	writeFile(t, filepath.Join(chip, "pwm1"), "50\n")
	writeFile(t, filepath.Join(chip, "pwm1_enable"), "2\n")
	writeFile(t, filepath.Join(chip, "fan1_input"), "1200\n")
	writeFile(t, filepath.Join(chip, "pwm2"), "50\n")
	writeFile(t, filepath.Join(chip, "pwm2_enable"), "2\n")
	writeFile(t, filepath.Join(chip, "fan2_input"), "1200\n")

	inv, err := hwmon.Discover(context.Background(), root)
	require.NoError(t, err)

	return inv, []string{filepath.Join(chip, "pwm1"), filepath.Join(chip, "pwm2")}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSweepRampsEachPwmAndRestoresBaseline(t *testing.T) {
	inv, paths := buildTwoPwmChip(t)
	eng := &fakeSuspender{}
	mgr := NewManager(inv, eng, testLogger(), 10*time.Millisecond, 20)

	job, err := mgr.Start(context.Background(), paths)
	require.NoError(t, err)

	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not finish")
	}

	status := job.Status()
	require.Equal(t, StateDone, status.State)
	require.Len(t, status.PerPwmPeakRpm, 2)
	for _, rpm := range status.PerPwmPeakRpm {
		require.Equal(t, 1200, rpm)
	}

	for _, path := range paths {
		p, ok := inv.Pwm(path)
		require.True(t, ok)
		require.Equal(t, 50, p.RawValue)
	}

	require.True(t, eng.calls >= 1)
	require.False(t, eng.suspended)
}

func TestStartRejectsConcurrentSweep(t *testing.T) {
	inv, paths := buildTwoPwmChip(t)
	eng := &fakeSuspender{}
	mgr := NewManager(inv, eng, testLogger(), 50*time.Millisecond, 20)

	_, err := mgr.Start(context.Background(), paths)
	require.NoError(t, err)

	_, err = mgr.Start(context.Background(), paths)
	require.ErrorIs(t, err, ErrJobAlreadyRunning)
}

func TestStartWithNoPwmsReturnsError(t *testing.T) {
	inv, _ := buildTwoPwmChip(t)
	eng := &fakeSuspender{}
	mgr := NewManager(inv, eng, testLogger(), time.Millisecond, 20)

	_, err := mgr.Start(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoPwms)
}

func TestAbortStillRestoresBaseline(t *testing.T) {
	inv, paths := buildTwoPwmChip(t)
	eng := &fakeSuspender{}
	mgr := NewManager(inv, eng, testLogger(), time.Second, 20)

	job, err := mgr.Start(context.Background(), paths)
	require.NoError(t, err)

	job.Abort()

	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("aborted sweep did not finish")
	}

	require.Equal(t, StateAborted, job.Status().State)
	for _, path := range paths {
		p, ok := inv.Pwm(path)
		require.True(t, ok)
		require.Equal(t, 50, p.RawValue)
	}
}
