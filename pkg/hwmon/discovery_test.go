// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func buildFakeHwmonTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	chip := filepath.Join(root, "hwmon0")

	writeFile(t, filepath.Join(chip, "name"), "k10temp\n")
	writeFile(t, filepath.Join(chip, "temp1_input"), "45000\n")
	writeFile(t, filepath.Join(chip, "temp1_label"), "Tctl\n")
	writeFile(t, filepath.Join(chip, "fan1_input"), "1200\n")
	writeFile(t, filepath.Join(chip, "pwm1"), "128\n")
	writeFile(t, filepath.Join(chip, "pwm1_enable"), "2\n")

	return root
}

func TestDiscoverBuildsInventory(t *testing.T) {
	root := buildFakeHwmonTree(t)

	inv, err := Discover(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, inv.Chips, 1)
	require.Equal(t, "k10temp", inv.Chips[0].ChipName)

	tempPath := filepath.Join(root, "hwmon0", "temp1_input")
	temp, ok := inv.Temp(tempPath)
	require.True(t, ok)
	require.Equal(t, "Tctl", temp.Label)
	require.InDelta(t, 45.0, temp.CurrentC, 0.001)
	require.True(t, temp.Available)

	pwmPath := filepath.Join(root, "hwmon0", "pwm1")
	pwm, ok := inv.Pwm(pwmPath)
	require.True(t, ok)
	require.Equal(t, 128, pwm.RawValue)
	require.Equal(t, 50, pwm.Percent)
	require.Equal(t, EnableManual, pwm.EnableMode)
}

func TestRefreshValuesDropsVanishedEntries(t *testing.T) {
	root := buildFakeHwmonTree(t)
	inv, err := Discover(context.Background(), root)
	require.NoError(t, err)

	tempPath := filepath.Join(root, "hwmon0", "temp1_input")
	require.NoError(t, os.Remove(tempPath))

	RefreshValues(context.Background(), inv)
	_, ok := inv.Temp(tempPath)
	require.False(t, ok)
}

func TestAcquireLeaseCapturesAndRestoresPriorMode(t *testing.T) {
	root := buildFakeHwmonTree(t)
	inv, err := Discover(context.Background(), root)
	require.NoError(t, err)

	pwmPath := filepath.Join(root, "hwmon0", "pwm1")
	lease, err := inv.AcquireLease(context.Background(), pwmPath)
	require.NoError(t, err)

	pwm, _ := inv.Pwm(pwmPath)
	require.Equal(t, EnableManual, pwm.EnableMode)

	require.NoError(t, lease.Release(context.Background()))

	v, err := ReadString(filepath.Join(root, "hwmon0", "pwm1_enable"))
	require.NoError(t, err)
	require.Equal(t, "2", v)
}
