// SPDX-License-Identifier: BSD-3-Clause

package vendormap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, path, json string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(json), 0o644))
}

func TestClassifyPicksHighestPriorityThenFileOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vendor-map.json")
	writeRules(t, path, `[
		{"regex": "^k10temp$", "vendor": "AMD", "class": "CPU", "priority": 1},
		{"regex": "temp", "vendor": "Generic", "class": "UNKNOWN", "priority": 1},
		{"regex": "^k10temp$", "vendor": "AMD-high", "class": "CPU", "priority": 5}
	]`)

	m, err := Load(path)
	require.NoError(t, err)

	match, ok := m.Classify("k10temp")
	require.True(t, ok)
	require.Equal(t, "AMD-high", match.Vendor)

	match, ok = m.Classify("coretemp")
	require.True(t, ok)
	require.Equal(t, "Generic", match.Vendor)
}

func TestCaseInsensitiveFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vendor-map.json")
	writeRules(t, path, `[{"regex": "NVIDIA", "vendor": "NVIDIA", "class": "GPU", "priority": 1, "flags": "i"}]`)

	m, err := Load(path)
	require.NoError(t, err)

	match, ok := m.Classify("nvidia-gpu")
	require.True(t, ok)
	require.Equal(t, "NVIDIA", match.Vendor)
}

func TestInvalidFlagIsRuleLoadError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vendor-map.json")
	writeRules(t, path, `[{"regex": "x", "vendor": "v", "class": "c", "priority": 1, "flags": "m"}]`)

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidRule)
}

func TestReloadKeepsPreviousMappingOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vendor-map.json")
	writeRules(t, path, `[{"regex": "^k10temp$", "vendor": "AMD", "class": "CPU", "priority": 1}]`)

	m, err := Load(path)
	require.NoError(t, err)

	writeRules(t, path, `not valid json`)
	err = m.Reload()
	require.Error(t, err)

	match, ok := m.Classify("k10temp")
	require.True(t, ok)
	require.Equal(t, "AMD", match.Vendor)
}
