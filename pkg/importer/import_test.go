// SPDX-License-Identifier: BSD-3-Clause

package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/profile"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func buildLabeledInventory(t *testing.T) *hwmon.Inventory {
	t.Helper()
	root := t.TempDir()
	chip := filepath.Join(root, "hwmon0")

	writeFile(t, filepath.Join(chip, "name"), "nct6779\n")
	writeFile(t, filepath.Join(chip, "temp1_input"), "45000\n")
	writeFile(t, filepath.Join(chip, "temp1_label"), "CPU Package\n")
	writeFile(t, filepath.Join(chip, "pwm1"), "0\n")
	writeFile(t, filepath.Join(chip, "pwm1_enable"), "2\n")

	inv, err := hwmon.Discover(context.Background(), root)
	require.NoError(t, err)
	return inv
}

func buildDriverHeuristicInventory(t *testing.T) *hwmon.Inventory {
	t.Helper()
	root := t.TempDir()
	chip := filepath.Join(root, "hwmon0")

	writeFile(t, filepath.Join(chip, "name"), "coretemp\n")
	deviceDir := filepath.Join(chip, "device")
	require.NoError(t, os.MkdirAll(deviceDir, 0o755))
	writeFile(t, filepath.Join(chip, "temp1_input"), "50000\n")
	writeFile(t, filepath.Join(chip, "pwm1"), "0\n")
	writeFile(t, filepath.Join(chip, "pwm1_enable"), "2\n")

	inv, err := hwmon.Discover(context.Background(), root)
	require.NoError(t, err)

	for _, chipEntry := range inv.Chips {
		chipEntry.DriverName = "coretemp"
	}
	return inv
}

func TestImportControlsShapeExactLabelMatch(t *testing.T) {
	inv := buildLabeledInventory(t)

	doc := `{
		"Controls": [
			{"Name": "cpu-fan", "Sensor": "CPU Package", "FanId": "nct6779/1",
			 "Curve": [{"X": 30, "Y": 0.2}, {"X": 70, "Y": 0.8}],
			 "Hysteresis": 2, "ResponseTime": 1.5}
		]
	}`

	res, err := Import(context.Background(), inv, nil, []byte(doc), Options{ProfileName: "imported"})
	require.NoError(t, err)
	require.True(t, res.Report.Valid)
	require.Len(t, res.Profile.Rules, 1)

	rule := res.Profile.Rules[0]
	require.Equal(t, "cpu-fan", rule.Nickname)
	require.Len(t, rule.Sources, 1)
	require.Equal(t, []profile.CurvePoint{{TempC: 30, Percent: 20}, {TempC: 70, Percent: 80}}, rule.Sources[0].Points)
	require.Equal(t, 2.0, rule.Sources[0].Settings.HysteresisC)
}

func TestImportMappingsShapeWithDriverHeuristic(t *testing.T) {
	inv := buildDriverHeuristicInventory(t)

	doc := `{
		"Curves": [{"Id": "c1", "Points": [{"X": 40, "Y": 30}, {"X": 80, "Y": 90}]}],
		"Mappings": [{"CurveId": "c1", "Sensor": "coretemp/1", "PwmId": "coretemp/1"}]
	}`

	res, err := Import(context.Background(), inv, nil, []byte(doc), Options{ProfileName: "imported"})
	require.NoError(t, err)
	require.True(t, res.Report.Valid)
	require.Len(t, res.Profile.Rules, 1)
	require.Equal(t, []profile.CurvePoint{{TempC: 40, Percent: 30}, {TempC: 80, Percent: 90}}, res.Profile.Rules[0].Sources[0].Points)
}

func TestImportUnresolvedSensorReturnsError(t *testing.T) {
	inv := buildLabeledInventory(t)

	doc := `{"Controls": [{"Sensor": "does-not-exist", "FanId": "nct6779/1", "Curve": [{"X": 30, "Y": 20}]}]}`

	_, err := Import(context.Background(), inv, nil, []byte(doc), Options{ProfileName: "x"})
	require.ErrorIs(t, err, ErrUnresolvedTemp)
}

func TestImportUnsupportedShapeReturnsError(t *testing.T) {
	inv := buildLabeledInventory(t)
	_, err := Import(context.Background(), inv, nil, []byte(`{"Something": []}`), Options{ProfileName: "x"})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
