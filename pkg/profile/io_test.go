// SPDX-License-Identifier: BSD-3-Clause

package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{
		Name:          "default",
		SchemaVersion: CurrentSchemaVersion,
		Description:   "test profile",
		Rules: []Rule{
			{
				PwmPath: "/sys/class/hwmon/hwmon0/pwm1",
				Sources: []Source{
					{
						TempPaths: []string{"/sys/class/hwmon/hwmon0/temp1_input"},
						Points:    []CurvePoint{{30, 20}, {60, 80}},
						Settings: Settings{
							MinPercent:         0,
							MaxPercent:         100,
							MixFunction:        MixMax,
							HysteresisC:        5,
							ResponseTauSeconds: 2,
						},
					},
				},
			},
		},
	}

	path, err := Save(dir, p)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, p.Name, loaded.Name)
	require.Equal(t, p.Rules[0].PwmPath, loaded.Rules[0].PwmPath)
	require.Equal(t, p.Rules[0].Sources[0].Points, loaded.Rules[0].Sources[0].Points)
}

func TestLoadMissingFileReturnsNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/profile.json")
	require.ErrorIs(t, err, ErrNotFound)
}
