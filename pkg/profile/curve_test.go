// SPDX-License-Identifier: BSD-3-Clause

package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateCurveInterpolatesAndClamps(t *testing.T) {
	points := []CurvePoint{{30, 20}, {60, 80}}

	require.Equal(t, 20.0, EvaluateCurve(points, 10))
	require.Equal(t, 50.0, EvaluateCurve(points, 45))
	require.Equal(t, 80.0, EvaluateCurve(points, 90))
}

func TestEvaluateCurveMonotoneFriendly(t *testing.T) {
	points := []CurvePoint{{20, 10}, {40, 40}, {70, 90}}
	prev := EvaluateCurve(points, 0)
	for t2 := 1.0; t2 <= 100; t2++ {
		cur := EvaluateCurve(points, t2)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

// TestHysteresisScenario reproduces the end-to-end literal scenario: points
// [(30,20),(60,80)], hysteresis 5C, tau=0 (no smoothing).
func TestHysteresisScenario(t *testing.T) {
	points := []CurvePoint{{30, 20}, {60, 80}}
	var h HysteresisState

	require.Equal(t, 50.0, h.Apply(points, 45, 5))

	require.Equal(t, 80.0, h.Apply(points, 70, 5))

	// falling back to 45: effective curve uses curve(45+5)=curve(50)=60
	require.Equal(t, 60.0, h.Apply(points, 45, 5))

	// falling further to 35: curve(40)=40
	require.Equal(t, 40.0, h.Apply(points, 35, 5))
}

func TestMixFunctions(t *testing.T) {
	vals := []float64{10, 30, 20}
	require.Equal(t, 30.0, Mix(MixMax, vals))
	require.Equal(t, 10.0, Mix(MixMin, vals))
	require.InDelta(t, 20.0, Mix(MixAvg, vals), 0.001)
}

func TestSmoothInstantWhenTauZero(t *testing.T) {
	require.Equal(t, 40.0, Smooth(20, 40, 0.05, 0))
}

func TestSmoothApproachesTargetOverTime(t *testing.T) {
	out := 0.0
	for i := 0; i < 1000; i++ {
		out = Smooth(out, 100, 0.05, 1.0)
	}
	require.InDelta(t, 100.0, out, 0.5)
}
