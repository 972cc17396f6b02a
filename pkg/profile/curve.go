// SPDX-License-Identifier: BSD-3-Clause

package profile

import "math"

// EvaluateCurve performs piecewise-linear interpolation across points,
// clamping at the endpoints. Points are assumed sorted non-decreasing by
// TempC (SortPoints / Validate enforce this on load). Monotone-friendly:
// EvaluateCurve(c, t1) <= EvaluateCurve(c, t2) whenever t1 <= t2 and the
// curve's own points are monotone non-decreasing.
func EvaluateCurve(points []CurvePoint, tempC float64) float64 {
	if len(points) == 0 {
		return 0
	}
	if tempC <= points[0].TempC {
		return points[0].Percent
	}
	last := points[len(points)-1]
	if tempC >= last.TempC {
		return last.Percent
	}

	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if tempC <= b.TempC {
			if b.TempC == a.TempC {
				return b.Percent
			}
			frac := (tempC - a.TempC) / (b.TempC - a.TempC)
			return a.Percent + frac*(b.Percent-a.Percent)
		}
	}
	return last.Percent
}

// Mix reduces a slice of values according to fn. Returns 0 for an empty
// slice (callers should treat "no available input" separately).
func Mix(fn MixFunction, values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	switch fn {
	case MixMin:
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case MixAvg:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values))
	case MixMax:
		fallthrough
	default:
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m
	}
}

// HysteresisState tracks the rising/falling branch for one rule's output,
// per the daemon's two-branch hysteresis design: while rising, the curve is
// followed as given; while falling, the effective output is
// curve(T+hysteresisC), only flipping branch once temperature has moved
// past the boundary by hysteresisC.
type HysteresisState struct {
	Rising   bool
	lastT    float64
	hasLastT bool
	peakT    float64 // highest T seen on the current rising branch
	troughT  float64 // lowest T seen on the current falling branch
}

// Apply advances the hysteresis state for the latest mixed temperature and
// returns the effective target percent before smoothing. The branch flips
// only once temperature has moved past the current branch's extreme by
// hysteresisC: falling flips rising->falling once T has dropped
// hysteresisC below the branch's peak; rising flips falling->rising once T
// has risen hysteresisC above the branch's trough.
func (h *HysteresisState) Apply(points []CurvePoint, tempC, hysteresisC float64) float64 {
	if !h.hasLastT {
		h.hasLastT = true
		h.lastT = tempC
		h.peakT = tempC
		h.troughT = tempC
		h.Rising = true
	}

	if h.Rising {
		if tempC > h.peakT {
			h.peakT = tempC
		}
		if tempC < h.lastT && h.peakT-tempC >= hysteresisC {
			h.Rising = false
			h.troughT = tempC
		}
	} else {
		if tempC < h.troughT {
			h.troughT = tempC
		}
		if tempC > h.lastT && tempC-h.troughT >= hysteresisC {
			h.Rising = true
			h.peakT = tempC
		}
	}
	h.lastT = tempC

	if h.Rising {
		return EvaluateCurve(points, tempC)
	}
	return EvaluateCurve(points, tempC+hysteresisC)
}

// Smooth applies exponential smoothing with time constant tauSeconds:
// out_new = out_prev + (target-out_prev)*(1-exp(-dt/tau)). tau<=0 or dt<=0
// returns target unsmoothed (instant response).
func Smooth(prev, target, dtSeconds, tauSeconds float64) float64 {
	if tauSeconds <= 0 || dtSeconds <= 0 {
		return target
	}
	alpha := 1 - math.Exp(-dtSeconds/tauSeconds)
	return prev + (target-prev)*alpha
}

// Clamp constrains v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SortPoints orders points non-decreasing by TempC in place (stable).
func SortPoints(points []CurvePoint) {
	for i := 1; i < len(points); i++ {
		for j := i; j > 0 && points[j-1].TempC > points[j].TempC; j-- {
			points[j-1], points[j] = points[j], points[j-1]
		}
	}
}
