// SPDX-License-Identifier: BSD-3-Clause

package importer

import (
	"sort"

	"github.com/lfcd/lfcd/pkg/profile"
)

// normalizeCurve converts legacy points to percent-axis CurvePoints sorted
// by temperature. Y values are treated as a 0..1 fraction (converted to
// percent) whenever every point's Y is at most 1.0; otherwise Y is assumed
// to already be a 0..100 percent.
func normalizeCurve(points []legacyPoint) []profile.CurvePoint {
	fraction := true
	for _, p := range points {
		if p.Y > 1.0 {
			fraction = false
			break
		}
	}

	out := make([]profile.CurvePoint, len(points))
	for i, p := range points {
		pct := p.Y
		if fraction {
			pct *= 100.0
		}
		out[i] = profile.CurvePoint{TempC: p.X, Percent: pct}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TempC < out[j].TempC })
	return out
}
