// SPDX-License-Identifier: BSD-3-Clause

package telemetry

import (
	"time"

	"github.com/lfcd/lfcd/pkg/engine"
	"github.com/lfcd/lfcd/pkg/gpu"
	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/profile"
)

// EngineParams carries the tick-loop knobs that belong in every snapshot
// but aren't themselves engine state (they're daemon configuration).
type EngineParams struct {
	TickMs      int
	DeltaC      float64
	ForceTickMs int
}

// Build assembles a Snapshot from the current engine status, its active
// profile (if any), the hwmon inventory, and the last GPU sample set.
func Build(status engine.Status, activeProfile *profile.Profile, params EngineParams, inv *hwmon.Inventory, gpus []gpu.Device) Snapshot {
	snap := Snapshot{
		Version:       SchemaVersion,
		TimestampMs:   time.Now().UnixMilli(),
		EngineEnabled: status.Enabled,
		TickMs:        params.TickMs,
		DeltaC:        params.DeltaC,
		ForceTickMs:   params.ForceTickMs,
		Hwmon: HwmonSnapshot{
			Chips: inv.AllChips(),
			Temps: inv.AllTemps(),
			Fans:  inv.AllFans(),
			Pwms:  inv.AllPwms(),
		},
		Gpus: gpus,
	}

	if activeProfile != nil {
		controlCount := len(activeProfile.Rules)
		curveCount := 0
		for _, r := range activeProfile.Rules {
			curveCount += len(r.Sources)
		}
		snap.Profile = ProfileSummary{
			Name:         activeProfile.Name,
			Schema:       activeProfile.SchemaVersion,
			Description:  activeProfile.Description,
			CurveCount:   curveCount,
			ControlCount: controlCount,
		}
	}

	return snap
}
