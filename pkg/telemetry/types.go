// SPDX-License-Identifier: BSD-3-Clause

package telemetry

import (
	"github.com/lfcd/lfcd/pkg/gpu"
	"github.com/lfcd/lfcd/pkg/hwmon"
)

// SchemaVersion is stamped into every published Snapshot. Fields evolve
// additively; readers should ignore unknown fields rather than reject them.
const SchemaVersion = 1

// ProfileSummary is the active profile's identity and size, not its full
// rule set — readers wanting rule detail call profile.getActive over RPC.
type ProfileSummary struct {
	Name         string `json:"name,omitempty"`
	Schema       int    `json:"schema,omitempty"`
	Description  string `json:"description,omitempty"`
	CurveCount   int    `json:"curveCount"`
	ControlCount int    `json:"controlCount"`
}

// HwmonSnapshot is the full inventory, minus the lease/refresh bookkeeping
// that is process-internal.
type HwmonSnapshot struct {
	Chips []*hwmon.Chip        `json:"chips"`
	Temps []*hwmon.TempInput   `json:"temps"`
	Fans  []*hwmon.FanInput    `json:"fans"`
	Pwms  []*hwmon.PwmOutput   `json:"pwms"`
}

// Snapshot is the JSON document root written to shared memory on each
// publish.
type Snapshot struct {
	Version       int            `json:"version"`
	TimestampMs   int64          `json:"timestampMs"`
	EngineEnabled bool           `json:"engineEnabled"`
	TickMs        int            `json:"tickMs"`
	DeltaC        float64        `json:"deltaC"`
	ForceTickMs   int            `json:"forceTickMs"`
	Profile       ProfileSummary `json:"profile"`
	Hwmon         HwmonSnapshot  `json:"hwmon"`
	Gpus          []gpu.Device   `json:"gpus"`
}
