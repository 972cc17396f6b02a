// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"

	"github.com/lfcd/lfcd/pkg/gpu"
	"github.com/lfcd/lfcd/pkg/telemetry"
)

func registerTelemetryMethods(d *Dispatcher) {
	d.register("telemetry.json", handleTelemetryJSON)
}

// handleTelemetryJSON builds a fresh snapshot on demand, independent of
// the shared-memory publish cadence, so it stays available even when the
// SHM object failed to map (the publisher degrades to a file in that
// case, but this RPC path never depends on either).
func handleTelemetryJSON(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	params := telemetry.EngineParams{TickMs: d.TickMs, DeltaC: d.DeltaC, ForceTickMs: d.ForceTickMs}

	var gpus []gpu.Device
	if d.GPUMonitor != nil {
		gpus = d.GPUMonitor.Devices()
	}

	return telemetry.Build(d.Engine.Status(), d.Engine.ActiveProfile(), params, d.Inventory, gpus), nil
}
