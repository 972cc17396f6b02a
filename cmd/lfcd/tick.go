// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"time"

	"github.com/lfcd/lfcd/pkg/config"
	"github.com/lfcd/lfcd/pkg/engine"
	"github.com/lfcd/lfcd/pkg/gpu"
	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/rpcserver"
	"github.com/lfcd/lfcd/pkg/telemetry"
)

const (
	minPollInterval = 1 * time.Millisecond
	maxPollInterval = 50 * time.Millisecond
)

// runTickLoop polls for a due engine tick at the configured cadence,
// clamped to [1ms, 50ms] per §5, and submits the tick+publish work through
// bus so it always executes on the single-threaded command-bus goroutine
// alongside RPC-driven mutations — never directly on this poller.
func runTickLoop(ctx context.Context, bus *rpcserver.CommandBus, eng *engine.Engine, pub *telemetry.Publisher, inv *hwmon.Inventory, gpuMon *gpu.Monitor, cfg config.EngineConfig) {
	interval := time.Duration(cfg.TickMs) * time.Millisecond
	if interval < minPollInterval {
		interval = minPollInterval
	}
	if interval > maxPollInterval {
		interval = maxPollInterval
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			if !eng.DueTick(cfg.DeltaC, cfg.ForceTickMs) {
				continue
			}
			_, _ = bus.Submit(ctx, func(ctx context.Context) (any, error) {
				_, tickErr := eng.Tick(ctx)

				snap := telemetry.Build(eng.Status(), eng.ActiveProfile(), telemetry.EngineParams{
					TickMs:      cfg.TickMs,
					DeltaC:      cfg.DeltaC,
					ForceTickMs: cfg.ForceTickMs,
				}, inv, gpuMon.Devices())

				_ = pub.Publish(snap)
				return nil, tickErr
			})
		case <-ctx.Done():
			return
		}
	}
}
