// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/oklog/run"

	"github.com/lfcd/lfcd/pkg/config"
	"github.com/lfcd/lfcd/pkg/detect"
	"github.com/lfcd/lfcd/pkg/engine"
	"github.com/lfcd/lfcd/pkg/file"
	"github.com/lfcd/lfcd/pkg/gpu"
	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/importer"
	"github.com/lfcd/lfcd/pkg/log"
	"github.com/lfcd/lfcd/pkg/profile"
	"github.com/lfcd/lfcd/pkg/rpcserver"
	"github.com/lfcd/lfcd/pkg/telemetry"
	"github.com/lfcd/lfcd/pkg/updater"
	"github.com/lfcd/lfcd/pkg/vendormap"
)

// runDaemon is the composition root described in §4.9: it wires every
// subsystem together, runs the worker group until shutdown is requested,
// and cascades the shutdown sequence before returning an exit code.
func runDaemon(parent context.Context, root *slog.Logger, result *config.LoadResult) int {
	cfg := result.Config

	if err := writePidFile(cfg.PidFile); err != nil {
		root.Error("pid file", "error", err)
		return exitInitErr
	}
	defer os.Remove(cfg.PidFile)

	inv, err := hwmon.Discover(parent, "")
	if err != nil {
		root.Error("hwmon discovery failed", "error", err)
		return exitInitErr
	}

	gpuMon := gpu.New(log.Component(root, "gpu"), "")
	gpuMon.Snapshot(parent)
	defer func() { _ = gpuMon.Close() }()

	vm := &vendormap.Mapper{}
	if cfg.VendorMapPath != "" {
		loaded, err := vendormap.Load(cfg.VendorMapPath)
		if err != nil {
			root.Warn("vendor map load failed, starting with no rules", "path", cfg.VendorMapPath, "error", err)
		} else {
			vm = loaded
		}
	}

	eng := engine.New(inv, log.Component(root, "engine"))
	if cfg.Profiles.Active != "" {
		p, err := profile.Load(filepath.Join(cfg.Profiles.Dir, cfg.Profiles.Active+".json"))
		if err != nil {
			root.Warn("active profile load failed, starting with no profile applied", "profile", cfg.Profiles.Active, "error", err)
		} else {
			report := eng.ApplyProfile(p)
			if !report.Valid {
				root.Warn("active profile failed validation on load", "profile", cfg.Profiles.Active, "errors", report.Errors)
			}
		}
	}

	pub, err := telemetry.NewPublisher(telemetry.Config{ShmName: cfg.Shm.Path})
	if err != nil {
		root.Warn("telemetry running in degraded (fallback file) mode", "error", err)
	}
	defer func() { _ = pub.Close() }()

	detectMgr := detect.NewManager(inv, eng, log.Component(root, "detect"), 0, 0)
	importMgr := importer.NewManager(inv, vm, log.Component(root, "import"))

	rootCtx, cancel := context.WithCancel(parent)
	defer cancel()
	ctrl := newController(cancel)

	store := config.NewStore(result.ConfigPath, *cfg)
	bus := rpcserver.NewCommandBus()

	deps := &rpcserver.Deps{
		Bus: bus,

		Engine:     eng,
		Inventory:  inv,
		GPUMonitor: gpuMon,
		VendorMap:  vm,
		DetectMgr:  detectMgr,
		ImportMgr:  importMgr,
		Config:     store,
		Updater:    updater.New(updater.Config{}),
		Controller: ctrl,

		ProfilesDir: cfg.Profiles.Dir,
		Version:     version,
		TickMs:      cfg.Engine.TickMs,
		DeltaC:      cfg.Engine.DeltaC,
		ForceTickMs: cfg.Engine.ForceTickMs,
	}

	server := rpcserver.New(rpcserver.Config{Host: cfg.RPC.Host, Port: cfg.RPC.Port}, deps, log.Component(root, "rpc"))

	var g run.Group

	g.Add(func() error {
		bus.Run(rootCtx)
		return nil
	}, func(error) { cancel() })

	g.Add(func() error {
		return server.Run(rootCtx)
	}, func(error) { cancel() })

	g.Add(func() error {
		runTickLoop(rootCtx, bus, eng, pub, inv, gpuMon, cfg.Engine)
		return nil
	}, func(error) { cancel() })

	g.Add(func() error {
		runPeriodic(rootCtx, time.Duration(cfg.HwmonRefreshMs)*time.Millisecond, func() {
			hwmon.RefreshValues(rootCtx, inv)
		})
		return nil
	}, func(error) { cancel() })

	g.Add(func() error {
		runPeriodic(rootCtx, time.Duration(cfg.GPURefreshMs)*time.Millisecond, func() {
			gpuMon.Snapshot(rootCtx)
		})
		return nil
	}, func(error) { cancel() })

	if cfg.VendorMapPath != "" {
		throttle := time.Duration(cfg.VendorMapThrottleMs) * time.Millisecond
		g.Add(func() error {
			vendormap.Watch(rootCtx, vm, cfg.VendorMapWatch(), throttle, log.Component(root, "vendormap"))
			return nil
		}, func(error) { cancel() })
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	g.Add(func() error {
		select {
		case <-sig:
			root.Info("signal received, shutting down")
		case <-rootCtx.Done():
		}
		return nil
	}, func(error) {
		cancel()
		signal.Stop(sig)
		close(sig)
	})

	runErr := g.Run()

	if restoreErrs := eng.Reset(context.Background()); len(restoreErrs) > 0 {
		for _, e := range restoreErrs {
			root.Warn("pwm restore on shutdown failed", "error", e)
		}
	}

	if ctrl.restartRequested() {
		root.Info("restart requested, exiting for supervisor respawn")
	}

	if runErr != nil {
		root.Error("daemon worker exited with error", "error", runErr)
		return exitUpdateOrDaemonErr
	}
	return exitOK
}

// writePidFile creates cfg.PidFile exclusively, so a second instance
// refuses to start rather than silently fighting the first for PWM
// ownership.
func writePidFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pid file directory: %w", err)
	}
	data := []byte(fmt.Sprintf("%d\n", os.Getpid()))
	if err := file.AtomicCreateFile(path, data, 0o644); err != nil {
		if errors.Is(err, file.ErrFileAlreadyExists) {
			return fmt.Errorf("another instance is already running (%s exists): %w", path, err)
		}
		return err
	}
	return nil
}

// runPeriodic calls fn every interval until ctx is canceled. A
// non-positive interval is clamped to 1s so a misconfigured zero refresh
// rate degrades to "slow" rather than "busy-loop".
func runPeriodic(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			fn()
		case <-ctx.Done():
			return
		}
	}
}
