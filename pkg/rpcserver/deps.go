// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"

	"github.com/lfcd/lfcd/pkg/detect"
	"github.com/lfcd/lfcd/pkg/engine"
	"github.com/lfcd/lfcd/pkg/gpu"
	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/importer"
	"github.com/lfcd/lfcd/pkg/vendormap"
)

// ConfigStore is the subset of daemon configuration the RPC surface can
// read and mutate. Implemented by pkg/config's Store so rpcserver
// never needs to import it directly.
type ConfigStore interface {
	Load() (any, error)
	Save() error
	Set(key string, value any) error
}

// Updater is the subset of update-checking the daemon.update method
// needs. Implemented by pkg/updater.
type Updater interface {
	CheckUpdate(ctx context.Context, currentVersion string) (available bool, latestVersion string, err error)
	Update(ctx context.Context, targetPath string) error
}

// DaemonController lets daemon.{restart,shutdown} trigger the run loop's
// shutdown cascade without rpcserver importing cmd/lfcd.
type DaemonController interface {
	Shutdown()
	Restart()
}

// Deps bundles every subsystem the method handlers read or mutate. Engine
// mutations go through Bus.Submit from inside a handler; config, profile
// file, detection and import handlers call their subsystem directly, and
// Deps fields themselves are never locked by rpcserver.
type Deps struct {
	Bus *CommandBus

	Engine      *engine.Engine
	Inventory   *hwmon.Inventory
	GPUMonitor  *gpu.Monitor
	VendorMap   *vendormap.Mapper
	DetectMgr   *detect.Manager
	ImportMgr   *importer.Manager
	Config      ConfigStore
	Updater     Updater
	Controller  DaemonController

	ProfilesDir string
	Version     string
	TickMs      int
	DeltaC      float64
	ForceTickMs int
}
