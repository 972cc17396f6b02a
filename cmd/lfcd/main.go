// SPDX-License-Identifier: BSD-3-Clause

// Command lfcd is the fan-control daemon's composition root: it parses
// configuration, wires every subsystem package together, and runs the
// daemon's worker group until a shutdown is requested.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lfcd/lfcd/pkg/config"
	"github.com/lfcd/lfcd/pkg/log"
)

// version is overwritten at build time via -ldflags "-X main.version=...".
var version = "dev"

// Exit codes, per the daemon's documented external interface: 0 normal or
// successful update, 1 update fetch or daemonization failure, 2
// initialisation or missing required argument, 3 no release assets during
// update, 4 update download failed.
const (
	exitOK                = 0
	exitUpdateOrDaemonErr = 1
	exitInitErr           = 2
	exitNoReleaseAsset    = 3
	exitUpdateDownload    = 4
)

func main() {
	result, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitInitErr)
	}

	logger := log.New(log.Config{
		Output:  logOutput(result),
		Console: result.Foreground,
		Debug:   result.Config.Log.Debug,
	})

	ctx := context.Background()

	switch {
	case result.CheckUpdate:
		os.Exit(runCheckUpdate(ctx, logger))
	case result.Update:
		os.Exit(runUpdate(ctx, logger, result))
	default:
		os.Exit(runDaemon(ctx, logger, result))
	}
}

// logOutput opens the configured log file, falling back to stdout when
// unset or unopenable (a logger that can't write anywhere is worse than
// one that writes to the wrong place).
func logOutput(result *config.LoadResult) *os.File {
	if result.Config.Log.File == "" {
		return os.Stdout
	}
	f, err := os.OpenFile(result.Config.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lfcd: opening log file %s: %v, logging to stdout\n", result.Config.Log.File, err)
		return os.Stdout
	}
	return f
}
