// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lfcd/lfcd/pkg/config"
	"github.com/lfcd/lfcd/pkg/updater"
)

// runCheckUpdate answers --check-update: is a newer release published.
func runCheckUpdate(ctx context.Context, log *slog.Logger) int {
	u := updater.New(updater.Config{})
	available, latest, err := u.CheckUpdate(ctx, version)
	if err != nil {
		log.Error("update check failed", "error", err)
		return exitUpdateOrDaemonErr
	}
	if available {
		log.Info("update available", "current", version, "latest", latest)
	} else {
		log.Info("up to date", "version", version)
	}
	return exitOK
}

// runUpdate answers --update: fetch the release asset matching this
// platform to --update-target and exit, distinguishing "nothing to
// download for this platform" (exit 3) from any other download failure
// (exit 4) per the daemon's documented exit codes.
func runUpdate(ctx context.Context, log *slog.Logger, result *config.LoadResult) int {
	u := updater.New(updater.Config{})

	available, latest, err := u.CheckUpdate(ctx, version)
	if err != nil {
		log.Error("update check failed", "error", err)
		return exitUpdateOrDaemonErr
	}
	if !available {
		log.Info("already up to date", "version", version)
		return exitOK
	}

	if err := u.Update(ctx, result.UpdateTarget); err != nil {
		if errors.Is(err, updater.ErrNoReleaseAsset) {
			log.Error("no release asset for this platform", "error", err)
			return exitNoReleaseAsset
		}
		log.Error("update download failed", "error", err)
		return exitUpdateDownload
	}

	log.Info("update downloaded", "latest", latest, "target", result.UpdateTarget)
	return exitOK
}
