// SPDX-License-Identifier: BSD-3-Clause

package vendormap

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchMode selects how rule-file changes are detected.
type WatchMode string

const (
	// WatchMtime polls the file's modification time at Throttle intervals.
	WatchMtime WatchMode = "mtime"
	// WatchNotify uses OS file-change notifications (fsnotify).
	WatchNotify WatchMode = "notify"
)

// Watch reloads m whenever its backing file changes, until ctx is
// cancelled. Reload failures are logged and the previous mapping stays
// active; the function never returns early on a reload error.
func Watch(ctx context.Context, m *Mapper, mode WatchMode, throttle time.Duration, log *slog.Logger) {
	if throttle <= 0 {
		throttle = 3 * time.Second
	}

	switch mode {
	case WatchNotify:
		watchNotify(ctx, m, throttle, log)
	default:
		watchMtime(ctx, m, throttle, log)
	}
}

func watchMtime(ctx context.Context, m *Mapper, throttle time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(throttle)
	defer ticker.Stop()

	lastMod := statModTime(m.Path())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mod := statModTime(m.Path())
			if mod.IsZero() || mod.Equal(lastMod) {
				continue
			}
			lastMod = mod
			reload(m, log)
		}
	}
}

func statModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func watchNotify(ctx context.Context, m *Mapper, throttle time.Duration, log *slog.Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		if log != nil {
			log.Error("vendor map notify watcher unavailable, falling back to polling", "error", err)
		}
		watchMtime(ctx, m, throttle, log)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(m.Path()); err != nil {
		if log != nil {
			log.Error("vendor map notify watch add failed, falling back to polling", "error", err)
		}
		watchMtime(ctx, m, throttle, log)
		return
	}

	var lastReload time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(lastReload) < throttle {
				continue
			}
			lastReload = time.Now()
			reload(m, log)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if log != nil {
				log.Error("vendor map notify watcher error", "error", err)
			}
		}
	}
}

func reload(m *Mapper, log *slog.Logger) {
	if err := m.Reload(); err != nil && log != nil {
		log.Error("vendor map reload failed, keeping previous mapping", "error", err)
	}
}
