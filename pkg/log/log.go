// SPDX-License-Identifier: BSD-3-Clause

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// Config controls how New builds the daemon's structured logger.
type Config struct {
	// Output is the destination writer. Defaults to os.Stdout.
	Output io.Writer
	// Console switches on human-readable console formatting instead of
	// JSON-lines; typically enabled together with --foreground.
	Console bool
	// Debug lowers the minimum level to debug.
	Debug bool
}

// New builds a component-agnostic root logger. Call With to scope it to a
// subsystem (hwmon, engine, gpu, rpc, detect, import, vendormap, telemetry).
//
// Log rotation is intentionally not handled here; it is delegated to
// logrotate/systemd-journald around the configured output file.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	var writer io.Writer = out
	if cfg.Console {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	level := slog.LevelInfo
	zlevel := zerolog.InfoLevel
	if cfg.Debug {
		level = slog.LevelDebug
		zlevel = zerolog.DebugLevel
	}

	zl := zerolog.New(writer).Level(zlevel).With().Timestamp().Logger()

	handler := slogzerolog.Option{Level: level, Logger: &zl}.NewZerologHandler()
	return slog.New(handler)
}

// Component returns a child logger tagged with the given subsystem name, the
// same way every subsystem in this daemon identifies itself in its log
// lines.
func Component(base *slog.Logger, name string) *slog.Logger {
	return base.With(slog.String("component", name))
}

// ParseLevel maps a level string from config/env into a slog.Level, wrapping
// unknown values in ErrLogLevel.
func ParseLevel(s string) (slog.Level, error) {
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrLogLevel, s)
	}
}
