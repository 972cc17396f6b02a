// SPDX-License-Identifier: BSD-3-Clause

// Package log provides the daemon's structured logging setup: zerolog
// underneath a log/slog handler, so every subsystem logs through the
// standard slog API while the actual formatting/level filtering happens in
// zerolog. Rotation is left to the surrounding OS (logrotate, systemd) per
// the daemon's scope; this package only decides console-vs-JSON framing and
// the minimum level.
package log
