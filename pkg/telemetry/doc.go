// SPDX-License-Identifier: BSD-3-Clause

// Package telemetry publishes a single-writer, many-reader JSON snapshot of
// the daemon's state into a POSIX shared-memory object (or, failing that,
// a regular file readers poll instead). Every engine tick, and at least
// every forceTickMs even if nothing changed, the latest complete snapshot
// replaces whatever was there before in one memcpy, preceded by a fixed
// 24-byte header readers can inspect to detect a new publish without
// re-parsing the body.
package telemetry
