// SPDX-License-Identifier: BSD-3-Clause

package telemetry

import "errors"

var (
	// ErrShmUnavailable indicates the POSIX shared-memory object could not
	// be created or mapped; the publisher falls back to a regular file.
	ErrShmUnavailable = errors.New("shared memory unavailable")
	// ErrSnapshotTooLarge indicates a published document doesn't fit the
	// configured capacity.
	ErrSnapshotTooLarge = errors.New("snapshot exceeds shm capacity")
	// ErrClosed indicates a publish was attempted after Close.
	ErrClosed = errors.New("publisher closed")
)
