// SPDX-License-Identifier: BSD-3-Clause

package engine

import "errors"

var (
	// ErrNoProfile indicates an operation requiring an active profile was
	// attempted while none is applied.
	ErrNoProfile = errors.New("no active profile")
	// ErrSuspended indicates the engine is temporarily suspended (a
	// detection job is running) and tick() is a no-op.
	ErrSuspended = errors.New("engine suspended")
)
