// SPDX-License-Identifier: BSD-3-Clause

package profile

import "errors"

var (
	// ErrInvalidProfile indicates a structurally or semantically invalid
	// profile (unknown path, bad curve, out-of-range settings).
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrNotFound indicates a named profile does not exist on disk.
	ErrNotFound = errors.New("profile not found")
	// ErrSaveFailed indicates a profile could not be persisted.
	ErrSaveFailed = errors.New("profile save failed")
)
