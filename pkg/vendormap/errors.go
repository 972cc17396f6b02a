// SPDX-License-Identifier: BSD-3-Clause

package vendormap

import "errors"

var (
	// ErrInvalidRule indicates a rule failed to compile or had an
	// unsupported inline regex flag.
	ErrInvalidRule = errors.New("invalid vendor-map rule")
	// ErrLoadFailed indicates the rule file could not be read or parsed;
	// callers should keep the previous mapping in effect.
	ErrLoadFailed = errors.New("vendor map load failed")
)
