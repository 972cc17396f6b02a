// SPDX-License-Identifier: BSD-3-Clause

package config

import "errors"

var (
	// ErrInvalidConfig indicates the merged configuration failed range or
	// shape validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownKey indicates a config.set RPC named a field this package
	// doesn't know how to address.
	ErrUnknownKey = errors.New("unknown configuration key")
	// ErrSaveFailed indicates the configuration file could not be written.
	ErrSaveFailed = errors.New("configuration save failed")
)
