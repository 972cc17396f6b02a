// SPDX-License-Identifier: BSD-3-Clause

package importer

import "errors"

var (
	// ErrUnsupportedFormat indicates the input JSON matches neither
	// accepted legacy shape.
	ErrUnsupportedFormat = errors.New("unsupported fancontrol-legacy format")
	// ErrUnresolvedTemp indicates a sensor identifier could not be mapped
	// to any temp input on the current system.
	ErrUnresolvedTemp = errors.New("unresolved temperature sensor")
	// ErrUnresolvedPwm indicates a fan/pwm identifier could not be mapped
	// to any pwm output on the current system.
	ErrUnresolvedPwm = errors.New("unresolved pwm output")
	// ErrValidationFailed indicates the mapped profile failed validation
	// (paths, curve monotonicity, settings bounds, or live detection).
	ErrValidationFailed = errors.New("import validation failed")
	// ErrJobNotFound indicates a status/commit/cancel request named an
	// unknown import job.
	ErrJobNotFound = errors.New("import job not found")
	// ErrNotCancelable indicates a cancel was requested against a job that
	// already reached a terminal state.
	ErrNotCancelable = errors.New("import job is not cancelable")
)
