// SPDX-License-Identifier: BSD-3-Clause

package detect

import "errors"

var (
	// ErrJobAlreadyRunning indicates a detection job was requested while
	// another one is still active; only one may run at a time.
	ErrJobAlreadyRunning = errors.New("detection job already running")
	// ErrJobNotFound indicates a status/abort request named an unknown job.
	ErrJobNotFound = errors.New("detection job not found")
	// ErrNoPwms indicates a sweep was requested with no PWMs to detect.
	ErrNoPwms = errors.New("no pwms to detect")
)
