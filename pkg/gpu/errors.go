// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "errors"

// ErrBackendUnavailable indicates a back-end could not be initialized on
// this host (missing tool, missing library, no matching device) and has
// been disabled for the process lifetime.
var ErrBackendUnavailable = errors.New("gpu backend unavailable")
