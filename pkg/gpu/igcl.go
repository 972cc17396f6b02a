// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "context"

// igclBackend represents Intel's Level-Zero/IGCL GPU metrics API. No Go
// binding for it exists anywhere in the corpus this daemon draws its
// dependency stack from, and adding CGO against a vendor C library is out
// of step with the rest of this package's pure-Go back-ends; it is wired
// here as a backend that reports itself unavailable on the first
// Snapshot, so Monitor disables it once (logged) rather than special-
// casing "no Intel support" at every call site. Intel discrete GPUs are
// still covered by the DRM back-end's sysfs enumeration.
type igclBackend struct{}

func newIGCLBackend() *igclBackend {
	return &igclBackend{}
}

func (b *igclBackend) Name() string { return "igcl" }

func (b *igclBackend) Snapshot(ctx context.Context) ([]Device, error) {
	return nil, ErrBackendUnavailable
}
