// SPDX-License-Identifier: BSD-3-Clause

package updater

import "errors"

var (
	// ErrFetchFailed indicates the release feed could not be reached or
	// parsed.
	ErrFetchFailed = errors.New("update fetch failed")
	// ErrNoReleaseAsset indicates the latest release carries no asset
	// matching the running platform.
	ErrNoReleaseAsset = errors.New("no release asset for this platform")
	// ErrDownloadFailed indicates the matched asset could not be
	// downloaded or written to the target path.
	ErrDownloadFailed = errors.New("update download failed")
)
