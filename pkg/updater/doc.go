// SPDX-License-Identifier: BSD-3-Clause

// Package updater checks a configured release feed for a newer daemon
// version and downloads the matching platform asset. The update
// downloader binary itself (an external installer/relauncher) is not
// this package's concern; CheckUpdate and Update only answer "is
// something newer available" and "fetch it to this path".
package updater
