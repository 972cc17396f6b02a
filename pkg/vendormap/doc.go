// SPDX-License-Identifier: BSD-3-Clause

// Package vendormap classifies hwmon chip names into a vendor label and a
// class ("CPU", "GPU", "CHIPSET", ...) via a priority-ordered regex rule
// set loaded from JSON, with hot reload on file change.
package vendormap
