// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon discovers and operates on the Linux kernel's hwmon sysfs
// tree (/sys/class/hwmon/hwmonN). It is split into three layers:
//
//   - low-level file I/O (hwmon.go): context-aware ReadInt/WriteInt/
//     ReadString/WriteString/FileExists, each going through a goroutine+
//     select so a wedged sysfs file cannot hang a caller past its context
//     deadline.
//   - discovery (discovery.go): a one-time walk, built directly on
//     os.ReadDir/regexp rather than this package's own I/O primitives
//     beyond ReadInt/ReadString/FileExists, that builds an Inventory of
//     Chip/TempInput/FanInput/PwmOutput entries.
//   - access (access.go): cheap cached reads, clamped PWM writes, and
//     enable-mode lease management (lease.go) for the engine and detection
//     jobs to share without either one fighting the other over which mode
//     a PWM should be left in on exit.
//
// Inventory entries are referenced by path string everywhere outside this
// package (profiles, telemetry, RPC responses) so a later re-discovery never
// invalidates state held elsewhere.
package hwmon
