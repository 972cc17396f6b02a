// SPDX-License-Identifier: BSD-3-Clause

// Package gpu discovers GPUs across multiple back-ends (DRM sysfs, AMD SMI,
// NVIDIA NVML, Intel IGCL) and merges them into one inventory keyed by a
// composite identity (PCI BDF, then hwmon path, then vendor+name). A
// back-end that fails to initialize is disabled for the process lifetime
// and logged once; per-refresh errors are retried at the next cadence
// rather than torn down.
package gpu
