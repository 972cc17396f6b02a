// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// drmBackend enumerates /sys/class/drm/cardN/device entries directly,
// needing no CGO binding. It normalises the "cardN" placeholder identity
// to a PCI BDF when the device's symlink target resolves to one; when it
// doesn't, the field is left as the DRM card name.
type drmBackend struct {
	drmRoot   string
	hwmonRoot string
}

func newDRMBackend(hwmonRoot string) *drmBackend {
	return &drmBackend{drmRoot: "/sys/class/drm", hwmonRoot: hwmonRoot}
}

func (b *drmBackend) Name() string { return "drm" }

var cardDirRe = regexp.MustCompile(`^card[0-9]+$`)

func (b *drmBackend) Snapshot(ctx context.Context) ([]Device, error) {
	entries, err := os.ReadDir(b.drmRoot)
	if err != nil {
		return nil, ErrBackendUnavailable
	}

	var out []Device
	for _, e := range entries {
		if !cardDirRe.MatchString(e.Name()) {
			continue
		}
		devicePath := filepath.Join(b.drmRoot, e.Name(), "device")
		if _, err := os.Stat(devicePath); err != nil {
			continue
		}

		d := Device{Backend: b.Name(), Name: e.Name()}

		if bdf := resolveBDF(devicePath); bdf != "" {
			d.PciBDF = bdf
		}

		if vendor, err := readHexFile(filepath.Join(devicePath, "vendor")); err == nil {
			d.Vendor = vendorName(vendor)
		}

		if hwmonPath := findHwmonUnder(devicePath); hwmonPath != "" {
			d.HwmonPath = hwmonPath
			if t, ok := readTempInput(hwmonPath); ok {
				d.TempC = t
				d.TempOK = true
			}
		}

		out = append(out, d)
	}
	return out, nil
}

// resolveBDF resolves the "device" symlink target's base name, which for a
// real PCI device is its BDF address (e.g. "0000:01:00.0").
func resolveBDF(devicePath string) string {
	target, err := os.Readlink(devicePath)
	if err != nil {
		return ""
	}
	base := filepath.Base(target)
	if strings.Count(base, ":") >= 2 {
		return base
	}
	return ""
}

func readHexFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func vendorName(hexID string) string {
	switch strings.ToLower(hexID) {
	case "0x10de":
		return "NVIDIA"
	case "0x1002":
		return "AMD"
	case "0x8086":
		return "Intel"
	default:
		return hexID
	}
}

// findHwmonUnder returns the first hwmonN directory under device/hwmon, if
// the DRM device exposes one directly (common for integrated GPUs).
func findHwmonUnder(devicePath string) string {
	root := filepath.Join(devicePath, "hwmon")
	entries, err := os.ReadDir(root)
	if err != nil || len(entries) == 0 {
		return ""
	}
	return filepath.Join(root, entries[0].Name())
}

func readTempInput(hwmonPath string) (float64, bool) {
	data, err := os.ReadFile(filepath.Join(hwmonPath, "temp1_input"))
	if err != nil {
		return 0, false
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return float64(milli) / 1000.0, true
}
