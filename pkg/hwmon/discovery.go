// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	hwmonDirPattern = regexp.MustCompile(`^hwmon(\d+)$`)
	tempInputRe     = regexp.MustCompile(`^temp(\d+)_input$`)
	fanInputRe      = regexp.MustCompile(`^fan(\d+)_input$`)
	pwmValueRe      = regexp.MustCompile(`^pwm(\d+)$`)
)

// Discover walks hwmonPath once and builds a fresh Inventory. Called at
// startup and again only when explicitly requested via RPC.
func Discover(ctx context.Context, hwmonPath string) (*Inventory, error) {
	if hwmonPath == "" {
		hwmonPath = DefaultHwmonPath
	}

	entries, err := os.ReadDir(hwmonPath)
	if err != nil {
		return nil, mapFileError(err, hwmonPath)
	}

	type numbered struct {
		n    int
		path string
	}
	var dirs []numbered
	for _, e := range entries {
		m := hwmonDirPattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		dirs = append(dirs, numbered{n, filepath.Join(hwmonPath, e.Name())})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].n < dirs[j].n })

	inv := newInventory()

	for _, d := range dirs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		chip, err := discoverChip(ctx, d.path)
		if err != nil {
			continue
		}
		inv.Chips = append(inv.Chips, chip)

		files, err := os.ReadDir(d.path)
		if err != nil {
			continue
		}
		for _, f := range files {
			name := f.Name()
			fullPath := filepath.Join(d.path, name)

			switch {
			case tempInputRe.MatchString(name):
				idx := tempInputRe.FindStringSubmatch(name)[1]
				t := &TempInput{ChipPath: d.path, InputPath: fullPath}
				t.Label = readLabelQuiet(filepath.Join(d.path, "temp"+idx+"_label"))
				if v, err := ReadIntCtx(ctx, fullPath); err == nil {
					c := float64(v) / 1000.0
					t.CurrentC = c
					t.Available = c >= -20 && c <= 150
				}
				inv.Temps[fullPath] = t

			case fanInputRe.MatchString(name):
				idx := fanInputRe.FindStringSubmatch(name)[1]
				fIn := &FanInput{ChipPath: d.path, InputPath: fullPath}
				fIn.Label = readLabelQuiet(filepath.Join(d.path, "fan"+idx+"_label"))
				if v, err := ReadIntCtx(ctx, fullPath); err == nil {
					fIn.Rpm = v
					fIn.Available = true
				}
				inv.Fans[fullPath] = fIn

			case pwmValueRe.MatchString(name) && !strings.Contains(name, "_"):
				idx := pwmValueRe.FindStringSubmatch(name)[1]
				p := &PwmOutput{ChipPath: d.path, PwmPath: fullPath, PwmMax: 255, EnableMode: EnableUnknown}
				p.Label = readLabelQuiet(filepath.Join(d.path, "pwm"+idx+"_label"))
				enablePath := filepath.Join(d.path, "pwm"+idx+"_enable")
				if FileExistsCtx(ctx, enablePath) {
					p.EnablePath = enablePath
					if v, err := ReadIntCtx(ctx, enablePath); err == nil {
						p.EnableMode = NormalizeEnableMode(v)
					}
				}
				if maxStr := readLabelQuiet(filepath.Join(d.path, "pwm"+idx+"_max")); maxStr != "" {
					if m, err := strconv.Atoi(maxStr); err == nil && m > 0 {
						p.PwmMax = m
					}
				}
				if v, err := ReadIntCtx(ctx, fullPath); err == nil {
					p.RawValue = ClampRaw(v, p.PwmMax)
					p.Percent = Percent(p.RawValue, p.PwmMax)
				}
				inv.Pwms[fullPath] = p
			}
		}
	}

	return inv, nil
}

// discoverChip reads the identity files for a single hwmonN directory.
func discoverChip(ctx context.Context, hwmonDir string) (*Chip, error) {
	name := readLabelQuiet(filepath.Join(hwmonDir, "name"))
	if name == "" {
		name = filepath.Base(hwmonDir)
	}

	chip := &Chip{HwmonPath: hwmonDir, ChipName: name}

	devicePath := filepath.Join(hwmonDir, "device")
	if driverLink, err := os.Readlink(filepath.Join(devicePath, "driver")); err == nil {
		chip.DriverName = filepath.Base(driverLink)
	}

	return chip, nil
}

func readLabelQuiet(path string) string {
	v, err := ReadString(path)
	if err != nil {
		return ""
	}
	return v
}
