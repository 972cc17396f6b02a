// SPDX-License-Identifier: BSD-3-Clause

package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/vendormap"
)

// driverHeuristics is the fallback order used when a sensor identifier
// doesn't exactly match any temp*_label, tried as a case-insensitive
// substring of the identifier against each hwmon driver name.
var driverHeuristics = []string{"k10temp", "coretemp", "amdgpu", "nvme", "acpitz"}

// splitIdentifier pulls a trailing "/N" or "N" index suffix off an
// identifier, returning the remaining token and the parsed index (-1 if
// none was present).
func splitIdentifier(id string) (string, int) {
	token := id
	rest := ""
	if i := strings.LastIndexAny(id, "/:"); i >= 0 {
		token, rest = id[:i], id[i+1:]
	} else {
		token, rest = id, id
	}
	return token, trailingDigits(rest)
}

// trailingDigits peels a trailing run of decimal digits off s (e.g.
// "temp1" -> 1, "pwm2" -> 2) and returns -1 if s has none.
func trailingDigits(s string) int {
	j := len(s)
	for j > 0 && s[j-1] >= '0' && s[j-1] <= '9' {
		j--
	}
	if j == len(s) {
		return -1
	}
	n, err := strconv.Atoi(s[j:])
	if err != nil {
		return -1
	}
	return n
}

// resolveTemp maps a legacy sensor identifier to a temp*_input path. Exact
// label matches win; otherwise a driver-name heuristic is tried.
func resolveTemp(inv *hwmon.Inventory, sensor string) (string, error) {
	for _, path := range sortedTempPaths(inv) {
		t, _ := inv.Temp(path)
		if t.Label != "" && strings.EqualFold(t.Label, sensor) {
			return path, nil
		}
	}

	token, index := splitIdentifier(sensor)
	lowerToken := strings.ToLower(token)
	for _, driver := range driverHeuristics {
		if !strings.Contains(lowerToken, driver) && !strings.Contains(strings.ToLower(sensor), driver) {
			continue
		}
		var candidates []*hwmon.TempInput
		for _, chip := range inv.Chips {
			if chip.DriverName != driver {
				continue
			}
			temps := inv.TempsOnChip(chip.HwmonPath)
			sort.Slice(temps, func(i, j int) bool { return temps[i].InputPath < temps[j].InputPath })
			candidates = append(candidates, temps...)
		}
		if len(candidates) == 0 {
			continue
		}
		if index >= 0 && index < len(candidates) {
			return candidates[index].InputPath, nil
		}
		return candidates[0].InputPath, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnresolvedTemp, sensor)
}

func sortedTempPaths(inv *hwmon.Inventory) []string {
	var out []string
	for _, chip := range inv.Chips {
		for _, t := range inv.TempsOnChip(chip.HwmonPath) {
			out = append(out, t.InputPath)
		}
	}
	sort.Strings(out)
	return out
}

// resolvePwm maps a legacy fan/pwm identifier to a pwmN path via chip
// name/driver match or the vendor map's chip classification, taking the
// PWM at the identifier's trailing index among the chip's PWMs sorted by
// path, or the first one when the index is absent or out of range. No
// fanN_input is paired with the result. Returns a non-empty warning when
// more than one chip matched the identifier's token (the first is used).
func resolvePwm(inv *hwmon.Inventory, vm *vendormap.Mapper, fanID string) (path string, warning string, err error) {
	token, index := splitIdentifier(fanID)

	var candidates []*hwmon.Chip
	for _, chip := range inv.Chips {
		if strings.EqualFold(chip.DriverName, token) || strings.EqualFold(chip.ChipName, token) {
			candidates = append(candidates, chip)
			continue
		}
		if vm == nil {
			continue
		}
		match, ok := vm.Classify(chip.ChipName)
		if !ok {
			continue
		}
		if strings.EqualFold(match.Vendor, token) || strings.EqualFold(match.Class, token) {
			candidates = append(candidates, chip)
		}
	}

	if len(candidates) == 0 {
		return "", "", fmt.Errorf("%w: %s", ErrUnresolvedPwm, fanID)
	}
	if len(candidates) > 1 {
		warning = fmt.Sprintf("fan identifier %q matched %d chips; using %s", fanID, len(candidates), candidates[0].ChipName)
	}

	pwms := inv.PwmsOnChip(candidates[0].HwmonPath)
	sort.Slice(pwms, func(i, j int) bool { return pwms[i].PwmPath < pwms[j].PwmPath })
	if len(pwms) == 0 {
		return "", warning, fmt.Errorf("%w: %s (chip %s has no pwm outputs)", ErrUnresolvedPwm, fanID, candidates[0].ChipName)
	}
	if index >= 0 && index < len(pwms) {
		return pwms[index].PwmPath, warning, nil
	}
	return pwms[0].PwmPath, warning, nil
}
