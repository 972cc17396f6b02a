// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"sort"
	"sync"
)

// EnableMode mirrors the kernel's pwmN_enable byte.
type EnableMode int

const (
	// EnableAuto is the kernel/BIOS automatic fan control mode (0).
	EnableAuto EnableMode = 0
	// EnableManual is direct userspace control (1 or 2, chip-dependent).
	EnableManual EnableMode = 1
	// EnableHardware is a hardware/firmware curve mode (3, 4 or 5).
	EnableHardware EnableMode = 3
	// EnableUnknown marks a chip with no enable file at all.
	EnableUnknown EnableMode = -1
)

// NormalizeEnableMode folds the raw kernel byte into one of the three
// logical buckets the rest of the daemon reasons about.
func NormalizeEnableMode(raw int) EnableMode {
	switch raw {
	case 0:
		return EnableAuto
	case 1, 2:
		return EnableManual
	case 3, 4, 5:
		return EnableHardware
	default:
		return EnableUnknown
	}
}

// Chip is a hwmon device: one directory under /sys/class/hwmon/hwmonN.
// Immutable for the process lifetime once Discover has run, unless a fresh
// discovery is explicitly requested.
type Chip struct {
	HwmonPath   string   `json:"hwmonPath"`
	DriverName  string   `json:"driverName"`
	ChipName    string   `json:"chipName"`
	VendorLabel string   `json:"vendorLabel,omitempty"`
	VendorClass string   `json:"vendorClass,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
}

// TempInput is a tempN_input sensor, unique by InputPath.
type TempInput struct {
	ChipPath  string  `json:"chipPath"`
	InputPath string  `json:"inputPath"`
	Label     string  `json:"label,omitempty"`
	CurrentC  float64 `json:"currentC"`
	Available bool    `json:"available"`
}

// FanInput is a fanN_input tachometer, unique by InputPath.
type FanInput struct {
	ChipPath  string `json:"chipPath"`
	InputPath string `json:"inputPath"`
	Label     string `json:"label,omitempty"`
	Rpm       int    `json:"rpm"`
	Available bool   `json:"available"`
}

// PwmOutput is a pwmN control file, optionally paired with a pwmN_enable
// file. RawValue is always kept within [0, PwmMax].
type PwmOutput struct {
	ChipPath   string     `json:"chipPath"`
	PwmPath    string     `json:"pwmPath"`
	EnablePath string     `json:"enablePath,omitempty"`
	PwmMax     int        `json:"pwmMax"`
	Label      string     `json:"label,omitempty"`
	RawValue   int        `json:"rawValue"`
	Percent    int        `json:"percent"`
	EnableMode EnableMode `json:"enableMode"`
	Rpm        *int       `json:"rpm,omitempty"`

	mu              sync.Mutex
	consecutiveFail int
	degraded        bool
}

// Percent converts a raw duty value to a rounded percentage of pwmMax.
func Percent(raw, pwmMax int) int {
	if pwmMax <= 0 {
		return 0
	}
	return int((float64(raw)*100.0/float64(pwmMax))+0.5)
}

// ClampRaw clamps a raw PWM value into [0, pwmMax].
func ClampRaw(raw, pwmMax int) int {
	if raw < 0 {
		return 0
	}
	if raw > pwmMax {
		return pwmMax
	}
	return raw
}

// Inventory is the full snapshot produced by Discover. It is read-mostly
// after discovery: value refresh updates fields in place, discovery only
// ever runs again on an explicit request.
type Inventory struct {
	mu     sync.RWMutex
	Chips  []*Chip               `json:"chips"`
	Temps  map[string]*TempInput `json:"-"`
	Fans   map[string]*FanInput  `json:"-"`
	Pwms   map[string]*PwmOutput `json:"-"`
	leases map[string]*PwmLease
}

func newInventory() *Inventory {
	return &Inventory{
		Temps:  make(map[string]*TempInput),
		Fans:   make(map[string]*FanInput),
		Pwms:   make(map[string]*PwmOutput),
		leases: make(map[string]*PwmLease),
	}
}

// Temp looks up a TempInput by path under a read lock.
func (inv *Inventory) Temp(path string) (*TempInput, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	t, ok := inv.Temps[path]
	return t, ok
}

// Fan looks up a FanInput by path under a read lock.
func (inv *Inventory) Fan(path string) (*FanInput, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	f, ok := inv.Fans[path]
	return f, ok
}

// Pwm looks up a PwmOutput by path under a read lock.
func (inv *Inventory) Pwm(path string) (*PwmOutput, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	p, ok := inv.Pwms[path]
	return p, ok
}

// PwmPaths returns every discovered PWM path, order-stable within a run.
func (inv *Inventory) PwmPaths() []string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]string, 0, len(inv.Pwms))
	for p := range inv.Pwms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// AllTemps returns every discovered TempInput, for snapshot/telemetry use.
func (inv *Inventory) AllTemps() []*TempInput {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]*TempInput, 0, len(inv.Temps))
	for _, t := range inv.Temps {
		out = append(out, t)
	}
	return out
}

// AllFans returns every discovered FanInput, for snapshot/telemetry use.
func (inv *Inventory) AllFans() []*FanInput {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]*FanInput, 0, len(inv.Fans))
	for _, f := range inv.Fans {
		out = append(out, f)
	}
	return out
}

// AllPwms returns every discovered PwmOutput, for snapshot/telemetry use.
func (inv *Inventory) AllPwms() []*PwmOutput {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	out := make([]*PwmOutput, 0, len(inv.Pwms))
	for _, p := range inv.Pwms {
		out = append(out, p)
	}
	return out
}

// AllChips returns every discovered Chip, for snapshot/telemetry use.
func (inv *Inventory) AllChips() []*Chip {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return append([]*Chip(nil), inv.Chips...)
}

// FansOnChip returns every FanInput belonging to the chip at chipPath.
func (inv *Inventory) FansOnChip(chipPath string) []*FanInput {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	var out []*FanInput
	for _, f := range inv.Fans {
		if f.ChipPath == chipPath {
			out = append(out, f)
		}
	}
	return out
}

// PwmsOnChip returns every PwmOutput belonging to the chip at chipPath.
func (inv *Inventory) PwmsOnChip(chipPath string) []*PwmOutput {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	var out []*PwmOutput
	for _, p := range inv.Pwms {
		if p.ChipPath == chipPath {
			out = append(out, p)
		}
	}
	return out
}

// TempsOnChip returns every TempInput belonging to the chip at chipPath.
func (inv *Inventory) TempsOnChip(chipPath string) []*TempInput {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	var out []*TempInput
	for _, t := range inv.Temps {
		if t.ChipPath == chipPath {
			out = append(out, t)
		}
	}
	return out
}
