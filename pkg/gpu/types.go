// SPDX-License-Identifier: BSD-3-Clause

package gpu

// Device is one merged GPU entry. Fields an earlier back-end left empty
// may be filled in by a later one; a later back-end never overwrites a
// field the earlier one already set.
type Device struct {
	Backend    string  `json:"backend"`
	PciBDF     string  `json:"pciBdf,omitempty"`
	HwmonPath  string  `json:"hwmonPath,omitempty"`
	Vendor     string  `json:"vendor,omitempty"`
	Name       string  `json:"name,omitempty"`
	TempC      float64 `json:"tempC"`
	TempOK     bool    `json:"tempOk"`
	FanPercent int     `json:"fanPercent,omitempty"`
	FanRpm     int     `json:"fanRpm,omitempty"`
	FanOK      bool    `json:"fanOk"`
	PowerW     float64 `json:"powerW,omitempty"`
	PowerOK    bool    `json:"powerOk"`
}

// key returns the composite identity used to dedup/merge across back-ends:
// the first non-empty of PCI BDF, hwmon path, vendor+name.
func (d Device) key() string {
	if d.PciBDF != "" {
		return "bdf:" + d.PciBDF
	}
	if d.HwmonPath != "" {
		return "hwmon:" + d.HwmonPath
	}
	return "vn:" + d.Vendor + "+" + d.Name
}

// merge folds src's non-empty fields into dst wherever dst lacks them.
// Mutable metric fields (temp/fan/power) from src replace dst's only when
// dst doesn't already have that metric marked OK, preserving the
// "enrich, never overwrite" rule.
func merge(dst, src Device) Device {
	if dst.PciBDF == "" {
		dst.PciBDF = src.PciBDF
	}
	if dst.HwmonPath == "" {
		dst.HwmonPath = src.HwmonPath
	}
	if dst.Vendor == "" {
		dst.Vendor = src.Vendor
	}
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if !dst.TempOK && src.TempOK {
		dst.TempC = src.TempC
		dst.TempOK = true
	}
	if !dst.FanOK && src.FanOK {
		dst.FanPercent = src.FanPercent
		dst.FanRpm = src.FanRpm
		dst.FanOK = true
	}
	if !dst.PowerOK && src.PowerOK {
		dst.PowerW = src.PowerW
		dst.PowerOK = true
	}
	return dst
}

// applySample updates only the mutable metric fields of dst from sample,
// used by Monitor.RefreshMetrics: identity fields never change after the
// entry exists, and a sample naming an unknown key is dropped.
func applySample(dst Device, sample Device) Device {
	if sample.TempOK {
		dst.TempC = sample.TempC
		dst.TempOK = true
	}
	if sample.FanOK {
		dst.FanPercent = sample.FanPercent
		dst.FanRpm = sample.FanRpm
		dst.FanOK = true
	}
	if sample.PowerOK {
		dst.PowerW = sample.PowerW
		dst.PowerOK = true
	}
	return dst
}
