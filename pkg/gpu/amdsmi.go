// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
)

// amdsmiBackend shells out to rocm-smi and parses its JSON output, the same
// approach the reference lineage's other collectors use for tool-reported
// metrics that have no direct sysfs equivalent (power draw in particular).
type amdsmiBackend struct {
	cmdName string
}

func newAMDSMIBackend() *amdsmiBackend {
	return &amdsmiBackend{cmdName: "rocm-smi"}
}

func (b *amdsmiBackend) Name() string { return "amdsmi" }

// rocmSmiCard mirrors the subset of rocm-smi's --showtemp/--showpower
// --json output this backend consumes. rocm-smi nests one object per card
// under a "cardN" key, keyed entries are looked up dynamically below.
type rocmSmiCard struct {
	Temperature  string `json:"Temperature (Sensor edge) (C)"`
	PowerPackage string `json:"Average Graphics Package Power (W)"`
	GUID         string `json:"GUID"`
}

func (b *amdsmiBackend) Snapshot(ctx context.Context) ([]Device, error) {
	path, err := exec.LookPath(b.cmdName)
	if err != nil {
		return nil, ErrBackendUnavailable
	}

	cmd := exec.CommandContext(ctx, path, "--showtemp", "--showpower", "--json")
	out, err := cmd.Output()
	if err != nil {
		return nil, ErrBackendUnavailable
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, ErrBackendUnavailable
	}

	var devices []Device
	for key, msg := range raw {
		if !strings.HasPrefix(key, "card") {
			continue
		}
		var card rocmSmiCard
		if err := json.Unmarshal(msg, &card); err != nil {
			continue
		}

		d := Device{Backend: b.Name(), Name: key, Vendor: "AMD"}
		if t, err := strconv.ParseFloat(strings.TrimSpace(card.Temperature), 64); err == nil {
			d.TempC = t
			d.TempOK = true
		}
		if p, err := strconv.ParseFloat(strings.TrimSpace(card.PowerPackage), 64); err == nil {
			d.PowerW = p
			d.PowerOK = true
		}
		devices = append(devices, d)
	}
	return devices, nil
}
