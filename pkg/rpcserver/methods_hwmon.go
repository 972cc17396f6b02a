// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"

	"github.com/lfcd/lfcd/pkg/hwmon"
	"github.com/lfcd/lfcd/pkg/profile"
)

func registerHwmonMethods(d *Dispatcher) {
	d.register("hwmon.snapshot", handleHwmonSnapshot)
	d.register("list.sensor", handleListSensor)
	d.register("list.fan", handleListFan)
	d.register("list.pwm", handleListPwm)
	d.register("list.profiles", handleListProfiles)
}

// hwmonSnapshot is the hwmon.snapshot result shape: the full inventory,
// independent of telemetry.json's richer engine/profile/gpu wrapper.
type hwmonSnapshot struct {
	Chips []*hwmon.Chip      `json:"chips"`
	Temps []*hwmon.TempInput `json:"temps"`
	Fans  []*hwmon.FanInput  `json:"fans"`
	Pwms  []*hwmon.PwmOutput `json:"pwms"`
}

func handleHwmonSnapshot(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	return hwmonSnapshot{
		Chips: d.Inventory.AllChips(),
		Temps: d.Inventory.AllTemps(),
		Fans:  d.Inventory.AllFans(),
		Pwms:  d.Inventory.AllPwms(),
	}, nil
}

func handleListSensor(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	return d.Inventory.AllTemps(), nil
}

func handleListFan(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	return d.Inventory.AllFans(), nil
}

func handleListPwm(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	return d.Inventory.AllPwms(), nil
}

func handleListProfiles(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	names, err := profile.List(d.ProfilesDir)
	if err != nil {
		return nil, err
	}
	return names, nil
}
