// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"
	"fmt"
)

func registerConfigMethods(d *Dispatcher) {
	d.register("config.load", handleConfigLoad)
	d.register("config.save", handleConfigSave)
	d.register("config.set", handleConfigSet)
}

func handleConfigLoad(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	return d.Config.Load()
}

func handleConfigSave(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	if err := d.Config.Save(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigSaveFailed, err)
	}
	return map[string]bool{"saved": true}, nil
}

type configSetParams struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func handleConfigSet(_ context.Context, d *Deps, params json.RawMessage) (any, error) {
	p, err := decodeParams[configSetParams](params)
	if err != nil {
		return nil, err
	}
	if p.Key == "" {
		return nil, fmt.Errorf("%w: key is required", ErrInvalidParams)
	}
	if err := d.Config.Set(p.Key, p.Value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigSaveFailed, err)
	}
	return map[string]bool{"set": true}, nil
}
