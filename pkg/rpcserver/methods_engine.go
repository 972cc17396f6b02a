// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"

	"github.com/lfcd/lfcd/pkg/engine"
)

func registerEngineMethods(d *Dispatcher) {
	d.register("engine.enable", handleEngineEnable)
	d.register("engine.disable", handleEngineDisable)
	d.register("engine.reset", handleEngineReset)
	d.register("engine.status", handleEngineStatus)
}

func handleEngineEnable(ctx context.Context, d *Deps, _ json.RawMessage) (any, error) {
	v, err := d.Bus.Submit(ctx, func(ctx context.Context) (any, error) {
		d.Engine.Enable()
		return d.Engine.Status(), nil
	})
	return v, err
}

func handleEngineDisable(ctx context.Context, d *Deps, _ json.RawMessage) (any, error) {
	v, err := d.Bus.Submit(ctx, func(ctx context.Context) (any, error) {
		d.Engine.Disable()
		return d.Engine.Status(), nil
	})
	return v, err
}

func handleEngineReset(ctx context.Context, d *Deps, _ json.RawMessage) (any, error) {
	v, err := d.Bus.Submit(ctx, func(ctx context.Context) (any, error) {
		errs := d.Engine.Reset(ctx)
		out := resetOutcome{Status: d.Engine.Status()}
		for _, e := range errs {
			if e != nil {
				out.Errors = append(out.Errors, e.Error())
			}
		}
		return out, nil
	})
	return v, err
}

type resetOutcome struct {
	Status engine.Status `json:"status"`
	Errors []string      `json:"errors,omitempty"`
}

func handleEngineStatus(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	return d.Engine.Status(), nil
}
