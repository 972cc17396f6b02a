// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"
)

func registerMiscMethods(d *Dispatcher) {
	d.register("ping", handlePing)
	d.register("version", handleVersion)
	// rpc.commands is registered last, in NewDispatcher, once every other
	// method name is known.
}

func handlePing(_ context.Context, _ *Deps, _ json.RawMessage) (any, error) {
	return map[string]string{"pong": "1"}, nil
}

func handleVersion(_ context.Context, d *Deps, _ json.RawMessage) (any, error) {
	return map[string]string{"version": d.Version}, nil
}
