// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"
	"log/slog"
)

// deprecatedAliases maps a retired method name to the canonical one it
// forwards to. Prior art exposed both `commands` and `rpc.commands`, and
// both `import2` and `profile.importAs`; the canonical catalogue keeps
// only the right-hand names, and these log once per alias on first use
// instead of duplicating handler logic.
var deprecatedAliases = map[string]string{
	"commands": "rpc.commands",
	"import2":  "profile.importAs",
}

func registerAliases(d *Dispatcher) {
	for alias, canonical := range deprecatedAliases {
		target, ok := d.handlers[canonical]
		if !ok {
			continue
		}
		d.register(alias, aliasHandler(d, alias, canonical, target))
	}
}

func aliasHandler(d *Dispatcher, alias, canonical string, target HandlerFunc) HandlerFunc {
	return func(ctx context.Context, deps *Deps, params json.RawMessage) (any, error) {
		d.warnAliasOnce(alias, canonical)
		return target(ctx, deps, params)
	}
}

func (d *Dispatcher) warnAliasOnce(alias, canonical string) {
	d.aliasMu.Lock()
	defer d.aliasMu.Unlock()
	if d.aliasWarned[alias] {
		return
	}
	d.aliasWarned[alias] = true
	if d.log != nil {
		d.log.Warn("deprecated RPC method alias in use", slog.String("alias", alias), slog.String("canonical", canonical))
	}
}
