// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// HandlerFunc implements one RPC method. params is the raw JSON params
// value (may be nil); the returned value is marshaled into the success
// envelope's data field.
type HandlerFunc func(ctx context.Context, d *Deps, params json.RawMessage) (any, error)

// Dispatcher holds the canonical method catalogue plus any registered
// deprecated aliases, and executes a decoded Request against Deps.
type Dispatcher struct {
	deps     *Deps
	log      *slog.Logger
	handlers map[string]HandlerFunc

	aliasMu    sync.Mutex
	aliasWarned map[string]bool
}

// NewDispatcher builds the canonical method catalogue (§4.7) bound to
// deps, plus the deprecated aliases resolved in the design notes.
func NewDispatcher(deps *Deps, log *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		deps:        deps,
		log:         log,
		handlers:    make(map[string]HandlerFunc),
		aliasWarned: make(map[string]bool),
	}
	registerMiscMethods(d)
	registerConfigMethods(d)
	registerHwmonMethods(d)
	registerEngineMethods(d)
	registerDetectMethods(d)
	registerProfileMethods(d)
	registerTelemetryMethods(d)
	registerDaemonMethods(d)
	d.register("rpc.commands", func(_ context.Context, _ *Deps, _ json.RawMessage) (any, error) {
		return map[string]any{"methods": d.methodNames()}, nil
	})
	registerAliases(d)
	return d
}

func (d *Dispatcher) register(method string, h HandlerFunc) {
	d.handlers[method] = h
}

// methodNames returns the canonical catalogue, sorted, for rpc.commands.
func (d *Dispatcher) methodNames() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		if _, alias := deprecatedAliases[name]; alias {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs a single decoded Request and returns its Response, unless
// req is a notification (no ID), in which case ok is false and the
// caller sends nothing back.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp Response, ok bool) {
	ok = !req.isNotification()

	handler, found := d.handlers[req.Method]
	if !found {
		if ok {
			resp = errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method))
		}
		return resp, ok
	}

	data, err := handler(ctx, d.deps, req.Params)
	if err != nil {
		code, msg := codeForError(err)
		if ok {
			resp = errorResponse(req.ID, code, msg)
		}
		return resp, ok
	}

	if ok {
		resp = successResponse(req.ID, req.Method, data)
	}
	return resp, ok
}

// DispatchBatch runs a full batch (or single request) payload, preserving
// response order, and drops responses for notifications.
func (d *Dispatcher) DispatchBatch(ctx context.Context, raw []byte) ([]byte, error) {
	reqs, isBatch, err := decodeRequests(raw)
	if err != nil {
		return json.Marshal(errorResponse(nil, codeParseError, "parse error: "+err.Error()))
	}

	responses := make([]Response, 0, len(reqs))
	for _, req := range reqs {
		if resp, ok := d.Dispatch(ctx, req); ok {
			responses = append(responses, resp)
		}
	}

	if len(responses) == 0 {
		return nil, nil
	}
	if !isBatch {
		return json.Marshal(responses[0])
	}
	return json.Marshal(responses)
}

func decodeParams[T any](params json.RawMessage) (T, error) {
	var v T
	if len(params) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(params, &v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return v, nil
}
