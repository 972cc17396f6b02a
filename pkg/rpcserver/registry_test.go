// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDeps() *Deps {
	return &Deps{
		Bus:     NewCommandBus(),
		Version: "1.2.3",
	}
}

func TestDispatchPing(t *testing.T) {
	d := NewDispatcher(testDeps(), testLogger())
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "ping"}

	resp, ok := d.Dispatch(context.Background(), req)
	if !ok {
		t.Fatal("expected a response")
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if resp.Result == nil || !resp.Result.Success {
		t.Fatalf("unexpected result: %+v", resp.Result)
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	d := NewDispatcher(testDeps(), testLogger())
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`2`), Method: "nope.nope"}

	resp, ok := d.Dispatch(context.Background(), req)
	if !ok {
		t.Fatal("expected a response")
	}
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found error, got %+v", resp.Error)
	}
}

func TestDispatchNotificationProducesNoResponse(t *testing.T) {
	d := NewDispatcher(testDeps(), testLogger())
	req := Request{JSONRPC: "2.0", Method: "ping"}

	_, ok := d.Dispatch(context.Background(), req)
	if ok {
		t.Fatal("expected no response for a notification")
	}
}

func TestDispatchBatchPreservesOrder(t *testing.T) {
	d := NewDispatcher(testDeps(), testLogger())
	raw := []byte(`[{"jsonrpc":"2.0","id":1,"method":"ping"},{"jsonrpc":"2.0","id":2,"method":"version"}]`)

	out, err := d.DispatchBatch(context.Background(), raw)
	if err != nil {
		t.Fatalf("DispatchBatch: %v", err)
	}

	var responses []Response
	if err := json.Unmarshal(out, &responses); err != nil {
		t.Fatalf("unmarshal batch response: %v", err)
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	if string(responses[0].ID) != "1" || string(responses[1].ID) != "2" {
		t.Fatalf("response order not preserved: %+v", responses)
	}
}

func TestDispatchRpcCommandsListsCatalogue(t *testing.T) {
	d := NewDispatcher(testDeps(), testLogger())
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "rpc.commands"}

	resp, ok := d.Dispatch(context.Background(), req)
	if !ok || resp.Error != nil {
		t.Fatalf("unexpected failure: ok=%v err=%+v", ok, resp.Error)
	}

	data, err := json.Marshal(resp.Result.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	var parsed struct {
		Methods []string `json:"methods"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unmarshal methods list: %v", err)
	}
	found := false
	for _, m := range parsed.Methods {
		if m == "engine.status" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected engine.status in catalogue, got %v", parsed.Methods)
	}
}

func TestAliasForwardsToCanonicalAndWarnsOnce(t *testing.T) {
	d := NewDispatcher(testDeps(), testLogger())
	req := Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "commands"}

	resp, ok := d.Dispatch(context.Background(), req)
	if !ok || resp.Error != nil {
		t.Fatalf("unexpected failure: ok=%v err=%+v", ok, resp.Error)
	}
	if !d.aliasWarned["commands"] {
		t.Fatal("expected alias use to be recorded")
	}
}
