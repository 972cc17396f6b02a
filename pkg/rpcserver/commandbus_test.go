// SPDX-License-Identifier: BSD-3-Clause

package rpcserver

import (
	"context"
	"testing"
	"time"
)

func TestCommandBusExecutesOnRunGoroutine(t *testing.T) {
	bus := NewCommandBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runnerDone := make(chan struct{})
	var ranOnRunner bool
	go func() {
		defer close(runnerDone)
		bus.Run(ctx)
	}()

	result, err := bus.Submit(context.Background(), func(context.Context) (any, error) {
		ranOnRunner = true
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result != 42 {
		t.Fatalf("result = %v, want 42", result)
	}
	if !ranOnRunner {
		t.Fatal("expected command to run")
	}

	cancel()
	select {
	case <-runnerDone:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCommandBusSubmitCanceledBeforeAccept(t *testing.T) {
	bus := NewCommandBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bus.Submit(ctx, func(context.Context) (any, error) { return nil, nil })
	if err == nil {
		t.Fatal("expected context-canceled error")
	}
}

func TestCommandBusPropagatesError(t *testing.T) {
	bus := NewCommandBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go bus.Run(ctx)

	sentinel := context.Canceled
	_, err := bus.Submit(context.Background(), func(context.Context) (any, error) {
		return nil, sentinel
	})
	if err != sentinel {
		t.Fatalf("err = %v, want %v", err, sentinel)
	}
}
