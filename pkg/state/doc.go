// SPDX-License-Identifier: BSD-3-Clause

// Package state is a thread-safe finite state machine wrapper around
// github.com/qmuntal/stateless, adding a configurable per-transition
// timeout and persistence/broadcast callbacks invoked outside the
// machine's own lock. It backs the daemon's asynchronous jobs (detection
// sweeps, profile imports), where a caller polls progress while the job
// runs to completion or cancellation on its own goroutine.
//
// Basic usage:
//
//	sm, err := New(NewConfig(
//		WithName("detect-1"),
//		WithInitialState("baseline"),
//		WithStates("baseline", "ramp", "settle", "record", "restore", "done"),
//		WithTransition("baseline", "ramp", "start"),
//		WithTransition("ramp", "settle", "ramped"),
//		WithTransition("settle", "record", "settled"),
//		WithTransition("record", "restore", "recorded"),
//		WithTransition("restore", "done", "restored"),
//	))
//	sm.SetBroadcastCallback(func(ctx context.Context, name, from, to, trigger string) error {
//		return nil
//	})
//	sm.Start(ctx)
//	sm.Fire(ctx, "start")
package state
