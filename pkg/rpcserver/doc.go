// SPDX-License-Identifier: BSD-3-Clause

// Package rpcserver implements the daemon's JSON-RPC 2.0 control surface.
//
// Transport is newline-delimited JSON objects/arrays over TCP, plus an
// optional HTTP POST wrapper at /rpc using the same envelope. Each TCP
// connection and HTTP request is served on its own goroutine. Every
// handler that changes engine state (enable, disable, reset, set active
// profile, import commit) does so by submitting a command to a CommandBus;
// the bus is drained by whichever goroutine calls Run, which in this
// daemon is the same loop that runs engine ticks and telemetry publishes.
// This keeps engine mutation, ticks, and telemetry snapshots serialized.
// Other handlers (engine status reads, config, profile files, detection
// and import jobs) call their subsystem directly and are not serialized
// against ticks.
package rpcserver
