// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"sync/atomic"
)

// controller implements rpcserver.DaemonController: daemon.shutdown and
// daemon.restart both cancel the root context (there's only one way to
// stop a single-process worker group), differing only in whether
// restartRequested later tells the run loop to log a restart rather than
// a plain shutdown. Re-spawning the process itself is left to the unit
// supervisor (systemd Restart=on-success and friends), same as the
// exit-code contract in §6 expects.
type controller struct {
	cancel    context.CancelFunc
	restartFl atomic.Bool
}

func newController(cancel context.CancelFunc) *controller {
	return &controller{cancel: cancel}
}

func (c *controller) Shutdown() {
	c.cancel()
}

func (c *controller) Restart() {
	c.restartFl.Store(true)
	c.cancel()
}

func (c *controller) restartRequested() bool {
	return c.restartFl.Load()
}
