// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lfcd/lfcd/pkg/file"
)

// DefaultCapacity is the mapped region size used when configuration doesn't
// override it. Comfortably fits a full hwmon+GPU snapshot with headroom.
const DefaultCapacity = 256 * 1024

// Config controls where and how snapshots are published.
type Config struct {
	// ShmName is the POSIX shared-memory object name, e.g. "lfcd.telemetry".
	ShmName string
	// FallbackPath is the regular file written when shm setup fails.
	FallbackPath string
	// Capacity is the mapped region / fallback document size budget.
	Capacity int
}

// Publisher owns the mapped shared-memory region (or, in degraded mode, a
// fallback file) and serialises Snapshot documents into it.
type Publisher struct {
	mu       sync.Mutex
	cfg      Config
	region   *region
	degraded bool
	writeIdx uint32
	closed   bool
}

// NewPublisher creates and maps the shared-memory object described by cfg.
// If mapping fails, the Publisher falls back to periodic writes of a
// regular file and the returned error is ErrShmUnavailable-wrapped but
// non-fatal: the caller may ignore it and keep using the Publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}

	p := &Publisher{cfg: cfg}

	r, err := openRegion(cfg.ShmName, cfg.Capacity)
	if err != nil {
		p.degraded = true
		return p, fmt.Errorf("telemetry: falling back to file publisher: %w", err)
	}
	p.region = r
	return p, nil
}

// Publish serialises snap to JSON and writes it to the mapped region (or
// the fallback file when shm is unavailable).
func (p *Publisher) Publish(snap Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("telemetry: marshal snapshot: %w", err)
	}

	if p.degraded {
		return p.publishFallback(body)
	}

	p.writeIdx++
	if err := p.region.write(p.writeIdx, body); err != nil {
		return err
	}
	return nil
}

// publishFallback atomically overwrites the fallback path with body: a
// telemetry document is a full replacement each tick, not an append.
func (p *Publisher) publishFallback(body []byte) error {
	if err := file.AtomicReplaceFile(p.cfg.FallbackPath, body, 0o644); err != nil {
		return fmt.Errorf("telemetry: write fallback file: %w", err)
	}
	return nil
}

// Degraded reports whether the publisher is writing to the fallback file
// rather than shared memory.
func (p *Publisher) Degraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degraded
}

// Close unmaps and unlinks the shared-memory object, if one was mapped.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.region != nil {
		return p.region.close(true)
	}
	return nil
}
