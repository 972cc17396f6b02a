// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package telemetry

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lfcd/lfcd/pkg/gpu"
)

func testSnapshot() Snapshot {
	return Snapshot{
		Version:       SchemaVersion,
		TimestampMs:   1700000000000,
		EngineEnabled: true,
		TickMs:        500,
		DeltaC:        0.5,
		ForceTickMs:   5000,
		Profile:       ProfileSummary{Name: "quiet", Schema: 1, CurveCount: 2, ControlCount: 1},
		Gpus:          []gpu.Device{},
	}
}

func TestPublisherWritesShmSnapshot(t *testing.T) {
	name := fmt.Sprintf("lfcd.telemetry.test.%d", os.Getpid())
	pub, err := NewPublisher(Config{ShmName: name, Capacity: 64 * 1024})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })

	if pub.Degraded() {
		t.Fatal("expected non-degraded shm publisher")
	}

	snap := testSnapshot()
	if err := pub.Publish(snap); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join("/dev/shm", name))
	if err != nil {
		t.Fatalf("read shm backing file: %v", err)
	}
	if len(raw) < headerSize {
		t.Fatalf("region too small: %d bytes", len(raw))
	}

	magic := binary.LittleEndian.Uint64(raw[0:8])
	if magic != shmMagic {
		t.Fatalf("magic = %x, want %x", magic, shmMagic)
	}
	slotSize := binary.LittleEndian.Uint32(raw[16:20])
	writeIdx := binary.LittleEndian.Uint32(raw[20:24])
	if writeIdx != 1 {
		t.Fatalf("writeIndex = %d, want 1", writeIdx)
	}

	var got Snapshot
	if err := json.Unmarshal(raw[headerSize:headerSize+slotSize], &got); err != nil {
		t.Fatalf("unmarshal snapshot body: %v", err)
	}
	if got.Profile.Name != "quiet" || got.TickMs != 500 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestPublisherSecondWriteBumpsIndex(t *testing.T) {
	name := fmt.Sprintf("lfcd.telemetry.test2.%d", os.Getpid())
	pub, err := NewPublisher(Config{ShmName: name, Capacity: 64 * 1024})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })

	if err := pub.Publish(testSnapshot()); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := pub.Publish(testSnapshot()); err != nil {
		t.Fatalf("second publish: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join("/dev/shm", name))
	if err != nil {
		t.Fatalf("read shm backing file: %v", err)
	}
	writeIdx := binary.LittleEndian.Uint32(raw[20:24])
	if writeIdx != 2 {
		t.Fatalf("writeIndex = %d, want 2", writeIdx)
	}
}

func TestPublisherRejectsOversizedSnapshot(t *testing.T) {
	name := fmt.Sprintf("lfcd.telemetry.test3.%d", os.Getpid())
	pub, err := NewPublisher(Config{ShmName: name, Capacity: headerSize + 8})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })

	err = pub.Publish(testSnapshot())
	if err == nil {
		t.Fatal("expected ErrSnapshotTooLarge")
	}
}

func TestPublisherFallsBackToFileWhenShmDirMissing(t *testing.T) {
	dir := t.TempDir()
	fallback := filepath.Join(dir, "telemetry.json")

	// An invalid shm path (containing a nested, non-existent directory
	// component under /dev/shm) forces openRegion to fail and the
	// publisher to degrade to the file fallback.
	p, _ := NewPublisher(Config{ShmName: "lfcd-missing-dir/telemetry", FallbackPath: fallback})

	if !p.Degraded() {
		t.Fatal("expected degraded publisher")
	}

	body, err := json.Marshal(testSnapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := p.publishFallback(body); err != nil {
		t.Fatalf("publishFallback: %v", err)
	}

	raw, err := os.ReadFile(fallback)
	if err != nil {
		t.Fatalf("read fallback file: %v", err)
	}
	var got Snapshot
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal fallback file: %v", err)
	}
	if got.Profile.Name != "quiet" {
		t.Fatalf("unexpected fallback snapshot: %+v", got)
	}
}

func TestPublisherClosedRejectsPublish(t *testing.T) {
	name := fmt.Sprintf("lfcd.telemetry.test4.%d", os.Getpid())
	pub, err := NewPublisher(Config{ShmName: name, Capacity: 64 * 1024})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := pub.Publish(testSnapshot()); err != ErrClosed {
		t.Fatalf("Publish after close = %v, want ErrClosed", err)
	}
}
