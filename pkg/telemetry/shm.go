// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package telemetry

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// headerSize is the fixed 24-byte region: magic u64, version u32,
// capacity u32, slotSize u32, writeIndex u32.
const headerSize = 24

const shmMagic uint64 = 0x4c46434454454c4d // "LFCDTELM"

// region is the mapped POSIX shared-memory object backing a published
// snapshot. Not safe for concurrent Write calls; the publisher serialises
// them.
type region struct {
	name     string
	fd       int
	capacity int
	data     []byte
	created  bool
}

// normalizeShmName turns a configured name into the "/name" POSIX shm
// object name, accepting either form from configuration.
func normalizeShmName(name string) string {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name
}

// openRegion creates (or opens) and maps a POSIX shared-memory object of
// the given capacity. The object is created via a regular file under
// /dev/shm, which is what Linux's shm_open implementations resolve to
// anyway and avoids requiring cgo for the shm_open/shm_unlink libc calls.
func openRegion(name string, capacity int) (*region, error) {
	posixName := normalizeShmName(name)
	path := filepath.Join("/dev/shm", strings.TrimPrefix(posixName, "/"))

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrShmUnavailable, path, err)
	}

	if err := unix.Ftruncate(fd, int64(capacity)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%w: truncate %s: %v", ErrShmUnavailable, path, err)
	}

	data, err := unix.Mmap(fd, 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%w: mmap %s: %v", ErrShmUnavailable, path, err)
	}

	r := &region{name: posixName, fd: fd, capacity: capacity, data: data, created: true}
	r.writeHeader(0, uint32(capacity))
	return r, nil
}

func (r *region) writeHeader(writeIndex uint32, slotSize uint32) {
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint64(hdr[0:8], shmMagic)
	binary.LittleEndian.PutUint32(hdr[8:12], SchemaVersion)
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(r.capacity))
	binary.LittleEndian.PutUint32(hdr[16:20], slotSize)
	binary.LittleEndian.PutUint32(hdr[20:24], writeIndex)
	copy(r.data[0:headerSize], hdr[:])
}

// write composes the header and the document into one scratch buffer and
// copies it into the mapped region in a single memcpy, so a concurrent
// reader observes either the previous or the new snapshot but never a
// torn mix of the two.
func (r *region) write(writeIndex uint32, body []byte) error {
	if headerSize+len(body) > r.capacity {
		return fmt.Errorf("%w: %d bytes needs %d, have %d", ErrSnapshotTooLarge, len(body), headerSize+len(body), r.capacity)
	}

	buf := make([]byte, r.capacity)
	binary.LittleEndian.PutUint64(buf[0:8], shmMagic)
	binary.LittleEndian.PutUint32(buf[8:12], SchemaVersion)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(r.capacity))
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(body)))
	binary.LittleEndian.PutUint32(buf[20:24], writeIndex)
	copy(buf[headerSize:], body)

	copy(r.data, buf)
	return nil
}

func (r *region) close(unlink bool) error {
	err := unix.Munmap(r.data)
	_ = unix.Close(r.fd)
	if unlink && r.created {
		path := filepath.Join("/dev/shm", strings.TrimPrefix(r.name, "/"))
		_ = os.Remove(path)
	}
	return err
}
