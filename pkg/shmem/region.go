// Package shmem implements the Region: a contiguous, fixed-size backing
// segment identified by a well-known name, shared by every process that
// attaches to it. It owns the raw byte layout (a fixed Header followed by
// whatever reserved area the caller asks for, followed by a bump-allocated
// arena) and the single named cross-process mutex that guards mutation of
// that layout.
//
// Everything placed in the region must be plain-old-data: no Go pointers,
// slices, maps, strings or interfaces, since the memory is mapped
// independently (at possibly different virtual addresses) by every
// attached process. Only fixed-size scalar fields and arrays of them may
// cross the boundary — see window.State and registry's entry type for the
// layout this constrains.
package shmem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"unsafe"
)

// magicValue marks a freshly created (or already-initialized) Header.
// Zero means "not yet constructed" — a brand-new backing file is zero
// filled by the OS, so the first attacher to observe Magic == 0 under the
// named mutex is responsible for constructing the Header and its reserved
// area.
const magicValue = 0x5441_5453_4c43_4b42 // the ASCII bytes "TATSLCKB"

// Header is the fixed layout at offset 0 of every Region. It has no
// pointers and is safe to alias via unsafe.Pointer from mapped bytes.
type Header struct {
	Magic      uint64
	Version    uint32
	_          uint32 // padding, keeps RefCount 8-byte aligned
	RefCount   int64  // G: count of processes currently attached
	FreeOffset int64  // bump allocator: next free byte in the arena
}

// HeaderSize is the fixed size, in bytes, of the Header at the start of
// every Region.
const HeaderSize = unsafe.Sizeof(Header{})

// Config describes how to attach to (or create) a named Region.
type Config struct {
	// SegmentName is the well-known name of the backing shared-memory
	// segment, shared verbatim by every cooperating process.
	SegmentName string
	// MutexName is the well-known name of the cross-process mutex
	// guarding Header and reserved-area mutation.
	MutexName string
	// Size is the total fixed size of the segment, header included.
	Size int64
	// Reserved is how many bytes immediately after the Header are set
	// aside for the caller's own fixed layout (the Registry's name table)
	// before the bump-allocated arena begins.
	Reserved int64
}

// ErrRegionFull is returned by Alloc when the arena has no room left for
// the requested allocation.
var ErrRegionFull = errors.New("shmem: region is full")

// Region is a live attachment to a named backing segment.
type Region struct {
	cfg   Config
	data  []byte
	unmap func() error
	mu    *namedMutex
}

// Attach opens the named segment, creating it if absent, and constructs its
// Header (and zeroes its reserved area) the first time any process
// observes it unconstructed. Every subsequent attacher — in this process or
// any other — reuses the existing Header and reserved area unchanged.
func Attach(cfg Config) (*Region, error) {
	if cfg.Size <= int64(HeaderSize)+cfg.Reserved {
		return nil, fmt.Errorf("shmem: size %d too small for header (%d) + reserved (%d)", cfg.Size, HeaderSize, cfg.Reserved)
	}

	mu, err := openNamedMutex(cfg.MutexName)
	if err != nil {
		return nil, fmt.Errorf("shmem: open named mutex %q: %w", cfg.MutexName, err)
	}

	data, unmap, err := mapSegment(segmentPath(cfg.SegmentName), cfg.Size)
	if err != nil {
		mu.Close()
		return nil, fmt.Errorf("shmem: map segment %q: %w", cfg.SegmentName, err)
	}

	r := &Region{cfg: cfg, data: data, unmap: unmap, mu: mu}

	mu.Lock()
	h := r.header()
	if h.Magic != magicValue {
		h.Magic = magicValue
		h.Version = 1
		h.RefCount = 0
		h.FreeOffset = int64(HeaderSize) + cfg.Reserved
		clear(r.data[int64(HeaderSize) : int64(HeaderSize)+cfg.Reserved])
	}
	mu.Unlock()

	return r, nil
}

func segmentPath(name string) string {
	return filepath.Join(os.TempDir(), "statblock-"+name+".shm")
}

func (r *Region) header() *Header {
	return (*Header)(unsafe.Pointer(&r.data[0]))
}

// Lock acquires the Region's named cross-process mutex. It guards Registry
// mutation and the LifecycleManager's updates of G; the process-local user
// count U is guarded by the Manager's own mutex, not by this lock. It is
// never held across a Window's own record/aggregate operations.
func (r *Region) Lock() { r.mu.Lock() }

// Unlock releases the Region's named cross-process mutex.
func (r *Region) Unlock() { r.mu.Unlock() }

// RefCount loads G, the number of processes currently attached.
func (r *Region) RefCount() int64 {
	return atomic.LoadInt64(&r.header().RefCount)
}

// SetRefCount stores G. Callers must hold Lock.
func (r *Region) SetRefCount(v int64) {
	atomic.StoreInt64(&r.header().RefCount, v)
}

// ReservedOffset returns the offset at which the caller-reserved area
// (e.g. the Registry's name table) begins.
func (r *Region) ReservedOffset() int64 {
	return int64(HeaderSize)
}

// At returns an unsafe.Pointer to the byte at offset. Callers cast this to
// the plain-old-data type they expect to find there.
func (r *Region) At(offset int64) unsafe.Pointer {
	return unsafe.Pointer(&r.data[offset])
}

// Alloc bump-allocates size bytes from the arena and returns their offset.
// Callers must hold Lock — allocation is always performed by whichever
// process is constructing a new Window under the Registry's creation path.
func (r *Region) Alloc(size int64) (int64, error) {
	h := r.header()
	offset := h.FreeOffset
	if offset+size > r.cfg.Size {
		return 0, ErrRegionFull
	}
	h.FreeOffset = offset + size
	return offset, nil
}

// Destroy unmaps and unlinks the backing segment. Callers must ensure no
// other process believes itself attached (RefCount observed at 0 under
// Lock) before calling this.
func (r *Region) Destroy() error {
	if err := r.unmap(); err != nil {
		return err
	}
	if err := os.Remove(segmentPath(r.cfg.SegmentName)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return r.mu.Close()
}

// Close detaches from the segment without destroying it, leaving it for
// other attached processes.
func (r *Region) Close() error {
	if err := r.unmap(); err != nil {
		return err
	}
	return r.mu.Close()
}

func clear(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
