// Package registry implements the named name-to-Window lookup table that
// lives inside a shmem.Region's reserved area. Grounded on the teacher's
// pkg/aggregator sliding-window map-of-counters shape, but laid out as a
// fixed, pointer-free array of entries so the whole table is safe to place
// in shared memory rather than a Go map (which cannot cross a process
// boundary).
package registry

import (
	"errors"
	"unsafe"

	"github.com/obsidian-metrics/statblock/pkg/shmem"
	"github.com/obsidian-metrics/statblock/pkg/window"
)

// maxNameLen bounds a Registry key, matching the spec's "implementation
// defined length" for names.
const maxNameLen = 64

// entry is one fixed-size slot in the Registry's table. Pointer-free, safe
// to place in shared memory.
type entry struct {
	occupied     uint32
	nameLen      uint32
	name         [maxNameLen]byte
	windowOffset int64
}

const entrySize = unsafe.Sizeof(entry{})

// ReservedBytes returns the size, in bytes, of a Registry table holding
// maxEntries entries.
func ReservedBytes(maxEntries int) int64 {
	return int64(maxEntries) * int64(entrySize)
}

// ErrNameTooLong is returned by FindOrCreate when name exceeds maxNameLen
// bytes.
var ErrNameTooLong = errors.New("registry: name exceeds maximum length")

// Registry is a view over the fixed entry table living in a Region's
// reserved area.
type Registry struct {
	region     *shmem.Region
	baseOffset int64
	maxEntries int
}

// Open returns a Registry view over the Region's reserved area. The caller
// must have configured the Region with Reserved >= ReservedBytes(maxEntries).
func Open(r *shmem.Region, maxEntries int) *Registry {
	return &Registry{region: r, baseOffset: r.ReservedOffset(), maxEntries: maxEntries}
}

func (reg *Registry) entryAt(i int) *entry {
	off := reg.baseOffset + int64(i)*int64(entrySize)
	return (*entry)(reg.region.At(off))
}

// FindOrCreate returns the Window for name, creating it with intervalSeconds
// if absent. A second call with a different interval reuses the existing
// Window unchanged — first-writer-wins, per the spec's deliberate
// idempotence rule. Callers must hold reg.region.Lock() already (the
// Facade calls this under the Region's named mutex, the
// same lock ordering as spec §5: named mutex before any per-Window lock).
func (reg *Registry) FindOrCreate(name string, intervalSeconds uint64) (*window.State, error) {
	if len(name) > maxNameLen {
		return nil, ErrNameTooLong
	}

	var freeIdx = -1
	for i := 0; i < reg.maxEntries; i++ {
		e := reg.entryAt(i)
		if e.occupied == 0 {
			if freeIdx < 0 {
				freeIdx = i
			}
			continue
		}
		if int(e.nameLen) == len(name) && string(e.name[:e.nameLen]) == name {
			return (*window.State)(reg.region.At(e.windowOffset)), nil
		}
	}

	if freeIdx < 0 {
		return nil, shmem.ErrRegionFull
	}

	off, err := reg.region.Alloc(int64(unsafe.Sizeof(window.State{})))
	if err != nil {
		return nil, err
	}
	st := (*window.State)(reg.region.At(off))
	st.Init(intervalSeconds, currentMonotonicMicros())

	e := reg.entryAt(freeIdx)
	e.nameLen = uint32(len(name))
	copy(e.name[:], name)
	e.windowOffset = off
	e.occupied = 1

	return st, nil
}

// Names returns every name currently registered. Used by the diagnostics
// server's listing endpoint; does not require the per-Window lock of any
// individual Window, only the Region's named mutex (caller's
// responsibility, same as FindOrCreate).
func (reg *Registry) Names() []string {
	names := make([]string, 0, reg.maxEntries)
	for i := 0; i < reg.maxEntries; i++ {
		e := reg.entryAt(i)
		if e.occupied != 0 {
			names = append(names, string(e.name[:e.nameLen]))
		}
	}
	return names
}

// currentMonotonicMicros is a package-level indirection so tests can freeze
// the creation timestamp of newly allocated Windows without reaching into
// pkg/window's unexported clock var.
var currentMonotonicMicros = window.MonotonicMicros
