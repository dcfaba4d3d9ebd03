// Package window implements the sliding-window aggregation engine: a fixed
// ring of slot.Slot buckets covering a configurable wall-clock interval,
// safely mutable by many goroutines and, via State's plain-old-data layout,
// by many OS processes mapping the same shared-memory region.
//
// The package is split into a pure data layout (State, safe to place in
// shared memory) and the operations that advance and fold it (Window).
// Grounded on the teacher's pkg/aggregator/sliding_window.go customerWindow
// type, generalized from fixed calendar-minute buckets to the spec's
// CASE A/B/C shift arithmetic and corrected independent min/max fold.
package window

import (
	"sync/atomic"

	"github.com/obsidian-metrics/statblock/pkg/slot"
)

// NumSlots is the fixed ring size. Ten slots per window yields the ±10%
// temporal precision the design targets.
const NumSlots = 10

// State is the complete, pointer-free layout of one Window. It is safe to
// place inside a memory-mapped shared-memory segment and cast to via
// unsafe.Pointer from any attached process: every field is a fixed-size
// scalar or array of scalars.
type State struct {
	// lock is a process-shared spinlock: 0 unlocked, 1 locked. It works
	// across processes because atomic CAS operates on the underlying
	// physical memory page, which every attached process maps identically.
	lock uint32
	_    uint32 // padding to keep the int64 fields below 8-byte aligned

	IntervalMicros int64
	WindowStart    int64
	Slots          [NumSlots]slot.Slot
}

// Init sets State to a freshly created Window covering intervalSeconds,
// starting now.
func (st *State) Init(intervalSeconds uint64, now int64) {
	st.IntervalMicros = int64(intervalSeconds) * 1_000_000
	st.WindowStart = now
	for i := range st.Slots {
		st.Slots[i].Reset()
	}
}

func (st *State) lockSpin() {
	for !atomic.CompareAndSwapUint32(&st.lock, 0, 1) {
		spinWait()
	}
}

func (st *State) unlock() {
	atomic.StoreUint32(&st.lock, 0)
}

// Window is a thin, stateless-except-for-the-pointer view over a State. Many
// Window values (in the same or different processes) may wrap the same
// State concurrently; all mutual exclusion lives in State.lock.
type Window struct {
	st *State
}

// New wraps an already-initialized State.
func New(st *State) *Window {
	return &Window{st: st}
}

// Record folds one sample into the window's current slot, performing
// whatever rollover the elapsed time since WindowStart requires first.
func (w *Window) Record(durationMicros uint64) {
	w.st.lockSpin()
	defer w.st.unlock()

	idx := w.advanceLocked(monotonicMicros())
	w.st.Slots[idx].Fold(durationMicros)
}

// Snapshot aggregates the currently live window: count, mean (integer
// division, 0 when count is 0), max (0 when empty) and min (0 when all
// slots are unset). Readers run the same time-advance step as writers
// before aggregating, so stale slots never contribute.
type Snapshot struct {
	Count uint64
	Mean  uint64
	Min   uint64
	Max   uint64
}

func (w *Window) Snapshot() Snapshot {
	w.st.lockSpin()
	defer w.st.unlock()

	w.advanceLocked(monotonicMicros())

	var snap Snapshot
	var totalSum uint64
	minSeen := slot.Unset
	for i := range w.st.Slots {
		s := &w.st.Slots[i]
		snap.Count += s.Count
		totalSum += s.Sum
		if s.Max > snap.Max {
			snap.Max = s.Max
		}
		if s.Min != slot.Unset && s.Min < minSeen {
			minSeen = s.Min
		}
	}
	if snap.Count > 0 {
		snap.Mean = totalSum / snap.Count
	}
	if minSeen != slot.Unset {
		snap.Min = minSeen
	}
	return snap
}

// advanceLocked performs the CASE A/B/C time-advance and returns the index
// of the slot that should receive the next fold. Caller must hold st.lock.
func (w *Window) advanceLocked(now int64) int {
	st := w.st
	elapsed := now - st.WindowStart
	if elapsed < 0 {
		// Clock moved backwards (or a racing advance already moved
		// WindowStart past now): treat as "just started this instant".
		elapsed = 0
	}

	interval := st.IntervalMicros
	slotSpan := interval / NumSlots

	shift := int64(0)
	if interval > 0 {
		shift = (elapsed * NumSlots) / interval
	}

	switch {
	case shift < NumSlots:
		// CASE A: in window, nothing to discard.
		return int(shift)

	case shift < 2*NumSlots:
		// CASE B: partial rollover. The shift == NumSlots edge is the
		// smallest value reaching this branch (shift == NumSlots-1 was
		// handled by CASE A above), so discard is always >= 1.
		discard := shift - (NumSlots - 1)
		shiftSlotsLeft(st, int(discard))
		st.WindowStart += discard * slotSpan
		return NumSlots - 1

	default:
		// CASE C: full rollover, everything is stale.
		for i := range st.Slots {
			st.Slots[i].Reset()
		}
		st.WindowStart += shift * slotSpan
		return 0
	}
}

// shiftSlotsLeft discards the oldest n slots and appends n empty ones,
// preserving the relative order of the survivors.
func shiftSlotsLeft(st *State, n int) {
	if n <= 0 {
		return
	}
	copy(st.Slots[:NumSlots-n], st.Slots[n:])
	for i := NumSlots - n; i < NumSlots; i++ {
		st.Slots[i].Reset()
	}
}
