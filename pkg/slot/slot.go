// Package slot defines the fixed-precision accumulator that backs one time
// bucket of a window.Window. A Slot has no pointers and no methods that
// allocate, so it is safe to place inside a memory-mapped, cross-process
// shared-memory segment via unsafe.Pointer.
package slot

// Unset is the sentinel Min value meaning "no sample has landed in this
// slot since it was last reset."
const Unset = ^uint64(0)

// Slot accumulates count/sum/min/max for one time bucket.
//
// Invariant: Count == 0 implies Sum == 0, Max == 0 and Min == Unset.
// Invariant: Count > 0 implies Min <= Sum/Count <= Max.
type Slot struct {
	Count uint64
	Sum   uint64
	Min   uint64
	Max   uint64
}

// Reset returns the slot to its empty state, ready for new samples.
func (s *Slot) Reset() {
	s.Count = 0
	s.Sum = 0
	s.Min = Unset
	s.Max = 0
}

// Empty reports whether the slot holds no samples.
func (s *Slot) Empty() bool {
	return s.Count == 0
}

// Fold merges one sample into the slot. Min and Max are updated
// independently of one another — a prior version of this algorithm
// only updated Max in an else-if branch off the Min comparison, which
// silently dropped the Max update whenever a sample also happened to set
// a new Min. That bug is not reproduced here.
func (s *Slot) Fold(duration uint64) {
	s.Count++
	s.Sum += duration
	if s.Count == 1 || duration < s.Min {
		s.Min = duration
	}
	if duration > s.Max {
		s.Max = duration
	}
}
