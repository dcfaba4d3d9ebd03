package window

import (
	"sync"
	"testing"
)

// fakeClock lets tests drive monotonicMicros deterministically, the same
// test-seam idiom the teacher's CDN sliding window tests used with
// time.Now() but applied to our injectable clock var.
func fakeClock(t *testing.T) *int64 {
	t.Helper()
	now := new(int64)
	prev := monotonicMicros
	monotonicMicros = func() int64 { return *now }
	t.Cleanup(func() { monotonicMicros = prev })
	return now
}

func newTestWindow(intervalSeconds uint64, start int64) (*Window, *State) {
	var st State
	st.Init(intervalSeconds, start)
	return New(&st), &st
}

func TestCaseAInWindow(t *testing.T) {
	now := fakeClock(t)
	w, _ := newTestWindow(10, 0) // 10s interval, 1s per slot

	*now = 500_000 // 0.5s -> still slot 0
	w.Record(10)
	*now = 1_500_000 // 1.5s -> slot 1
	w.Record(20)

	snap := w.Snapshot()
	if snap.Count != 2 {
		t.Fatalf("expected count 2, got %d", snap.Count)
	}
	if snap.Min != 10 || snap.Max != 20 {
		t.Fatalf("expected min=10 max=20, got %+v", snap)
	}
}

func TestCaseBPartialRollover(t *testing.T) {
	now := fakeClock(t)
	w, st := newTestWindow(10, 0) // slotSpan = 1s

	*now = 500_000
	w.Record(1) // slot 0

	// Advance into CASE B: elapsed=10.5s -> shift = 10 (10 <= shift < 20)
	*now = 10_500_000
	w.Record(2)

	snap := w.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected only the most recent record to survive rollover, got count=%d", snap.Count)
	}
	if snap.Min != 2 || snap.Max != 2 {
		t.Fatalf("expected min=max=2 after rollover, got %+v", snap)
	}
	if st.WindowStart == 0 {
		t.Fatalf("expected WindowStart to advance on partial rollover")
	}
}

func TestCaseCFullRollover(t *testing.T) {
	now := fakeClock(t)
	w, _ := newTestWindow(10, 0)

	*now = 100_000
	w.Record(1)

	*now = 25_000_000 // elapsed=25s, shift=25 >= 2*NumSlots(20): full rollover
	snap := w.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected fully stale window to read as empty, got count=%d", snap.Count)
	}
	if snap.Min != 0 || snap.Max != 0 || snap.Mean != 0 {
		t.Fatalf("expected zeroed aggregate after full rollover, got %+v", snap)
	}
}

func TestCaseBEdgeShiftEqualsNMinus1TreatedAsCaseA(t *testing.T) {
	now := fakeClock(t)
	w, st := newTestWindow(10, 0) // slotSpan = 1s

	startWindowStart := st.WindowStart

	// elapsed such that shift == NumSlots-1 == 9: must be CASE A (no
	// rollover), per the explicit guard in spec §9 against treating this
	// as the start of CASE B.
	*now = 9_000_000
	w.Record(7)

	if st.WindowStart != startWindowStart {
		t.Fatalf("expected WindowStart unchanged at the CASE A/B boundary, got %d", st.WindowStart)
	}
	snap := w.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected the sample to be recorded, got count=%d", snap.Count)
	}
}

func TestWindowedForgetting(t *testing.T) {
	now := fakeClock(t)
	w, _ := newTestWindow(1, 0) // 1s interval

	*now = 0
	w.Record(5)

	*now = 3_000_000 // 3s later, well past the 1s interval
	snap := w.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected record older than the interval to be forgotten, got count=%d", snap.Count)
	}
}

func TestScenarioS3MixedDurations(t *testing.T) {
	now := fakeClock(t)
	w, _ := newTestWindow(2, 0)

	*now = 0
	w.Record(100)
	*now = 300_000 // t=0.3s
	w.Record(1)
	*now = 500_000 // t=0.5s

	snap := w.Snapshot()
	if snap.Count != 2 {
		t.Fatalf("expected count=2, got %d", snap.Count)
	}
	if snap.Min != 1 || snap.Max != 100 {
		t.Fatalf("expected min=1 max=100, got %+v", snap)
	}
	if snap.Mean != 50 {
		t.Fatalf("expected mean=50, got %d", snap.Mean)
	}
}

func TestConcurrentRecordFromManyGoroutines(t *testing.T) {
	// Scenario S6: 8 threads each record 100_000 samples of duration 7.
	w, _ := newTestWindow(1, 0)

	const goroutines = 8
	const perGoroutine = 100_000
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				w.Record(7)
			}
		}()
	}
	wg.Wait()

	snap := w.Snapshot()
	if snap.Count != goroutines*perGoroutine {
		t.Fatalf("expected count=%d, got %d", goroutines*perGoroutine, snap.Count)
	}
	if snap.Min != 7 || snap.Max != 7 || snap.Mean != 7 {
		t.Fatalf("expected min=max=mean=7, got %+v", snap)
	}
}

func TestMinMaxIndependentUpdateAcrossRecords(t *testing.T) {
	w, _ := newTestWindow(600, 0)
	w.Record(100)
	w.Record(1) // a new min must not suppress Max staying at 100

	snap := w.Snapshot()
	if snap.Max != 100 {
		t.Fatalf("expected max to remain 100, got %d", snap.Max)
	}
	if snap.Min != 1 {
		t.Fatalf("expected min to become 1, got %d", snap.Min)
	}
}

func TestClockMovingBackwardsClampsToZeroElapsed(t *testing.T) {
	now := fakeClock(t)
	w, st := newTestWindow(10, 1_000_000)

	*now = 500_000 // before WindowStart: elapsed would be negative
	w.Record(9)

	if st.WindowStart != 1_000_000 {
		t.Fatalf("expected WindowStart unchanged, got %d", st.WindowStart)
	}
	snap := w.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected the sample recorded into slot 0, got count=%d", snap.Count)
	}
}
