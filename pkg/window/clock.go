package window

import "runtime"

// monotonicMicros is overridden by platform-specific files below, and by
// tests that need deterministic control over elapsed time. Mirrors the
// catrate package's `timeNow = time.Now` test-seam idiom, generalized to a
// monotonic-since-boot clock because WindowStart must be comparable across
// processes on the same host, not just goroutines in one.
var monotonicMicros = platformMonotonicMicros

// MonotonicMicros exposes the same monotonic-since-boot clock Record and
// Snapshot use, for callers (e.g. the registry, stamping a newly created
// Window's WindowStart) that need a consistent "now" outside of a Window
// method.
func MonotonicMicros() int64 {
	return monotonicMicros()
}

func spinWait() {
	// A single Gosched is enough: the critical section guarded by this
	// spinlock is O(NumSlots) and never blocks on I/O, so contention is
	// brief.
	runtime.Gosched()
}
