//go:build unix

package window

import "golang.org/x/sys/unix"

// platformMonotonicMicros reads CLOCK_MONOTONIC directly rather than going
// through time.Now(), because a time.Time's monotonic reading is a private,
// non-portable field: it cannot be meaningfully compared once values cross
// a process boundary through shared memory. CLOCK_MONOTONIC itself is a
// single kernel-wide clock, so every process attached to the same host sees
// the same, non-decreasing value — exactly the cross-process ordering
// WindowStart needs, and it is immune to wall-clock (NTP) adjustments.
func platformMonotonicMicros() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// Practically unreachable: CLOCK_MONOTONIC is always available on
		// unix targets. Fall back to zero elapsed rather than panicking
		// inside a lock-held hot path.
		return 0
	}
	return int64(ts.Sec)*1_000_000 + int64(ts.Nsec)/1_000
}
