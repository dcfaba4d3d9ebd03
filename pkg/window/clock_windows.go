//go:build windows

package window

import "golang.org/x/sys/windows"

// platformMonotonicMicros uses GetTickCount64, a monotonic milliseconds-
// since-boot counter shared by every process on the machine. Millisecond
// resolution is coarser than the unix CLOCK_MONOTONIC path but sufficient
// given the spec's ±10% slot precision target.
func platformMonotonicMicros() int64 {
	return int64(windows.GetTickCount64()) * 1_000
}
