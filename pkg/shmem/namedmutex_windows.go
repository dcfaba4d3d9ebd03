//go:build windows

package shmem

import (
	"golang.org/x/sys/windows"
)

// namedMutex wraps a true Windows kernel named mutex. Unlike the unix side
// (where a flock-guarded side file is the simplest thing available before
// the segment exists), Windows offers a named mutex object directly —
// CreateMutex auto-creates it on first use and every process naming the
// same string attaches to the same kernel object, so this is the idiomatic
// choice on this platform rather than a workaround.
type namedMutex struct {
	handle windows.Handle
}

func openNamedMutex(name string) (*namedMutex, error) {
	namePtr, err := windows.UTF16PtrFromString(`Global\statblock-` + name)
	if err != nil {
		return nil, err
	}
	handle, err := windows.CreateMutex(nil, false, namePtr)
	if err != nil {
		return nil, err
	}
	return &namedMutex{handle: handle}, nil
}

func (m *namedMutex) Lock() {
	windows.WaitForSingleObject(m.handle, windows.INFINITE)
}

func (m *namedMutex) Unlock() {
	windows.ReleaseMutex(m.handle)
}

func (m *namedMutex) Close() error {
	return windows.CloseHandle(m.handle)
}
