//go:build unix

package shmem

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// namedMutex is a cross-process mutex backed by flock(2) on a side-channel
// lock file. It exists because the Region's backing segment may not exist
// yet the first time a process needs to serialize construction of its
// Header — a plain in-memory sync.Mutex only works within one process, and
// an advisory lock on a dedicated file is available before (and
// independently of) the mmap'd segment itself. Grounded on the file-locking
// pattern in the slotcache reference package.
type namedMutex struct {
	f *os.File
}

func openNamedMutex(name string) (*namedMutex, error) {
	path := filepath.Join(os.TempDir(), "statblock-"+name+".lock")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}
	return &namedMutex{f: f}, nil
}

func (m *namedMutex) Lock() {
	if err := unix.Flock(int(m.f.Fd()), unix.LOCK_EX); err != nil {
		panic("shmem: flock acquire failed: " + err.Error())
	}
}

func (m *namedMutex) Unlock() {
	if err := unix.Flock(int(m.f.Fd()), unix.LOCK_UN); err != nil {
		panic("shmem: flock release failed: " + err.Error())
	}
}

func (m *namedMutex) Close() error {
	return m.f.Close()
}
