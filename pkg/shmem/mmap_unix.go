//go:build unix

package shmem

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapSegment opens (creating if absent) the backing file at path, truncates
// it up to size if it is smaller, and maps it MAP_SHARED so that writes are
// visible to every other process with the same file mapped, exactly the
// property the Region's cross-process Header and Windows depend on.
func mapSegment(path string, size int64) ([]byte, func() error, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if info.Size() < size {
		if err := f.Truncate(size); err != nil {
			return nil, nil, err
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}

	unmap := func() error {
		return unix.Munmap(data)
	}
	return data, unmap, nil
}
