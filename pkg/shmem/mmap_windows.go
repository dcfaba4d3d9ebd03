//go:build windows

package shmem

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapSegment opens (creating if absent) the backing file at path and maps
// it as a Windows file mapping object. Because the mapping name is derived
// from the file itself rather than a separate CreateFileMapping name, every
// process that opens the same path and maps it attaches to the same pages,
// mirroring the unix MAP_SHARED behaviour.
func mapSegment(path string, size int64) ([]byte, func() error, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, nil, err
	}

	handle, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_ALWAYS,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return nil, nil, err
	}
	defer windows.CloseHandle(handle)

	hi := uint32(size >> 32)
	lo := uint32(size & 0xFFFFFFFF)
	mapping, err := windows.CreateFileMapping(handle, nil, windows.PAGE_READWRITE, hi, lo, nil)
	if err != nil {
		return nil, nil, err
	}

	addr, err := windows.MapViewOfFile(mapping, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(mapping)
		return nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	unmap := func() error {
		if err := windows.UnmapViewOfFile(addr); err != nil {
			return err
		}
		return windows.CloseHandle(mapping)
	}
	return data, unmap, nil
}
