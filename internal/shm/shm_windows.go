//go:build windows

package shm

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const fileMapRead = 0x0004

var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMappingW = modkernel32.NewProc("OpenFileMappingW")
)

func openFileMapping(access uint32, name string) (windows.Handle, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	r, _, callErr := procOpenFileMappingW.Call(uintptr(access), 0, uintptr(unsafe.Pointer(namePtr)))
	if r == 0 {
		return 0, callErr
	}
	return windows.Handle(r), nil
}

func openSegment(_ string, name string, size int) ([]byte, func() error, error) {
	handle, err := openFileMapping(fileMapRead, name)
	if err != nil {
		if errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnavailable, name)
		}
		return nil, nil, fmt.Errorf("failed to open file mapping %s: %w", name, err)
	}

	addr, err := windows.MapViewOfFile(handle, fileMapRead, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(handle)
		if errors.Is(err, windows.ERROR_ACCESS_DENIED) {
			// a view larger than the section is refused with access denied
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrSizeMismatch, name, err)
		}
		return nil, nil, fmt.Errorf("failed to map view of %s: %w", name, err)
	}

	mem := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	unmap := func() error {
		err := windows.UnmapViewOfFile(addr)
		if cerr := windows.CloseHandle(handle); err == nil {
			err = cerr
		}
		return err
	}
	return mem, unmap, nil
}
