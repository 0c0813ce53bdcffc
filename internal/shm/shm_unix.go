//go:build unix

package shm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

func segmentPath(dir, name string) string {
	return filepath.Join(dir, name)
}

func openSegment(dir, name string, size int) ([]byte, func() error, error) {
	path := segmentPath(dir, name)

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnavailable, path)
		}
		return nil, nil, fmt.Errorf("failed to open shared memory %s: %w", path, err)
	}
	// the mapping outlives the descriptor
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat shared memory %s: %w", path, err)
	}
	if info.Size() < int64(size) {
		return nil, nil, fmt.Errorf("%w: %s is %d bytes, want %d", ErrSizeMismatch, path, info.Size(), size)
	}

	mem, err := unix.Mmap(int(file.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to mmap shared memory %s: %w", path, err)
	}

	return mem, func() error { return unix.Munmap(mem) }, nil
}
