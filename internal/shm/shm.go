package shm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable the producer has not created the segment yet
	ErrUnavailable = errors.New("shared memory segment unavailable")
	// ErrSizeMismatch the segment exists but is smaller than the record
	ErrSizeMismatch = errors.New("shared memory segment too small")
)

// Segment a read-only view of a named shared-memory segment
type Segment struct {
	name  string
	size  int
	mem   []byte
	unmap func() error
}

// Open maps the segment name with exactly size readable bytes.
// dir is ignored on Windows.
func Open(dir, name string, size int) (*Segment, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid segment size %d for %s", size, name)
	}

	mem, unmap, err := openSegment(dir, name, size)
	if err != nil {
		return nil, err
	}

	return &Segment{
		name:  name,
		size:  size,
		mem:   mem[:size],
		unmap: unmap,
	}, nil
}

// Name returns the segment name
func (s *Segment) Name() string {
	return s.name
}

// Size returns the record size this segment was opened with
func (s *Segment) Size() int {
	return s.size
}

// Snapshot copies the current bytes of the segment
func (s *Segment) Snapshot() []byte {
	buf := make([]byte, s.size)
	copy(buf, s.mem)
	return buf
}

// Close unmaps the segment; the Segment must not be used afterwards.
func (s *Segment) Close() error {
	if s.unmap == nil {
		return nil
	}
	err := s.unmap()
	s.unmap = nil
	s.mem = nil
	return err
}
