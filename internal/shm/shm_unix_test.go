//go:build unix

package shm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSegmentFile(t *testing.T, dir, name string, size int) *os.File {
	t.Helper()
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(int64(size)))
	t.Cleanup(func() { f.Close() })
	return f
}

func TestOpen_Unavailable(t *testing.T) {
	_, err := Open(t.TempDir(), "FalconSharedMemoryArea", 1920)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpen_TooSmall(t *testing.T) {
	dir := t.TempDir()
	createSegmentFile(t, dir, "seg", 16)

	_, err := Open(dir, "seg", 52)
	assert.ErrorIs(t, err, ErrSizeMismatch)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestOpen_InvalidSize(t *testing.T) {
	_, err := Open(t.TempDir(), "seg", 0)
	assert.Error(t, err)
}

func TestSnapshot_SeesProducerWrites(t *testing.T) {
	dir := t.TempDir()
	f := createSegmentFile(t, dir, "seg", 64)

	seg, err := Open(dir, "seg", 52)
	require.NoError(t, err)
	defer seg.Close()

	assert.Equal(t, "seg", seg.Name())
	assert.Equal(t, 52, seg.Size())

	first := seg.Snapshot()
	require.Len(t, first, 52)
	assert.Equal(t, byte(0), first[20])

	_, err = f.WriteAt([]byte{1}, 20)
	require.NoError(t, err)

	second := seg.Snapshot()
	assert.Equal(t, byte(1), second[20])
	// earlier snapshots are copies
	assert.Equal(t, byte(0), first[20])
}

func TestClose_Idempotent(t *testing.T) {
	dir := t.TempDir()
	createSegmentFile(t, dir, "seg", 8)

	seg, err := Open(dir, "seg", 8)
	require.NoError(t, err)
	require.NoError(t, seg.Close())
	assert.NoError(t, seg.Close())
}
