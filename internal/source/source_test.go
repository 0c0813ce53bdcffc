package source

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/internal/config"
	"github.com/Bartosso/bms-to-ffbeast/internal/models"
	"github.com/Bartosso/bms-to-ffbeast/internal/shm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSegment struct {
	data   []byte
	closed bool
}

func (f *fakeSegment) Size() int {
	return len(f.data)
}

func (f *fakeSegment) Snapshot() []byte {
	buf := make([]byte, len(f.data))
	copy(buf, f.data)
	return buf
}

func (f *fakeSegment) Close() error {
	f.closed = true
	return nil
}

func TestFlightSource_Read(t *testing.T) {
	seg := &fakeSegment{data: models.EncodeFlightData(models.FlightData{Kias: 250, SpeedBrake: 0.25})}
	src, err := NewFlightSource(seg)
	require.NoError(t, err)

	fd := src.Read()
	assert.Equal(t, float32(250), fd.Kias)
	assert.Equal(t, float32(0.25), fd.SpeedBrake)

	require.NoError(t, src.Close())
	assert.True(t, seg.closed)
}

func TestSessionSource_ReadFollowsProducer(t *testing.T) {
	seg := &fakeSegment{data: models.EncodeIntellivibeData(models.IntellivibeData{GForce: 1})}
	src, err := NewSessionSource(seg)
	require.NoError(t, err)
	assert.False(t, src.Read().IsExitGame)

	seg.data = models.EncodeIntellivibeData(models.IntellivibeData{IsExitGame: true})
	assert.True(t, src.Read().IsExitGame)
}

func TestNewSource_RejectsWrongSize(t *testing.T) {
	_, err := NewFlightSource(&fakeSegment{data: make([]byte, models.FlightDataSize-4)})
	assert.ErrorIs(t, err, shm.ErrSizeMismatch)

	_, err = NewSessionSource(&fakeSegment{data: make([]byte, models.FlightDataSize)})
	assert.ErrorIs(t, err, shm.ErrSizeMismatch)
}

func TestSessionSource_ReadShortSnapshotDoesNotPanic(t *testing.T) {
	seg := &fakeSegment{data: models.EncodeIntellivibeData(models.IntellivibeData{IsPaused: true})}
	src, err := NewSessionSource(seg)
	require.NoError(t, err)

	seg.data = seg.data[:10]
	assert.NotPanics(t, func() {
		assert.Equal(t, models.IntellivibeData{}, src.Read())
	})
}

func TestOpen_FromSegmentDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("named file mappings are not backed by a directory on windows")
	}

	dir := t.TempDir()
	cfg := config.SourceConfig{
		Dir:          dir,
		FlightName:   "FalconSharedMemoryArea",
		SessionName:  "FalconIntellivibeSharedMemoryArea",
		WaitInterval: time.Millisecond,
	}

	_, err := OpenFlight(cfg)
	assert.ErrorIs(t, err, shm.ErrUnavailable)

	flight := models.EncodeFlightData(models.FlightData{Kias: 100})
	require.NoError(t, os.WriteFile(filepath.Join(dir, cfg.FlightName), flight, 0o644))
	session := models.EncodeIntellivibeData(models.IntellivibeData{IsOnGround: true})
	require.NoError(t, os.WriteFile(filepath.Join(dir, cfg.SessionName), session, 0o644))

	fs, err := OpenFlight(cfg)
	require.NoError(t, err)
	defer fs.Close()
	assert.Equal(t, float32(100), fs.Read().Kias)

	ss, err := OpenSession(cfg)
	require.NoError(t, err)
	defer ss.Close()
	assert.True(t, ss.Read().IsOnGround)
}
