package source

import (
	"fmt"

	"github.com/Bartosso/bms-to-ffbeast/internal/config"
	"github.com/Bartosso/bms-to-ffbeast/internal/models"
	"github.com/Bartosso/bms-to-ffbeast/internal/shm"
)

// Snapshotter 共享内存快照读取（单元测试中可替换）
// Snapshot 每次返回 Size() 字节
type Snapshotter interface {
	Size() int
	Snapshot() []byte
	Close() error
}

// FlightSource FalconSharedMemoryArea 数据源
type FlightSource struct {
	seg Snapshotter
}

// SessionSource FalconIntellivibeSharedMemoryArea 数据源
type SessionSource struct {
	seg Snapshotter
}

// OpenFlight 打开飞行数据共享内存
func OpenFlight(cfg config.SourceConfig) (*FlightSource, error) {
	seg, err := shm.Open(cfg.Dir, cfg.FlightName, models.FlightDataSize)
	if err != nil {
		return nil, err
	}
	return newFlightSource(seg)
}

// OpenSession 打开会话数据共享内存
func OpenSession(cfg config.SourceConfig) (*SessionSource, error) {
	seg, err := shm.Open(cfg.Dir, cfg.SessionName, models.IntellivibeDataSize)
	if err != nil {
		return nil, err
	}
	return newSessionSource(seg)
}

// NewFlightSource 基于已打开的快照读取器创建数据源，大小必须与记录一致
func NewFlightSource(seg Snapshotter) (*FlightSource, error) {
	if err := checkSize(seg, models.FlightDataSize); err != nil {
		return nil, err
	}
	return &FlightSource{seg: seg}, nil
}

// NewSessionSource 基于已打开的快照读取器创建数据源，大小必须与记录一致
func NewSessionSource(seg Snapshotter) (*SessionSource, error) {
	if err := checkSize(seg, models.IntellivibeDataSize); err != nil {
		return nil, err
	}
	return &SessionSource{seg: seg}, nil
}

// newFlightSource 打开失败时释放映射
func newFlightSource(seg Snapshotter) (*FlightSource, error) {
	src, err := NewFlightSource(seg)
	if err != nil {
		seg.Close()
		return nil, err
	}
	return src, nil
}

func newSessionSource(seg Snapshotter) (*SessionSource, error) {
	src, err := NewSessionSource(seg)
	if err != nil {
		seg.Close()
		return nil, err
	}
	return src, nil
}

func checkSize(seg Snapshotter, want int) error {
	if got := seg.Size(); got != want {
		return fmt.Errorf("%w: segment is %d bytes, record is %d", shm.ErrSizeMismatch, got, want)
	}
	return nil
}

// Read 读取最新飞行数据快照
// 大小在创建时已校验；读到的可能是生产者写了一半的数据
func (s *FlightSource) Read() models.FlightData {
	fd, _ := models.DecodeFlightData(s.seg.Snapshot())
	return fd
}

// Close 释放映射
func (s *FlightSource) Close() error {
	return s.seg.Close()
}

// Read 读取最新会话数据快照
func (s *SessionSource) Read() models.IntellivibeData {
	d, _ := models.DecodeIntellivibeData(s.seg.Snapshot())
	return d
}

// Close 释放映射
func (s *SessionSource) Close() error {
	return s.seg.Close()
}
