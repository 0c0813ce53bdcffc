package models

import (
	"errors"
	"fmt"
)

// IntellivibeDataSize FalconIntellivibeSharedMemoryArea 记录大小（字节）
const IntellivibeDataSize = 52

// ErrRecordSize 缓冲区长度与记录大小不一致
var ErrRecordSize = errors.New("record size mismatch")

// IntellivibeData 字段偏移（C 布局：6 个 uchar，2 字节填充，int，9 个 bool，3 字节填充，float...）
const (
	offCollisionCounter = 8
	offIsFiringGun      = 12
	offIsEndFlight      = 13
	offIsEjecting       = 14
	offIn3D             = 15
	offIsPaused         = 16
	offIsFrozen         = 17
	offIsOverG          = 18
	offIsOnGround       = 19
	offIsExitGame       = 20
	offGforce           = 24
)

// IntellivibeData 会话/事件快照
type IntellivibeData struct {
	CollisionCounter int32
	IsFiringGun      bool
	IsEndFlight      bool
	IsEjecting       bool
	In3D             bool
	IsPaused         bool
	IsFrozen         bool
	IsOverG          bool
	IsOnGround       bool
	IsExitGame       bool
	GForce           float32
}

// DecodeIntellivibeData 按固定偏移解码 IntellivibeData
// C++ bool 占 1 字节，非零即为 true
func DecodeIntellivibeData(b []byte) (IntellivibeData, error) {
	if len(b) != IntellivibeDataSize {
		return IntellivibeData{}, fmt.Errorf("%w: intellivibe data is %d bytes, want %d", ErrRecordSize, len(b), IntellivibeDataSize)
	}

	return IntellivibeData{
		CollisionCounter: int32(le32(b, offCollisionCounter)),
		IsFiringGun:      b[offIsFiringGun] != 0,
		IsEndFlight:      b[offIsEndFlight] != 0,
		IsEjecting:       b[offIsEjecting] != 0,
		In3D:             b[offIn3D] != 0,
		IsPaused:         b[offIsPaused] != 0,
		IsFrozen:         b[offIsFrozen] != 0,
		IsOverG:          b[offIsOverG] != 0,
		IsOnGround:       b[offIsOnGround] != 0,
		IsExitGame:       b[offIsExitGame] != 0,
		GForce:           f32(b, offGforce),
	}, nil
}

// EncodeIntellivibeData 将快照写回固定布局（用于测试和模拟生产者）
func EncodeIntellivibeData(d IntellivibeData) []byte {
	b := make([]byte, IntellivibeDataSize)
	putLE32(b, offCollisionCounter, uint32(d.CollisionCounter))
	b[offIsFiringGun] = boolByte(d.IsFiringGun)
	b[offIsEndFlight] = boolByte(d.IsEndFlight)
	b[offIsEjecting] = boolByte(d.IsEjecting)
	b[offIn3D] = boolByte(d.In3D)
	b[offIsPaused] = boolByte(d.IsPaused)
	b[offIsFrozen] = boolByte(d.IsFrozen)
	b[offIsOverG] = boolByte(d.IsOverG)
	b[offIsOnGround] = boolByte(d.IsOnGround)
	b[offIsExitGame] = boolByte(d.IsExitGame)
	putF32(b, offGforce, d.GForce)
	return b
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
