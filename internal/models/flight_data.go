package models

import "fmt"

// FlightDataSize FalconSharedMemoryArea 记录大小（字节）
const FlightDataSize = 1920

// FlightData 字段偏移（小端，4 字节 float32）
const (
	offX          = 0
	offY          = 4
	offZ          = 8
	offXDot       = 12
	offYDot       = 16
	offZDot       = 20
	offAlpha      = 24
	offBeta       = 28
	offGamma      = 32
	offPitch      = 36
	offRoll       = 40
	offYaw        = 44
	offMach       = 48
	offKias       = 52
	offVt         = 56
	offGs         = 60
	offInternalFu = 72
	offExternalFu = 76
	offFuelFlow   = 80
	offRPM        = 84
	offFTIT       = 88
	offGearPos    = 92
	offSpeedBrake = 96
)

// FlightData 飞行动力学快照（FalconSharedMemoryArea 的前部浮点块）
type FlightData struct {
	X, Y, Z          float32 // ft
	XDot, YDot, ZDot float32 // ft/s
	Alpha            float32 // deg
	Beta             float32
	Gamma            float32
	Pitch            float32
	Roll             float32
	Yaw              float32
	Mach             float32
	Kias             float32 // kt
	Vt               float32
	Gs               float32
	InternalFuel     float32
	ExternalFuel     float32
	FuelFlow         float32
	RPM              float32 // %
	FTIT             float32
	GearPos          float32 // 0 收起, 1 放下
	SpeedBrake       float32 // 0..1
}

// DecodeFlightData 按固定偏移解码 FlightData
func DecodeFlightData(b []byte) (FlightData, error) {
	if len(b) != FlightDataSize {
		return FlightData{}, fmt.Errorf("%w: flight data is %d bytes, want %d", ErrRecordSize, len(b), FlightDataSize)
	}

	return FlightData{
		X:            f32(b, offX),
		Y:            f32(b, offY),
		Z:            f32(b, offZ),
		XDot:         f32(b, offXDot),
		YDot:         f32(b, offYDot),
		ZDot:         f32(b, offZDot),
		Alpha:        f32(b, offAlpha),
		Beta:         f32(b, offBeta),
		Gamma:        f32(b, offGamma),
		Pitch:        f32(b, offPitch),
		Roll:         f32(b, offRoll),
		Yaw:          f32(b, offYaw),
		Mach:         f32(b, offMach),
		Kias:         f32(b, offKias),
		Vt:           f32(b, offVt),
		Gs:           f32(b, offGs),
		InternalFuel: f32(b, offInternalFu),
		ExternalFuel: f32(b, offExternalFu),
		FuelFlow:     f32(b, offFuelFlow),
		RPM:          f32(b, offRPM),
		FTIT:         f32(b, offFTIT),
		GearPos:      f32(b, offGearPos),
		SpeedBrake:   f32(b, offSpeedBrake),
	}, nil
}

// EncodeFlightData 将快照写回固定布局（用于测试和模拟生产者）
func EncodeFlightData(fd FlightData) []byte {
	b := make([]byte, FlightDataSize)
	putF32(b, offX, fd.X)
	putF32(b, offY, fd.Y)
	putF32(b, offZ, fd.Z)
	putF32(b, offXDot, fd.XDot)
	putF32(b, offYDot, fd.YDot)
	putF32(b, offZDot, fd.ZDot)
	putF32(b, offAlpha, fd.Alpha)
	putF32(b, offBeta, fd.Beta)
	putF32(b, offGamma, fd.Gamma)
	putF32(b, offPitch, fd.Pitch)
	putF32(b, offRoll, fd.Roll)
	putF32(b, offYaw, fd.Yaw)
	putF32(b, offMach, fd.Mach)
	putF32(b, offKias, fd.Kias)
	putF32(b, offVt, fd.Vt)
	putF32(b, offGs, fd.Gs)
	putF32(b, offInternalFu, fd.InternalFuel)
	putF32(b, offExternalFu, fd.ExternalFuel)
	putF32(b, offFuelFlow, fd.FuelFlow)
	putF32(b, offRPM, fd.RPM)
	putF32(b, offFTIT, fd.FTIT)
	putF32(b, offGearPos, fd.GearPos)
	putF32(b, offSpeedBrake, fd.SpeedBrake)
	return b
}
