package transformer

import (
	"strconv"
	"strings"

	"github.com/Bartosso/bms-to-ffbeast/internal/models"
)

// 单位换算系数
const (
	KnotsToKmh     float32 = 1.852
	FeetToMeters   float32 = 0.3048
	FractionToPct  float32 = 100
	LineTag                = "bms"
	FieldSeparator         = ';'
	FieldCount             = 9
)

// Mode 输出模式
type Mode int

const (
	// ModeActive 发送真实数据
	ModeActive Mode = iota
	// ModeSuppressed 暂停/弹射/结束飞行，发送全零行
	ModeSuppressed
)

func (m Mode) String() string {
	switch m {
	case ModeActive:
		return "active"
	case ModeSuppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// DecideMode 根据会话标志决定输出模式
// IsExitGame 不是模式，由调用方单独检查以结束循环
func DecideMode(session models.IntellivibeData) Mode {
	if session.IsPaused || session.IsEjecting || session.IsEndFlight {
		return ModeSuppressed
	}
	return ModeActive
}

// Fields 一行输出的九个数值字段，顺序即线上顺序
type Fields struct {
	IndicatedAirspeedKmh float32
	VerticalSpeedKmh     float32
	AoA                  float32
	GForce               float32
	Gear                 float32
	AirbrakePct          float32
	Flaps                float32 // 共享内存中没有襟翼数据，始终为 0
	Thrust               float32
	OnGround             float32
}

// Compute 执行单位换算
func Compute(flight models.FlightData, session models.IntellivibeData) Fields {
	var onGround float32
	if session.IsOnGround {
		onGround = 1
	}

	return Fields{
		IndicatedAirspeedKmh: flight.Kias * KnotsToKmh,
		VerticalSpeedKmh:     flight.ZDot * FeetToMeters,
		AoA:                  flight.Alpha,
		GForce:               session.GForce,
		Gear:                 flight.GearPos,
		AirbrakePct:          flight.SpeedBrake * FractionToPct,
		Flaps:                0,
		Thrust:               flight.RPM,
		OnGround:             onGround,
	}
}

// Line 按线上格式渲染: bms;f1;...;f9\n，每个字段保留两位小数
func (f Fields) Line() string {
	values := [FieldCount]float32{
		f.IndicatedAirspeedKmh,
		f.VerticalSpeedKmh,
		f.AoA,
		f.GForce,
		f.Gear,
		f.AirbrakePct,
		f.Flaps,
		f.Thrust,
		f.OnGround,
	}

	var sb strings.Builder
	sb.Grow(len(LineTag) + FieldCount*8 + 1)
	sb.WriteString(LineTag)
	for _, v := range values {
		sb.WriteByte(FieldSeparator)
		sb.WriteString(strconv.FormatFloat(float64(v), 'f', 2, 32))
	}
	sb.WriteByte('\n')
	return sb.String()
}

// RenderActive 渲染真实数据行
func RenderActive(flight models.FlightData, session models.IntellivibeData) string {
	return Compute(flight, session).Line()
}

// RenderZero 渲染全零行
func RenderZero() string {
	return Fields{}.Line()
}

// Render 根据会话状态选择真实数据行或全零行
func Render(flight models.FlightData, session models.IntellivibeData) (string, Mode) {
	mode := DecideMode(session)
	if mode == ModeSuppressed {
		return RenderZero(), mode
	}
	return RenderActive(flight, session), mode
}
