package models

import "time"

// SessionStats 一次桥接运行的发送统计
type SessionStats struct {
	TicksActive     uint64
	TicksSuppressed uint64
	SendErrors      uint64
}

// Ticks 已渲染的总帧数
func (s SessionStats) Ticks() uint64 {
	return s.TicksActive + s.TicksSuppressed
}

// FlightSession bms_flight_sessions 表记录
type FlightSession struct {
	SessionID string
	StartedAt time.Time
	ReadyAt   *time.Time
	EndedAt   *time.Time
	Stats     SessionStats
}
