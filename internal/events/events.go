package events

import (
	"context"
	"errors"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/internal/models"
)

// Type 桥接会话生命周期事件类型
type Type string

const (
	TypeSourcesReady Type = "sources_ready"
	TypeActive       Type = "active"
	TypeSuppressed   Type = "suppressed"
	TypeExited       Type = "exited"
)

// Event 生命周期事件，只在状态变化时发布（不是逐帧遥测）
type Event struct {
	SessionID string `json:"session_id"`
	Type      Type   `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Ticks     uint64 `json:"ticks"`
	Paused    bool   `json:"paused"`
	Ejecting  bool   `json:"ejecting"`
	EndFlight bool   `json:"end_flight"`
	OnGround  bool   `json:"on_ground"`
}

// NewEvent 根据会话快照构造事件
func NewEvent(sessionID string, typ Type, ticks uint64, session models.IntellivibeData) Event {
	return Event{
		SessionID: sessionID,
		Type:      typ,
		Timestamp: time.Now().Unix(),
		Ticks:     ticks,
		Paused:    session.IsPaused,
		Ejecting:  session.IsEjecting,
		EndFlight: session.IsEndFlight,
		OnGround:  session.IsOnGround,
	}
}

// Publisher 事件发布器
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Multi 依次发布到多个发布器，单个失败不影响其他
type Multi []Publisher

// Publish 发布到全部发布器
func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close 关闭全部发布器
func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop 不发布任何事件
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
