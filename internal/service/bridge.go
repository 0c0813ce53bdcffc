package service

import (
	"context"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/internal/acquisition"
	"github.com/Bartosso/bms-to-ffbeast/internal/config"
	"github.com/Bartosso/bms-to-ffbeast/internal/events"
	"github.com/Bartosso/bms-to-ffbeast/internal/metrics"
	"github.com/Bartosso/bms-to-ffbeast/internal/models"
	"github.com/Bartosso/bms-to-ffbeast/internal/transformer"
	"github.com/Bartosso/bms-to-ffbeast/internal/transport"

	"go.uber.org/zap"
)

// 事件发布的超时时间，避免慢 broker 拖住 tick 循环
const publishTimeout = 500 * time.Millisecond

// FlightReader 飞行数据源
type FlightReader interface {
	Read() models.FlightData
	Close() error
}

// SessionReader 会话数据源
type SessionReader interface {
	Read() models.IntellivibeData
	Close() error
}

// SessionRecorder 会话历史记录
type SessionRecorder interface {
	Start(ctx context.Context, sessionID string, startedAt time.Time) error
	MarkReady(ctx context.Context, sessionID string, readyAt time.Time) error
	Finish(ctx context.Context, sessionID string, endedAt time.Time, stats models.SessionStats) error
}

// Deps 桥接循环的外部协作者
type Deps struct {
	Sender      transport.Sender
	OpenFlight  func() (FlightReader, error)
	OpenSession func() (SessionReader, error)
	Publisher   events.Publisher      // 可为 nil
	Recorder    SessionRecorder       // 可为 nil
	Sleep       acquisition.SleepFunc // 可为 nil，默认 acquisition.SleepContext
}

// Bridge 共享内存 -> UDP 桥接循环
type Bridge struct {
	config    *config.Config
	logger    *zap.Logger
	deps      Deps
	waiter    *acquisition.Waiter
	sessionID string
	stats     models.SessionStats
}

// NewBridge 创建桥接循环
func NewBridge(cfg *config.Config, sessionID string, deps Deps, logger *zap.Logger) *Bridge {
	if deps.Sleep == nil {
		deps.Sleep = acquisition.SleepContext
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}

	return &Bridge{
		config:    cfg,
		logger:    logger,
		deps:      deps,
		waiter:    acquisition.NewWaiter(cfg.Source.WaitInterval, logger).WithSleep(deps.Sleep),
		sessionID: sessionID,
	}
}

// SessionID 本次运行的会话 ID
func (b *Bridge) SessionID() string {
	return b.sessionID
}

// Stats 当前发送统计
func (b *Bridge) Stats() models.SessionStats {
	return b.stats
}

// Run 等待两个数据源可用，然后逐帧发送，直到模拟器退出
// 正常退出（IsExitGame）返回 nil；只有 ctx 结束才会返回错误
func (b *Bridge) Run(ctx context.Context) error {
	b.record(ctx, "start", func(ctx context.Context, r SessionRecorder) error {
		return r.Start(ctx, b.sessionID, time.Now())
	})

	flight, err := acquisition.Wait(ctx, b.waiter, "flight", b.deps.OpenFlight)
	if err != nil {
		return err
	}
	defer flight.Close()

	session, err := acquisition.Wait(ctx, b.waiter, "session", b.deps.OpenSession)
	if err != nil {
		return err
	}
	defer session.Close()

	b.logger.Info("Simulator shared memory ready, streaming telemetry",
		zap.String("session_id", b.sessionID),
		zap.String("destination", b.config.Transport.Address()),
		zap.Duration("tick_interval", b.config.TickInterval),
	)
	b.publish(ctx, events.TypeSourcesReady, models.IntellivibeData{})
	b.record(ctx, "ready", func(ctx context.Context, r SessionRecorder) error {
		return r.MarkReady(ctx, b.sessionID, time.Now())
	})

	last, err := b.loop(ctx, flight, session)
	if err != nil {
		return err
	}

	b.publish(ctx, events.TypeExited, last)
	b.record(ctx, "finish", func(ctx context.Context, r SessionRecorder) error {
		return r.Finish(ctx, b.sessionID, time.Now(), b.stats)
	})
	return nil
}

// loop tick 循环；返回退出时的会话快照
func (b *Bridge) loop(ctx context.Context, flight FlightReader, session SessionReader) (models.IntellivibeData, error) {
	lastMode := transformer.Mode(-1)

	for {
		if err := b.deps.Sleep(ctx, b.config.TickInterval); err != nil {
			return models.IntellivibeData{}, err
		}

		s := session.Read()
		if s.IsExitGame {
			return s, nil
		}

		line, mode := transformer.Render(flight.Read(), s)
		if err := b.deps.Sender.Send([]byte(line)); err != nil {
			b.stats.SendErrors++
			metrics.SendError()
		}

		if mode == transformer.ModeSuppressed {
			b.stats.TicksSuppressed++
		} else {
			b.stats.TicksActive++
		}
		metrics.Tick(mode.String())

		if mode != lastMode {
			b.modeChanged(ctx, mode, s)
			lastMode = mode
		}
	}
}

func (b *Bridge) modeChanged(ctx context.Context, mode transformer.Mode, s models.IntellivibeData) {
	b.logger.Info("Output mode changed",
		zap.Stringer("mode", mode),
		zap.Bool("paused", s.IsPaused),
		zap.Bool("ejecting", s.IsEjecting),
		zap.Bool("end_flight", s.IsEndFlight),
	)

	typ := events.TypeActive
	if mode == transformer.ModeSuppressed {
		typ = events.TypeSuppressed
	}
	b.publish(ctx, typ, s)
}

func (b *Bridge) publish(ctx context.Context, typ events.Type, s models.IntellivibeData) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	event := events.NewEvent(b.sessionID, typ, b.stats.Ticks(), s)
	if err := b.deps.Publisher.Publish(ctx, event); err != nil {
		b.logger.Warn("Failed to publish session event", zap.String("type", string(typ)), zap.Error(err))
	}
}

func (b *Bridge) record(ctx context.Context, step string, fn func(context.Context, SessionRecorder) error) {
	if b.deps.Recorder == nil {
		return
	}
	if err := fn(ctx, b.deps.Recorder); err != nil {
		b.logger.Warn("Failed to record flight session", zap.String("step", step), zap.Error(err))
	}
}
