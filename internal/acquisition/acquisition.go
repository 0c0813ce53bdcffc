package acquisition

import (
	"context"
	"errors"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/internal/metrics"
	"github.com/Bartosso/bms-to-ffbeast/internal/shm"

	"go.uber.org/zap"
)

// SleepFunc 等待 d 或 ctx 结束
type SleepFunc func(ctx context.Context, d time.Duration) error

// Waiter 以固定间隔轮询数据源，直到其可用
type Waiter struct {
	interval time.Duration
	sleep    SleepFunc
	logger   *zap.Logger
}

// NewWaiter 创建轮询器
func NewWaiter(interval time.Duration, logger *zap.Logger) *Waiter {
	return &Waiter{
		interval: interval,
		sleep:    SleepContext,
		logger:   logger,
	}
}

// WithSleep 替换等待函数（测试用）
func (w *Waiter) WithSleep(sleep SleepFunc) *Waiter {
	w.sleep = sleep
	return w
}

// Wait 先等待一个间隔再尝试 open，失败则无限重试
// 只有 ctx 结束才会返回错误；生产者从未启动时会一直等待
func Wait[T any](ctx context.Context, w *Waiter, name string, open func() (T, error)) (T, error) {
	var zero T

	for attempt := 1; ; attempt++ {
		if err := w.sleep(ctx, w.interval); err != nil {
			return zero, err
		}

		v, err := open()
		if err == nil {
			metrics.AcquireAttempt(name, true)
			w.logger.Info("Shared memory source ready",
				zap.String("source", name),
				zap.Int("attempts", attempt),
			)
			return v, nil
		}
		metrics.AcquireAttempt(name, false)

		switch {
		case errors.Is(err, shm.ErrUnavailable):
			if attempt == 1 {
				w.logger.Info("Waiting for simulator shared memory",
					zap.String("source", name),
					zap.Duration("interval", w.interval),
				)
			} else {
				w.logger.Debug("Shared memory still unavailable",
					zap.String("source", name),
					zap.Int("attempt", attempt),
				)
			}
		default:
			w.logger.Warn("Failed to open shared memory, retrying",
				zap.String("source", name),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
	}
}

// SleepContext 等待 d，ctx 结束时提前返回 ctx.Err()
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
