package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/internal/models"

	"go.uber.org/zap"
)

// FlightSessionRepository bms_flight_sessions 表仓库（每次桥接运行一行）
type FlightSessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFlightSessionRepository 创建会话历史仓库
func NewFlightSessionRepository(db *sql.DB, logger *zap.Logger) *FlightSessionRepository {
	return &FlightSessionRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema 创建表（如不存在）
func (r *FlightSessionRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS bms_flight_sessions (
			session_id       UUID PRIMARY KEY,
			started_at       TIMESTAMPTZ NOT NULL,
			ready_at         TIMESTAMPTZ,
			ended_at         TIMESTAMPTZ,
			ticks_active     BIGINT NOT NULL DEFAULT 0,
			ticks_suppressed BIGINT NOT NULL DEFAULT 0,
			send_errors      BIGINT NOT NULL DEFAULT 0
		)
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create bms_flight_sessions: %w", err)
	}
	return nil
}

// Start 记录会话开始
func (r *FlightSessionRepository) Start(ctx context.Context, sessionID string, startedAt time.Time) error {
	query := `
		INSERT INTO bms_flight_sessions (session_id, started_at)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, sessionID, startedAt); err != nil {
		return fmt.Errorf("failed to insert flight session: %w", err)
	}
	return nil
}

// MarkReady 记录两个数据源都可用的时间
func (r *FlightSessionRepository) MarkReady(ctx context.Context, sessionID string, readyAt time.Time) error {
	query := `
		UPDATE bms_flight_sessions
		SET ready_at = $2
		WHERE session_id = $1
	`
	return r.execOne(ctx, query, sessionID, readyAt)
}

// Finish 记录会话结束及统计
func (r *FlightSessionRepository) Finish(ctx context.Context, sessionID string, endedAt time.Time, stats models.SessionStats) error {
	query := `
		UPDATE bms_flight_sessions
		SET ended_at = $2,
			ticks_active = $3,
			ticks_suppressed = $4,
			send_errors = $5
		WHERE session_id = $1
	`
	return r.execOne(ctx, query, sessionID, endedAt,
		int64(stats.TicksActive), int64(stats.TicksSuppressed), int64(stats.SendErrors))
}

// Get 查询会话
func (r *FlightSessionRepository) Get(ctx context.Context, sessionID string) (*models.FlightSession, error) {
	query := `
		SELECT session_id, started_at, ready_at, ended_at,
			ticks_active, ticks_suppressed, send_errors
		FROM bms_flight_sessions
		WHERE session_id = $1
	`

	var (
		s                     models.FlightSession
		readyAt, endedAt      sql.NullTime
		active, suppr, errCnt int64
	)
	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.SessionID, &s.StartedAt, &readyAt, &endedAt, &active, &suppr, &errCnt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("flight session %s not found", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query flight session: %w", err)
	}

	if readyAt.Valid {
		s.ReadyAt = &readyAt.Time
	}
	if endedAt.Valid {
		s.EndedAt = &endedAt.Time
	}
	s.Stats = models.SessionStats{
		TicksActive:     uint64(active),
		TicksSuppressed: uint64(suppr),
		SendErrors:      uint64(errCnt),
	}
	return &s, nil
}

func (r *FlightSessionRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update flight session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n != 1 {
		r.logger.Warn("Flight session update touched unexpected row count",
			zap.Any("session_id", args[0]),
			zap.Int64("rows", n),
		)
	}
	return nil
}
