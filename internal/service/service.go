package service

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/common/database"
	mqttcommon "github.com/Bartosso/bms-to-ffbeast/common/mqtt"
	rediscommon "github.com/Bartosso/bms-to-ffbeast/common/redis"
	"github.com/Bartosso/bms-to-ffbeast/internal/config"
	"github.com/Bartosso/bms-to-ffbeast/internal/events"
	"github.com/Bartosso/bms-to-ffbeast/internal/metrics"
	"github.com/Bartosso/bms-to-ffbeast/internal/repository"
	"github.com/Bartosso/bms-to-ffbeast/internal/source"
	"github.com/Bartosso/bms-to-ffbeast/internal/transport"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BridgeService 桥接服务：UDP 发送端 + 可选的事件/历史/指标组件
type BridgeService struct {
	config    *config.Config
	logger    *zap.Logger
	sender    *transport.UDPSender
	db        *sql.DB
	publisher events.Multi
	metrics   *http.Server
	bridge    *Bridge
}

// NewBridgeService 创建桥接服务
// UDP socket 创建失败返回错误（调用方应终止进程）；可选组件失败只记录警告
func NewBridgeService(cfg *config.Config, logger *zap.Logger) (*BridgeService, error) {
	sender, err := transport.Dial(cfg.Transport)
	if err != nil {
		return nil, err
	}

	s := &BridgeService{
		config: cfg,
		logger: logger,
		sender: sender,
	}

	sessionID := uuid.NewString()
	s.publisher = s.connectPublishers()
	recorder := s.connectRecorder()
	s.metrics = metrics.Serve(cfg.Metrics.Addr, logger)

	deps := Deps{
		Sender: sender,
		OpenFlight: func() (FlightReader, error) {
			fs, err := source.OpenFlight(cfg.Source)
			if err != nil {
				return nil, err
			}
			return fs, nil
		},
		OpenSession: func() (SessionReader, error) {
			ss, err := source.OpenSession(cfg.Source)
			if err != nil {
				return nil, err
			}
			return ss, nil
		},
		Publisher: s.publisher,
	}
	if recorder != nil {
		deps.Recorder = recorder
	}
	s.bridge = NewBridge(cfg, sessionID, deps, logger)

	return s, nil
}

// Run 运行桥接循环，模拟器退出后返回
func (s *BridgeService) Run(ctx context.Context) error {
	s.logger.Info("Telemetry socket connected",
		zap.String("local", s.sender.LocalAddr().String()),
		zap.String("remote", s.sender.RemoteAddr().String()),
		zap.String("session_id", s.bridge.SessionID()),
	)

	if err := s.bridge.Run(ctx); err != nil {
		return err
	}

	stats := s.bridge.Stats()
	s.logger.Info("Telemetry session finished",
		zap.Uint64("ticks_active", stats.TicksActive),
		zap.Uint64("ticks_suppressed", stats.TicksSuppressed),
		zap.Uint64("send_errors", stats.SendErrors),
	)
	return nil
}

// Stop 释放所有资源
func (s *BridgeService) Stop(ctx context.Context) error {
	if s.metrics != nil {
		if err := s.metrics.Shutdown(ctx); err != nil {
			s.logger.Error("Error stopping metrics listener", zap.Error(err))
		}
	}

	if len(s.publisher) > 0 {
		if err := s.publisher.Close(); err != nil {
			s.logger.Error("Error closing event publishers", zap.Error(err))
		}
	}

	if s.db != nil {
		database.Close(s.db)
	}

	return s.sender.Close()
}

func (s *BridgeService) connectPublishers() events.Multi {
	var publishers events.Multi

	if s.config.Redis.Enabled() {
		client := rediscommon.NewRedisClient(&s.config.Redis)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rediscommon.Ping(ctx, client)
		cancel()
		if err != nil {
			s.logger.Warn("Redis unavailable, session events will not be streamed",
				zap.String("addr", s.config.Redis.Addr), zap.Error(err))
			rediscommon.Close(client)
		} else {
			publishers = append(publishers, events.NewRedisPublisher(client, s.config.Events.Stream))
			s.logger.Info("Streaming session events to Redis", zap.String("stream", s.config.Events.Stream))
		}
	}

	if s.config.MQTT.Enabled() {
		client, err := mqttcommon.NewClient(&s.config.MQTT, s.config.Events.StatusTopic, events.OfflinePayload(), s.logger)
		if err != nil {
			s.logger.Warn("MQTT unavailable, bridge status will not be published",
				zap.String("broker", s.config.MQTT.Broker), zap.Error(err))
		} else {
			publishers = append(publishers, events.NewMQTTPublisher(client, s.config.Events.StatusTopic))
			s.logger.Info("Publishing bridge status to MQTT", zap.String("topic", s.config.Events.StatusTopic))
		}
	}

	return publishers
}

func (s *BridgeService) connectRecorder() *repository.FlightSessionRepository {
	if !s.config.Database.Enabled {
		return nil
	}

	db, err := database.NewPostgresDB(&s.config.Database)
	if err != nil {
		s.logger.Warn("Database unavailable, flight sessions will not be recorded", zap.Error(err))
		return nil
	}

	repo := repository.NewFlightSessionRepository(db, s.logger)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		s.logger.Warn("Failed to prepare flight session table", zap.Error(err))
		database.Close(db)
		return nil
	}

	s.db = db
	return repo
}
