package main

import (
	"context"
	"log"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/common/logger"
	"github.com/Bartosso/bms-to-ffbeast/internal/config"
	"github.com/Bartosso/bms-to-ffbeast/internal/service"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化Logger
	zapLogger, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, config.DefaultServiceName)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting bms-to-ffbeast",
		zap.String("destination", cfg.Transport.Address()),
		zap.String("shm_dir", cfg.Source.Dir),
	)

	// 创建服务（UDP socket 失败直接退出）
	bridgeService, err := service.NewBridgeService(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create telemetry socket", zap.Error(err))
	}

	// 运行到模拟器退出为止
	if err := bridgeService.Run(context.Background()); err != nil {
		zapLogger.Error("Bridge stopped unexpectedly", zap.Error(err))
	} else {
		zapLogger.Info("Shutting down since BMS is closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := bridgeService.Stop(ctx); err != nil {
		zapLogger.Error("Error during shutdown", zap.Error(err))
	}
}
