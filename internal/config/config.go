package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/common/config"
)

// 模拟器与 FFBeast 的固定约定
const (
	DefaultHost           = "localhost"
	DefaultPort           = 29778
	DefaultTickInterval   = 10 * time.Millisecond
	DefaultWaitInterval   = 300 * time.Millisecond
	DefaultShmDir         = "/dev/shm"
	DefaultFlightSegment  = "FalconSharedMemoryArea"
	DefaultSessionSegment = "FalconIntellivibeSharedMemoryArea"
	DefaultEventsStream   = "bms:session:stream"
	DefaultStatusTopic    = "bms/bridge/status"
	DefaultServiceName    = "bms-to-ffbeast"
)

// TransportConfig UDP 目标配置
type TransportConfig struct {
	Host string
	Port int
}

// Address 返回 host:port
func (t TransportConfig) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// SourceConfig 共享内存数据源配置
type SourceConfig struct {
	// Dir 仅在非 Windows 平台使用（映射为 <Dir>/<Name> 文件）
	Dir          string
	FlightName   string
	SessionName  string
	WaitInterval time.Duration
}

// Config 桥接服务配置
type Config struct {
	Database config.DatabaseConfig
	Redis    config.RedisConfig
	MQTT     config.MQTTConfig

	Transport    TransportConfig
	Source       SourceConfig
	TickInterval time.Duration

	Events struct {
		Stream      string // Redis Stream 名称
		StatusTopic string // MQTT 状态主题（retained）
	}

	Metrics struct {
		Addr string // 为空表示不启动 /metrics
	}

	Log struct {
		Level  string
		Format string
	}
}

// Default 返回全部固定默认值（不读取环境变量）
func Default() *Config {
	cfg := &Config{}

	cfg.Transport.Host = DefaultHost
	cfg.Transport.Port = DefaultPort
	cfg.TickInterval = DefaultTickInterval

	cfg.Source.Dir = DefaultShmDir
	cfg.Source.FlightName = DefaultFlightSegment
	cfg.Source.SessionName = DefaultSessionSegment
	cfg.Source.WaitInterval = DefaultWaitInterval

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "bms"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 2

	cfg.MQTT.ClientID = DefaultServiceName

	cfg.Events.Stream = DefaultEventsStream
	cfg.Events.StatusTopic = DefaultStatusTopic

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	return cfg
}

// Load 加载配置：固定默认值 + 环境变量覆盖
func Load() (*Config, error) {
	cfg := Default()

	cfg.Transport.Host = getEnv("FFB_HOST", cfg.Transport.Host)
	port, err := getEnvInt("FFB_PORT", cfg.Transport.Port)
	if err != nil {
		return nil, err
	}
	cfg.Transport.Port = port

	if cfg.TickInterval, err = getEnvMillis("TICK_INTERVAL_MS", cfg.TickInterval); err != nil {
		return nil, err
	}
	if cfg.Source.WaitInterval, err = getEnvMillis("WAIT_INTERVAL_MS", cfg.Source.WaitInterval); err != nil {
		return nil, err
	}

	cfg.Source.Dir = getEnv("SHM_DIR", cfg.Source.Dir)
	cfg.Source.FlightName = getEnv("SHM_FLIGHT_NAME", cfg.Source.FlightName)
	cfg.Source.SessionName = getEnv("SHM_SESSION_NAME", cfg.Source.SessionName)

	cfg.Database.LoadFromEnv("DB")
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.MQTT.LoadFromEnv("MQTT")

	cfg.Events.Stream = getEnv("STREAM_EVENTS", cfg.Events.Stream)
	cfg.Events.StatusTopic = getEnv("MQTT_TOPIC_STATUS", cfg.Events.StatusTopic)
	cfg.Metrics.Addr = getEnv("METRICS_ADDR", cfg.Metrics.Addr)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Transport.Host == "" {
		return errors.New("transport host must not be empty")
	}
	if c.Transport.Port <= 0 || c.Transport.Port > 65535 {
		return fmt.Errorf("transport port out of range: %d", c.Transport.Port)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.Source.WaitInterval <= 0 {
		return fmt.Errorf("wait interval must be positive, got %s", c.Source.WaitInterval)
	}
	if c.Source.FlightName == "" || c.Source.SessionName == "" {
		return errors.New("shared memory segment names must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvMillis(key string, defaultValue time.Duration) (time.Duration, error) {
	ms, err := getEnvInt(key, int(defaultValue/time.Millisecond))
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}
