package mqtt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Bartosso/bms-to-ffbeast/common/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// DefaultConnectTimeout 连接 broker 的超时时间
const DefaultConnectTimeout = 5 * time.Second

// ErrNotConnected broker 连接断开（自动重连中）
var ErrNotConnected = errors.New("mqtt client not connected")

// Client MQTT客户端封装（仅发布）
type Client struct {
	client mqtt.Client
	config *config.MQTTConfig
	logger *zap.Logger
}

// NewClient 创建MQTT客户端并连接 broker
// will: 非空时设置遗嘱消息（retained），桥接进程异常退出时由 broker 发布
func NewClient(cfg *config.MQTTConfig, willTopic string, willPayload []byte, logger *zap.Logger) (*Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if willTopic != "" {
		opts.SetBinaryWill(willTopic, willPayload, cfg.QoS, true)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(DefaultConnectTimeout)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", zap.String("broker", cfg.Broker), zap.Error(err))
	})

	client := mqtt.NewClient(opts)

	token := client.Connect()
	if !token.WaitTimeout(DefaultConnectTimeout) {
		return nil, fmt.Errorf("timeout connecting to MQTT broker %s", cfg.Broker)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Client{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

// Publish 发布消息，等待 broker 确认直到 ctx 结束
// 断线重连期间直接返回 ErrNotConnected，不排队
func (c *Client) Publish(ctx context.Context, topic string, retained bool, payload []byte) error {
	if !c.IsConnected() {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, ErrNotConnected)
	}

	token := c.client.Publish(topic, c.config.QoS, retained, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish to topic %s not acknowledged: %w", topic, ctx.Err())
	}

	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	return nil
}

// Disconnect 断开连接
func (c *Client) Disconnect() {
	c.client.Disconnect(250)
}

// IsConnected 检查连接状态
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}
