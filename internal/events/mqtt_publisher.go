package events

import (
	"context"
	"encoding/json"
)

// StatusClient MQTT 发布接口（common/mqtt.Client 实现）
type StatusClient interface {
	Publish(ctx context.Context, topic string, retained bool, payload []byte) error
	Disconnect()
}

// MQTTPublisher 以 retained 消息发布最新状态
type MQTTPublisher struct {
	client StatusClient
	topic  string
}

// NewMQTTPublisher 创建 MQTT 状态发布器
func NewMQTTPublisher(client StatusClient, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic}
}

// OfflinePayload 遗嘱消息内容，进程异常断开时由 broker 发布
func OfflinePayload() []byte {
	return []byte(`{"type":"offline"}`)
}

// Publish 发布事件
func (p *MQTTPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.topic, true, payload)
}

// Close 断开连接
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect()
	return nil
}
