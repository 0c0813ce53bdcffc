package events

import (
	"context"
	"fmt"

	rediscommon "github.com/Bartosso/bms-to-ffbeast/common/redis"

	"github.com/go-redis/redis/v8"
)

// RedisPublisher 将事件追加到 Redis Stream
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher 创建 Redis Stream 发布器
func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

// Publish 发布事件
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if _, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, event); err != nil {
		return fmt.Errorf("failed to publish %s event to stream %s: %w", event.Type, p.stream, err)
	}
	return nil
}

// Close 关闭 Redis 连接
func (p *RedisPublisher) Close() error {
	return rediscommon.Close(p.client)
}
