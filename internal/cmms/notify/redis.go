// Package notify 通知事件的投递实现。核心服务只产出结构化事件，
// 本包负责把事件发布到 Redis 频道，由下游消费者做格式化与推送。
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bitfantasy/nimo-cmms/internal/cmms/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisNotifier 把事件以JSON发布到 Redis pub/sub 频道
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisNotifier(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	if channel == "" {
		channel = "cmms:events"
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

// Publish 发布事件。投递失败只记日志，不阻断业务操作。
func (n *RedisNotifier) Publish(ctx context.Context, event service.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		if n.logger != nil {
			n.logger.Warn("通知事件发布失败",
				zap.String("channel", n.channel),
				zap.String("type", event.Type),
				zap.Error(err),
			)
		}
		return err
	}
	return nil
}
