package repository

import (
	"context"
	"fmt"

	"trading_hub/internal/realtime/domain"
	"trading_hub/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// RedisMirror definition redis pub/sub mirror
type RedisMirror struct {
	client  *redis.Client
	channel string
}

// NewRedisMirror create RedisMirror publishing on channel
func NewRedisMirror(client *redis.Client, channel string) *RedisMirror {
	if channel == "" {
		channel = "realtime:events"
	}
	return &RedisMirror{
		client:  client,
		channel: channel,
	}
}

// Publish 將 event 序列化後，發布到 mirror channel
func (r *RedisMirror) Publish(ctx context.Context, evt domain.MirroredEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, data).Err()
}

// Subscribe 訂閱 mirror channel，收到訊息後呼叫 handler 處理
func (r *RedisMirror) Subscribe(ctx context.Context, handler func(evt domain.MirroredEvent)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	// 確認訂閱成功再返回
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				var evt domain.MirroredEvent
				if err := json.Unmarshal([]byte(m.Payload), &evt); err != nil {
					logger.Log.Error("mirror unmarshal failed", zap.String("channel", r.channel), zap.Error(err))
					continue
				}
				handler(evt)
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", r.channel))
				return
			}
		}
	}()
	return nil
}

// Close the redis client
func (r *RedisMirror) Close() error {
	return r.client.Close()
}
