package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// 离线关系事件相关常量
const (
	OfflineEventsKeyPrefix = "rel:offline:"
	OfflineEventsTTL       = 7 * 24 * time.Hour
	MaxOfflineEvents       = 100
)

// OfflineEvents 目标用户不在线时暂存推送事件，上线后一次性取出
type OfflineEvents struct {
	client *redis.Client
}

func NewOfflineEvents(client *redis.Client) *OfflineEvents {
	return &OfflineEvents{client: client}
}

func offlineKey(userID uint) string {
	return OfflineEventsKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Push 最新的在前，超出上限的旧事件被丢弃
func (o *OfflineEvents) Push(ctx context.Context, userID uint, event []byte) error {
	key := offlineKey(userID)
	pipe := o.client.TxPipeline()
	pipe.LPush(ctx, key, event)
	pipe.LTrim(ctx, key, 0, MaxOfflineEvents-1)
	pipe.Expire(ctx, key, OfflineEventsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("添加离线事件失败: %w", err)
	}
	return nil
}

// Drain 取出并清空，按发生顺序返回
func (o *OfflineEvents) Drain(ctx context.Context, userID uint) ([][]byte, error) {
	key := offlineKey(userID)
	pipe := o.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, key, 0, -1)
	pipe.Del(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("获取离线事件失败: %w", err)
	}

	items := rangeCmd.Val()
	events := make([][]byte, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		events = append(events, []byte(items[i]))
	}
	return events, nil
}
