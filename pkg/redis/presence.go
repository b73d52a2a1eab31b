package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// 在线状态相关常量
const (
	PresenceKeyPrefix = "rel:presence:"
	PresenceTTL       = 2 * time.Minute // 2倍心跳周期
)

// Presence 跨实例的 WebSocket 在线状态
type Presence struct {
	client *redis.Client
}

func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client}
}

func presenceKey(userID uint) string {
	return PresenceKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func (p *Presence) SetOnline(ctx context.Context, userID uint) error {
	if err := p.client.Set(ctx, presenceKey(userID), time.Now().Unix(), PresenceTTL).Err(); err != nil {
		return fmt.Errorf("设置在线状态失败: %w", err)
	}
	return nil
}

// Refresh 心跳时延长TTL
func (p *Presence) Refresh(ctx context.Context, userID uint) error {
	return p.client.Expire(ctx, presenceKey(userID), PresenceTTL).Err()
}

func (p *Presence) SetOffline(ctx context.Context, userID uint) error {
	return p.client.Del(ctx, presenceKey(userID)).Err()
}

func (p *Presence) IsOnline(ctx context.Context, userID uint) (bool, error) {
	n, err := p.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("检查在线状态失败: %w", err)
	}
	return n > 0, nil
}
