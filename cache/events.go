package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	eventKeyPrefix   = "stripe:event:"
	revokedKeyPrefix = "jwt:revoked:"

	// Stripe 最多重送三天
	EventTTL = 72 * time.Hour
)

// EventLog 記錄已處理的 webhook 事件，只是捷徑，訂單的唯一索引才是依據
type EventLog struct {
	rdb *redis.Client
}

func NewEventLog(rdb *redis.Client) *EventLog {
	return &EventLog{rdb: rdb}
}

func (l *EventLog) Seen(ctx context.Context, eventID string) (bool, error) {
	if l == nil || l.rdb == nil || eventID == "" {
		return false, nil
	}
	n, err := l.rdb.Exists(ctx, eventKeyPrefix+eventID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *EventLog) Remember(ctx context.Context, eventID string) error {
	if l == nil || l.rdb == nil || eventID == "" {
		return nil
	}
	return l.rdb.Set(ctx, eventKeyPrefix+eventID, 1, EventTTL).Err()
}

// TokenBlacklist 登出後的 token 在過期前都視為無效
type TokenBlacklist struct {
	rdb *redis.Client
}

func NewTokenBlacklist(rdb *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rdb: rdb}
}

func (b *TokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if b == nil || b.rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if b == nil || b.rdb == nil || jti == "" {
		return false, nil
	}
	n, err := b.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
