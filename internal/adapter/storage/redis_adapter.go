package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	checkoutLockPrefix = "checkout:lock:"
	idempotencyPrefix  = "checkout:req:"

	// checkoutLockTTL bounds how long a crashed checkout can keep a user's
	// cart locked.
	checkoutLockTTL   = 30 * time.Second
	idempotencyKeyTTL = 24 * time.Hour
)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, idempotencyPrefix+key, 1, idempotencyKeyTTL).Result()
}

func (r *RedisAdapter) ClearIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyPrefix+key).Err()
}

func (r *RedisAdapter) AcquireCheckoutLock(ctx context.Context, userID int64) (bool, error) {
	return r.client.SetNX(ctx, checkoutLockKey(userID), 1, checkoutLockTTL).Result()
}

func (r *RedisAdapter) ReleaseCheckoutLock(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, checkoutLockKey(userID)).Err()
}

func checkoutLockKey(userID int64) string {
	return fmt.Sprintf("%s%d", checkoutLockPrefix, userID)
}
