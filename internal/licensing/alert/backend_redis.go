package alert

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "daftar:alert:"

// RedisBackend shares alert state between instances. Keys carry no TTL so
// entries persist until overwritten.
type RedisBackend struct {
	Client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{Client: client}
}

func (b *RedisBackend) LastSent(ctx context.Context, key string) (time.Time, bool, error) {
	raw, err := b.Client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(0, nanos).UTC(), true, nil
}

func (b *RedisBackend) Put(ctx context.Context, key string, at time.Time) error {
	return b.Client.Set(ctx, redisKeyPrefix+key, strconv.FormatInt(at.UnixNano(), 10), 0).Err()
}
