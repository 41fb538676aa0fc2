package recurrence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker serializes expansion runs per template. The idempotency check inside
// Expand is not safe against two concurrent runs for the same template, so
// deployments with more than one process should wire the redis locker.
type Locker interface {
	Acquire(ctx context.Context, templateID int64) (release func(), ok bool, err error)
}

// NoopLocker performs no locking (single-process deployments, tests).
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, int64) (func(), bool, error) {
	return func() {}, true, nil
}

// RedisLocker takes a per-template lock via SET NX with a TTL, so a crashed
// run cannot hold the lock forever.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker builds a locker. ttl bounds the longest expected run.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, templateID int64) (func(), bool, error) {
	key := fmt.Sprintf("washbay:expansion:lock:%d", templateID)
	ok, err := l.client.SetNX(ctx, key, time.Now().UnixNano(), l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		l.client.Del(context.Background(), key)
	}
	return release, true, nil
}
