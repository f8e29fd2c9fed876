package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker implements the per-slot mutual exclusion contract on SET NX with a
// TTL. The TTL doubles as crash recovery: a holder that dies without
// releasing stops blocking the slot once the entry expires.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

func (l *Locker) Acquire(ctx context.Context, key string) (bool, error) {
	res := l.client.SetNX(ctx, "lock:"+key, 1, l.ttl)
	return res.Val(), res.Err()
}

func (l *Locker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, "lock:"+key).Err()
}
