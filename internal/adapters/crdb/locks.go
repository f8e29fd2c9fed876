package crdb

import (
	"context"
	"time"
)

// Locker keeps lock records in a table: one row per (sector, slot start)
// key with an acquisition and expiry instant. An expired row counts as free,
// so a crashed holder never blocks a slot past the TTL.
type Locker struct {
	repo *Repository
	ttl  time.Duration
}

func NewLocker(repo *Repository, ttl time.Duration) *Locker {
	return &Locker{repo: repo, ttl: ttl}
}

func (l *Locker) Acquire(ctx context.Context, key string) (bool, error) {
	now := time.Now().UTC()
	result, err := l.repo.pool.Exec(ctx, `
		INSERT INTO locks (lock_key, acquired_at, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (lock_key) DO UPDATE SET
			acquired_at = excluded.acquired_at, expires_at = excluded.expires_at
		WHERE locks.expires_at <= $2
	`, key, now, now.Add(l.ttl))
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (l *Locker) Release(ctx context.Context, key string) error {
	// Deleting an absent row is fine; release is idempotent.
	_, err := l.repo.pool.Exec(ctx, `DELETE FROM locks WHERE lock_key = $1`, key)
	return err
}
