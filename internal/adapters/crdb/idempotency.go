package crdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// IdempotencyKeys maps client-supplied keys to reservation ids. The primary
// key makes Set write-once: a concurrent duplicate insert loses silently and
// the first mapping stays.
type IdempotencyKeys struct {
	repo *Repository
}

func NewIdempotencyKeys(repo *Repository) *IdempotencyKeys {
	return &IdempotencyKeys{repo: repo}
}

func (k *IdempotencyKeys) Get(ctx context.Context, key string) (uuid.UUID, bool, error) {
	var reservationID uuid.UUID
	err := k.repo.pool.QueryRow(ctx, `
		SELECT reservation_id FROM idempotency_keys WHERE key = $1
	`, key).Scan(&reservationID)
	if err == pgx.ErrNoRows {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return reservationID, true, nil
}

func (k *IdempotencyKeys) Set(ctx context.Context, key string, reservationID uuid.UUID) error {
	_, err := k.repo.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (key, reservation_id)
		VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING
	`, key, reservationID)
	return err
}
