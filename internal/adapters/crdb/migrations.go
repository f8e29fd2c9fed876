package crdb

import "context"

// Migrate creates the schema if missing. Statements are idempotent so every
// process can run them at startup.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS restaurants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			timezone TEXT NOT NULL,
			shifts JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS sectors (
			id TEXT PRIMARY KEY,
			restaurant_id TEXT NOT NULL REFERENCES restaurants (id),
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS tables (
			id TEXT PRIMARY KEY,
			sector_id TEXT NOT NULL REFERENCES sectors (id),
			name TEXT NOT NULL,
			min_size INT NOT NULL CHECK (min_size >= 1),
			max_size INT NOT NULL CHECK (max_size >= min_size),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS reservations (
			id UUID PRIMARY KEY,
			restaurant_id TEXT NOT NULL,
			sector_id TEXT NOT NULL,
			party_size INT NOT NULL CHECK (party_size >= 1),
			start_at TIMESTAMPTZ NOT NULL,
			end_at TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('CONFIRMED', 'PENDING', 'CANCELLED')),
			customer_name TEXT NOT NULL,
			customer_phone TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			customer_created_at TIMESTAMPTZ NOT NULL,
			customer_updated_at TIMESTAMPTZ NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CHECK (start_at < end_at)
		);
		CREATE INDEX IF NOT EXISTS reservations_sector_window
			ON reservations (sector_id, start_at, end_at);
		CREATE TABLE IF NOT EXISTS reservation_tables (
			reservation_id UUID NOT NULL REFERENCES reservations (id) ON DELETE CASCADE,
			table_id TEXT NOT NULL,
			PRIMARY KEY (reservation_id, table_id)
		);
		CREATE TABLE IF NOT EXISTS locks (
			lock_key TEXT PRIMARY KEY,
			acquired_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS idempotency_keys (
			key TEXT PRIMARY KEY,
			reservation_id UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS outbox (
			id UUID PRIMARY KEY,
			aggregate_type TEXT NOT NULL,
			aggregate_id UUID NOT NULL,
			event_type TEXT NOT NULL,
			payload_json JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			published_at TIMESTAMPTZ,
			status TEXT NOT NULL DEFAULT 'NEW',
			dedupe_key TEXT NOT NULL
		);
	`)
	return err
}
