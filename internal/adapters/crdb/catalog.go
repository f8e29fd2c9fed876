package crdb

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
)

// Catalog entities are read-only from the booking core's perspective; the
// write paths exist for migrations, seeding and tests.

type Restaurants struct {
	repo *Repository
}

func NewRestaurants(repo *Repository) *Restaurants {
	return &Restaurants{repo: repo}
}

func (r *Restaurants) FindByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	row := r.repo.pool.QueryRow(ctx, `
		SELECT id, name, timezone, shifts, created_at, updated_at
		FROM restaurants WHERE id = $1
	`, id)
	restaurant, err := scanRestaurant(row)
	if err == pgx.ErrNoRows {
		return nil, errors.Wrapf(domain.ErrNotFound, "restaurant %s", id)
	}
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (r *Restaurants) FindAll(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.repo.pool.Query(ctx, `
		SELECT id, name, timezone, shifts, created_at, updated_at
		FROM restaurants ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *restaurant)
	}
	return restaurants, rows.Err()
}

func (r *Restaurants) Save(ctx context.Context, restaurant domain.Restaurant) error {
	shifts, err := json.Marshal(restaurant.Shifts)
	if err != nil {
		return err
	}
	_, err = r.repo.pool.Exec(ctx, `
		INSERT INTO restaurants (id, name, timezone, shifts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, timezone = excluded.timezone,
			shifts = excluded.shifts, updated_at = excluded.updated_at
	`, restaurant.ID, restaurant.Name, restaurant.Timezone, shifts, restaurant.CreatedAt, restaurant.UpdatedAt)
	return err
}

func scanRestaurant(row pgx.Row) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant
	var shifts []byte
	err := row.Scan(&restaurant.ID, &restaurant.Name, &restaurant.Timezone, &shifts,
		&restaurant.CreatedAt, &restaurant.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(shifts) > 0 {
		if err := json.Unmarshal(shifts, &restaurant.Shifts); err != nil {
			return nil, err
		}
	}
	return &restaurant, nil
}

type Sectors struct {
	repo *Repository
}

func NewSectors(repo *Repository) *Sectors {
	return &Sectors{repo: repo}
}

func (s *Sectors) FindByID(ctx context.Context, id string) (*domain.Sector, error) {
	var sector domain.Sector
	err := s.repo.pool.QueryRow(ctx, `
		SELECT id, restaurant_id, name, created_at, updated_at
		FROM sectors WHERE id = $1
	`, id).Scan(&sector.ID, &sector.RestaurantID, &sector.Name, &sector.CreatedAt, &sector.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, errors.Wrapf(domain.ErrNotFound, "sector %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &sector, nil
}

func (s *Sectors) FindByRestaurantID(ctx context.Context, restaurantID string) ([]domain.Sector, error) {
	rows, err := s.repo.pool.Query(ctx, `
		SELECT id, restaurant_id, name, created_at, updated_at
		FROM sectors WHERE restaurant_id = $1 ORDER BY id
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sectors []domain.Sector
	for rows.Next() {
		var sector domain.Sector
		if err := rows.Scan(&sector.ID, &sector.RestaurantID, &sector.Name, &sector.CreatedAt, &sector.UpdatedAt); err != nil {
			return nil, err
		}
		sectors = append(sectors, sector)
	}
	return sectors, rows.Err()
}

func (s *Sectors) Save(ctx context.Context, sector domain.Sector) error {
	_, err := s.repo.pool.Exec(ctx, `
		INSERT INTO sectors (id, restaurant_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`, sector.ID, sector.RestaurantID, sector.Name, sector.CreatedAt, sector.UpdatedAt)
	return err
}

type Tables struct {
	repo *Repository
}

func NewTables(repo *Repository) *Tables {
	return &Tables{repo: repo}
}

func (t *Tables) FindByID(ctx context.Context, id string) (*domain.Table, error) {
	var table domain.Table
	err := t.repo.pool.QueryRow(ctx, `
		SELECT id, sector_id, name, min_size, max_size, created_at, updated_at
		FROM tables WHERE id = $1
	`, id).Scan(&table.ID, &table.SectorID, &table.Name, &table.MinSize, &table.MaxSize,
		&table.CreatedAt, &table.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, errors.Wrapf(domain.ErrNotFound, "table %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// FindBySectorID orders by id; first-fit selection depends on this order
// being stable between calls.
func (t *Tables) FindBySectorID(ctx context.Context, sectorID string) ([]domain.Table, error) {
	rows, err := t.repo.pool.Query(ctx, `
		SELECT id, sector_id, name, min_size, max_size, created_at, updated_at
		FROM tables WHERE sector_id = $1 ORDER BY id
	`, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []domain.Table
	for rows.Next() {
		var table domain.Table
		if err := rows.Scan(&table.ID, &table.SectorID, &table.Name, &table.MinSize, &table.MaxSize,
			&table.CreatedAt, &table.UpdatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}

func (t *Tables) Save(ctx context.Context, table domain.Table) error {
	_, err := t.repo.pool.Exec(ctx, `
		INSERT INTO tables (id, sector_id, name, min_size, max_size, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, min_size = excluded.min_size,
			max_size = excluded.max_size, updated_at = excluded.updated_at
	`, table.ID, table.SectorID, table.Name, table.MinSize, table.MaxSize, table.CreatedAt, table.UpdatedAt)
	return err
}
