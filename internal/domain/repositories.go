package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage contracts consumed by the booking core. Every call may block on
// network or storage I/O.

type RestaurantRepository interface {
	FindByID(ctx context.Context, id string) (*Restaurant, error)
	FindAll(ctx context.Context) ([]Restaurant, error)
}

type SectorRepository interface {
	FindByID(ctx context.Context, id string) (*Sector, error)
	FindByRestaurantID(ctx context.Context, restaurantID string) ([]Sector, error)
}

type TableRepository interface {
	FindByID(ctx context.Context, id string) (*Table, error)
	FindBySectorID(ctx context.Context, sectorID string) ([]Table, error)
}

type ReservationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	// FindByDate returns non-cancelled reservations of the restaurant whose
	// start falls on the given UTC calendar date. sectorID narrows the result
	// when non-empty.
	FindByDate(ctx context.Context, date time.Time, restaurantID, sectorID string) ([]Reservation, error)
	// FindOverlapping returns non-cancelled reservations of the sector whose
	// [StartAt, EndAt) intersects [start, end).
	FindOverlapping(ctx context.Context, sectorID string, start, end time.Time) ([]Reservation, error)
	Save(ctx context.Context, r Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Locker is the per-slot mutual exclusion contract. Acquire returns false
// when the key is already held and not yet expired. Release is idempotent;
// releasing an absent key is not an error. Entries expire on their own so a
// holder that died without releasing does not block the slot forever.
type Locker interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// IdempotencyKeyRepository maps a client-supplied key to the reservation it
// produced. Set is write-once per key; the store serializes concurrent Set
// calls for the same key.
type IdempotencyKeyRepository interface {
	Get(ctx context.Context, key string) (uuid.UUID, bool, error)
	Set(ctx context.Context, key string, reservationID uuid.UUID) error
}
