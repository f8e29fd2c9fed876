package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusPending   ReservationStatus = "PENDING"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// Shift is a local-time service window, "HH:MM" wall clock. End never wraps
// past midnight within a single entry.
type Shift struct {
	Start string
	End   string
}

type Restaurant struct {
	ID        string
	Name      string
	Timezone  string
	Shifts    []Shift
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Sector struct {
	ID           string
	RestaurantID string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Table struct {
	ID        string
	SectorID  string
	Name      string
	MinSize   int
	MaxSize   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Customer is a value embedded in a reservation, never referenced on its own.
type Customer struct {
	Name      string
	Phone     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Reservation struct {
	ID           uuid.UUID
	RestaurantID string
	SectorID     string
	TableIDs     []string
	PartySize    int
	StartAt      time.Time
	EndAt        time.Time
	Status       ReservationStatus
	Customer     Customer
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Overlaps reports whether the reservation's [StartAt, EndAt) intersects
// [start, end). Adjacent intervals do not overlap, so back-to-back bookings
// on the same table are legal.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.StartAt.Before(end) && start.Before(r.EndAt)
}
