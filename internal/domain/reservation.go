package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewReservation assigns a fresh id and CONFIRMED status. The table list has
// exactly one element under the current single-table assignment policy.
func NewReservation(restaurantID, sectorID, tableID string, partySize int, start, end time.Time, customer Customer, notes string) Reservation {
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return Reservation{
		ID:           uuid.New(),
		RestaurantID: restaurantID,
		SectorID:     sectorID,
		TableIDs:     []string{tableID},
		PartySize:    partySize,
		StartAt:      start,
		EndAt:        end,
		Status:       StatusConfirmed,
		Customer:     customer,
		Notes:        notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
