package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
)

// Reservations covers the non-booking paths: listing a day's reservations and
// cancellation. Cancellation is a plain delete-by-id, no lock needed since
// removing a reservation cannot violate the overlap invariant.
type Reservations struct {
	restaurants  domain.RestaurantRepository
	reservations domain.ReservationRepository
}

func NewReservations(restaurants domain.RestaurantRepository, reservations domain.ReservationRepository) *Reservations {
	return &Reservations{restaurants: restaurants, reservations: reservations}
}

func (r *Reservations) List(ctx context.Context, restaurantID string, date time.Time, sectorID string) ([]domain.Reservation, error) {
	if _, err := r.restaurants.FindByID(ctx, restaurantID); err != nil {
		return nil, err
	}
	return r.reservations.FindByDate(ctx, date, restaurantID, sectorID)
}

func (r *Reservations) Cancel(ctx context.Context, id uuid.UUID) error {
	if _, err := r.reservations.FindByID(ctx, id); err != nil {
		return err
	}
	return r.reservations.Delete(ctx, id)
}
