package booking

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
	"github.com/robertarktes/restaurant-reservations/internal/observability"
	"github.com/robertarktes/restaurant-reservations/internal/schedule"
)

// Scheduler runs one booking attempt end to end: validation, idempotency
// fast-path, catalog lookups, window check, per-slot lock, table resolution,
// persistence, idempotency recording. The lock is scoped to (sector, start
// instant) so an attempt never holds more than one lock, which rules out
// lock-ordering deadlocks at the cost of serializing different party sizes
// on the same slot.
type Scheduler struct {
	restaurants  domain.RestaurantRepository
	sectors      domain.SectorRepository
	tables       domain.TableRepository
	reservations domain.ReservationRepository
	idempotency  domain.IdempotencyKeyRepository
	locks        domain.Locker
	logger       observability.Logger
}

func NewScheduler(
	restaurants domain.RestaurantRepository,
	sectors domain.SectorRepository,
	tables domain.TableRepository,
	reservations domain.ReservationRepository,
	idempotency domain.IdempotencyKeyRepository,
	locks domain.Locker,
	logger observability.Logger,
) *Scheduler {
	return &Scheduler{
		restaurants:  restaurants,
		sectors:      sectors,
		tables:       tables,
		reservations: reservations,
		idempotency:  idempotency,
		locks:        locks,
		logger:       logger,
	}
}

type CreateInput struct {
	RestaurantID   string
	SectorID       string
	PartySize      int
	Start          string // RFC 3339
	Customer       CustomerInput
	Notes          string
	IdempotencyKey string
}

type CustomerInput struct {
	Name  string
	Phone string
	Email string
}

func (s *Scheduler) Create(ctx context.Context, in CreateInput) (*domain.Reservation, error) {
	res, err := s.create(ctx, in)
	observability.BookingsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	return res, err
}

func (s *Scheduler) create(ctx context.Context, in CreateInput) (*domain.Reservation, error) {
	start, err := time.Parse(time.RFC3339, in.Start)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrValidation, "start %q is not a valid RFC 3339 timestamp", in.Start)
	}
	if in.PartySize < 1 {
		return nil, errors.Wrap(domain.ErrValidation, "party size must be at least 1")
	}

	// Retried requests short-circuit to the first attempt's reservation
	// without re-running the matching logic. A key whose reservation has
	// since disappeared is treated as unseen.
	if existingID, seen, err := s.idempotency.Get(ctx, in.IdempotencyKey); err != nil {
		return nil, err
	} else if seen {
		existing, err := s.reservations.FindByID(ctx, existingID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	restaurant, err := s.restaurants.FindByID(ctx, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	sector, err := s.sectors.FindByID(ctx, in.SectorID)
	if err != nil {
		return nil, err
	}

	end := schedule.EndOf(start)
	within, err := schedule.IsWithinShifts(start, end, restaurant.Timezone, restaurant.Shifts)
	if err != nil {
		return nil, err
	}
	if !within {
		return nil, errors.Wrapf(domain.ErrOutsideServiceWindow,
			"%s-%s not inside any shift of restaurant %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339), restaurant.ID)
	}

	lockKey := LockKey(sector.ID, start)
	acquired, err := s.locks.Acquire(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	if !acquired {
		// Another attempt owns the slot right now. Callers treat this as a
		// transient capacity signal; the scheduler never retries or queues.
		observability.LockContention.Inc()
		return nil, errors.Wrap(domain.ErrNoCapacity, "slot is being processed by another request")
	}
	defer func() {
		if err := s.locks.Release(ctx, lockKey); err != nil {
			s.logger.WithField("lock_key", lockKey).Error("failed to release slot lock", err)
		}
	}()

	allTables, err := s.tables.FindBySectorID(ctx, sector.ID)
	if err != nil {
		return nil, err
	}
	overlapping, err := s.reservations.FindOverlapping(ctx, sector.ID, start, end)
	if err != nil {
		return nil, err
	}

	free := FreeTables(FitsParty(allTables, in.PartySize), overlapping, start, end)
	if len(free) == 0 {
		return nil, errors.Wrapf(domain.ErrNoCapacity, "sector %s at %s", sector.ID, start.Format(time.RFC3339))
	}

	// First-fit: tables keep catalog order and the first free one wins.
	reservation := domain.NewReservation(
		restaurant.ID, sector.ID, free[0].ID, in.PartySize, start, end,
		domain.Customer{Name: in.Customer.Name, Phone: in.Customer.Phone, Email: in.Customer.Email},
		in.Notes,
	)

	if err := s.reservations.Save(ctx, reservation); err != nil {
		return nil, err
	}
	if err := s.idempotency.Set(ctx, in.IdempotencyKey, reservation.ID); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// LockKey builds the mutual-exclusion key for one (sector, slot start) pair.
func LockKey(sectorID string, start time.Time) string {
	return "reservation:" + sectorID + ":" + start.UTC().Format(time.RFC3339)
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "booked"
	case errors.Is(err, domain.ErrValidation):
		return "validation_error"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrOutsideServiceWindow):
		return "outside_service_window"
	case errors.Is(err, domain.ErrNoCapacity):
		return "no_capacity"
	default:
		return "error"
	}
}
