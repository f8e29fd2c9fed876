package booking

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
	"github.com/robertarktes/restaurant-reservations/internal/observability"
	"github.com/robertarktes/restaurant-reservations/internal/schedule"
)

const (
	ReasonOutsideServiceWindow = "outside_service_window"
	ReasonNoCapacity           = "no_capacity"
)

type AvailabilitySlot struct {
	Start     time.Time
	Available bool
	// TableIDs lists every free table so callers can expose optionality;
	// the scan commits to no particular table.
	TableIDs []string
	Reason   string
}

type AvailabilityReport struct {
	SlotMinutes     int
	DurationMinutes int
	Slots           []AvailabilitySlot
}

// Availability runs the bulk scan: one pass over all candidate slots of a
// sector/date, sharing the resolver with the booking path.
type Availability struct {
	restaurants  domain.RestaurantRepository
	sectors      domain.SectorRepository
	tables       domain.TableRepository
	reservations domain.ReservationRepository
}

func NewAvailability(
	restaurants domain.RestaurantRepository,
	sectors domain.SectorRepository,
	tables domain.TableRepository,
	reservations domain.ReservationRepository,
) *Availability {
	return &Availability{
		restaurants:  restaurants,
		sectors:      sectors,
		tables:       tables,
		reservations: reservations,
	}
}

type AvailabilityInput struct {
	RestaurantID string
	SectorID     string
	Date         time.Time
	PartySize    int
}

func (a *Availability) Check(ctx context.Context, in AvailabilityInput) (*AvailabilityReport, error) {
	observability.AvailabilityScans.Inc()

	restaurant, err := a.restaurants.FindByID(ctx, in.RestaurantID)
	if err != nil {
		return nil, err
	}
	sector, err := a.sectors.FindByID(ctx, in.SectorID)
	if err != nil {
		return nil, err
	}

	var (
		allTables       []domain.Table
		dayReservations []domain.Reservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		allTables, err = a.tables.FindBySectorID(gctx, sector.ID)
		return err
	})
	g.Go(func() error {
		var err error
		dayReservations, err = a.reservations.FindByDate(gctx, in.Date, restaurant.ID, sector.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Party-size filtering happens once for the whole scan.
	suitable := FitsParty(allTables, in.PartySize)

	slots, err := schedule.GenerateDaySlots(in.Date, restaurant.Timezone, restaurant.Shifts)
	if err != nil {
		return nil, err
	}

	report := &AvailabilityReport{
		SlotMinutes:     schedule.SlotMinutes,
		DurationMinutes: schedule.DurationMinutes,
		Slots:           make([]AvailabilitySlot, 0, len(slots)),
	}
	for _, start := range slots {
		end := schedule.EndOf(start)

		within, err := schedule.IsWithinShifts(start, end, restaurant.Timezone, restaurant.Shifts)
		if err != nil {
			return nil, err
		}
		if !within {
			report.Slots = append(report.Slots, AvailabilitySlot{
				Start:  start,
				Reason: ReasonOutsideServiceWindow,
			})
			continue
		}

		free := FreeTables(suitable, dayReservations, start, end)
		if len(free) == 0 {
			report.Slots = append(report.Slots, AvailabilitySlot{
				Start:  start,
				Reason: ReasonNoCapacity,
			})
			continue
		}

		ids := make([]string, len(free))
		for i, t := range free {
			ids[i] = t.ID
		}
		report.Slots = append(report.Slots, AvailabilitySlot{
			Start:     start,
			Available: true,
			TableIDs:  ids,
		})
	}
	return report, nil
}
