package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/robertarktes/restaurant-reservations/internal/adapters/memory"
	"github.com/robertarktes/restaurant-reservations/internal/booking"
	"github.com/robertarktes/restaurant-reservations/internal/domain"
	"github.com/robertarktes/restaurant-reservations/internal/observability"
)

const tzBuenosAires = "America/Argentina/Buenos_Aires"

type fixture struct {
	restaurants  *memory.Restaurants
	sectors      *memory.Sectors
	tables       *memory.Tables
	reservations *memory.Reservations
	idempotency  *memory.IdempotencyKeys
	locks        *memory.Locker
	scheduler    *booking.Scheduler
}

func newFixture(t *testing.T, shifts []domain.Shift, tables ...domain.Table) *fixture {
	t.Helper()
	f := &fixture{
		restaurants:  memory.NewRestaurants(),
		sectors:      memory.NewSectors(),
		tables:       memory.NewTables(),
		reservations: memory.NewReservations(),
		idempotency:  memory.NewIdempotencyKeys(),
		locks:        memory.NewLocker(10 * time.Second),
	}
	f.restaurants.Save(domain.Restaurant{ID: "R1", Name: "Test", Timezone: tzBuenosAires, Shifts: shifts})
	f.sectors.Save(domain.Sector{ID: "S1", RestaurantID: "R1", Name: "Main Hall"})
	for _, table := range tables {
		f.tables.Save(table)
	}
	f.scheduler = booking.NewScheduler(
		f.restaurants, f.sectors, f.tables, f.reservations, f.idempotency, f.locks,
		observability.NewLogger(),
	)
	return f
}

func input(start, key string, partySize int) booking.CreateInput {
	return booking.CreateInput{
		RestaurantID:   "R1",
		SectorID:       "S1",
		PartySize:      partySize,
		Start:          start,
		Customer:       booking.CustomerInput{Name: "Ada", Phone: "555-0100", Email: "ada@example.com"},
		IdempotencyKey: key,
	}
}

// 15:00Z is local noon in Buenos Aires (UTC-3).
const noonStart = "2026-09-10T15:00:00Z"

var lunchShift = []domain.Shift{{Start: "12:00", End: "16:00"}}

func TestScheduler_Create(t *testing.T) {
	f := newFixture(t, lunchShift, domain.Table{ID: "T1", SectorID: "S1", MinSize: 3, MaxSize: 4})

	res, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000001", 4))
	if err != nil {
		t.Fatalf("expected booking to succeed, got %v", err)
	}
	if res.Status != domain.StatusConfirmed {
		t.Errorf("expected CONFIRMED, got %s", res.Status)
	}
	if len(res.TableIDs) != 1 || res.TableIDs[0] != "T1" {
		t.Errorf("expected table T1 assigned, got %v", res.TableIDs)
	}
	if got := res.EndAt.Sub(res.StartAt); got != 90*time.Minute {
		t.Errorf("expected 90-minute reservation, got %v", got)
	}
}

func TestScheduler_ValidationErrors(t *testing.T) {
	f := newFixture(t, nil, domain.Table{ID: "T1", SectorID: "S1", MinSize: 1, MaxSize: 4})

	_, err := f.scheduler.Create(context.Background(), input("not-a-timestamp", "key-0000000000000001", 2))
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for bad timestamp, got %v", err)
	}

	_, err = f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000002", 0))
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for party size 0, got %v", err)
	}
	if f.reservations.Len() != 0 {
		t.Error("validation failures must not persist anything")
	}
}

func TestScheduler_NotFound(t *testing.T) {
	f := newFixture(t, nil, domain.Table{ID: "T1", SectorID: "S1", MinSize: 1, MaxSize: 4})

	in := input(noonStart, "key-0000000000000001", 2)
	in.RestaurantID = "nope"
	if _, err := f.scheduler.Create(context.Background(), in); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found for unknown restaurant, got %v", err)
	}

	in = input(noonStart, "key-0000000000000002", 2)
	in.SectorID = "nope"
	if _, err := f.scheduler.Create(context.Background(), in); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found for unknown sector, got %v", err)
	}
}

func TestScheduler_OutsideServiceWindow(t *testing.T) {
	f := newFixture(t, lunchShift, domain.Table{ID: "T1", SectorID: "S1", MinSize: 1, MaxSize: 4})

	// 21:00Z is local 18:00, outside the 12:00-16:00 shift.
	_, err := f.scheduler.Create(context.Background(), input("2026-09-10T21:00:00Z", "key-0000000000000001", 2))
	if !errors.Is(err, domain.ErrOutsideServiceWindow) {
		t.Errorf("expected outside service window, got %v", err)
	}
}

func TestScheduler_NoCapacity(t *testing.T) {
	f := newFixture(t, lunchShift, domain.Table{ID: "T1", SectorID: "S1", MinSize: 3, MaxSize: 4})

	if _, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000001", 4)); err != nil {
		t.Fatalf("first booking should succeed, got %v", err)
	}
	_, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000002", 4))
	if !errors.Is(err, domain.ErrNoCapacity) {
		t.Errorf("expected no capacity for the second booking, got %v", err)
	}
	if f.reservations.Len() != 1 {
		t.Errorf("expected exactly one reservation, got %d", f.reservations.Len())
	}
}

func TestScheduler_AdjacentBookingsAllowed(t *testing.T) {
	f := newFixture(t, nil, domain.Table{ID: "T1", SectorID: "S1", MinSize: 1, MaxSize: 4})

	if _, err := f.scheduler.Create(context.Background(), input("2026-09-10T13:00:00Z", "key-0000000000000001", 2)); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	// Starts exactly when the first ends (14:30).
	if _, err := f.scheduler.Create(context.Background(), input("2026-09-10T14:30:00Z", "key-0000000000000002", 2)); err != nil {
		t.Fatalf("adjacent booking must succeed, got %v", err)
	}
	if f.reservations.Len() != 2 {
		t.Errorf("expected two reservations, got %d", f.reservations.Len())
	}
}

func TestScheduler_IdempotentRetry(t *testing.T) {
	f := newFixture(t, nil, domain.Table{ID: "T1", SectorID: "S1", MinSize: 1, MaxSize: 4})

	first, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000001", 2))
	if err != nil {
		t.Fatal(err)
	}
	second, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000001", 2))
	if err != nil {
		t.Fatalf("retry with same key must succeed, got %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("retry returned a different reservation: %s vs %s", first.ID, second.ID)
	}
	if f.reservations.Len() != 1 {
		t.Errorf("retry must not create a second reservation, got %d", f.reservations.Len())
	}
}

func TestScheduler_IdempotencyKeyForGoneReservation(t *testing.T) {
	f := newFixture(t, nil, domain.Table{ID: "T1", SectorID: "S1", MinSize: 1, MaxSize: 4})

	// A key mapped to a reservation that no longer exists behaves as unseen.
	if err := f.idempotency.Set(context.Background(), "key-0000000000000001", uuid.New()); err != nil {
		t.Fatal(err)
	}
	res, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000001", 2))
	if err != nil {
		t.Fatalf("expected fallthrough to a fresh booking, got %v", err)
	}
	if res == nil || f.reservations.Len() != 1 {
		t.Error("expected a new reservation to be created")
	}
}

func TestScheduler_LockHeldMeansNoCapacity(t *testing.T) {
	f := newFixture(t, nil, domain.Table{ID: "T1", SectorID: "S1", MinSize: 1, MaxSize: 4})

	start, _ := time.Parse(time.RFC3339, noonStart)
	key := booking.LockKey("S1", start)
	if ok, _ := f.locks.Acquire(context.Background(), key); !ok {
		t.Fatal("setup: could not take the slot lock")
	}

	_, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000001", 2))
	if !errors.Is(err, domain.ErrNoCapacity) {
		t.Errorf("held slot lock must surface as no capacity, got %v", err)
	}
}

func TestScheduler_LockReleasedAfterFailure(t *testing.T) {
	f := newFixture(t, lunchShift, domain.Table{ID: "T1", SectorID: "S1", MinSize: 3, MaxSize: 4})

	// Exhaust capacity, then fail an attempt; the slot lock must be free for
	// the next attempt to reach the resolver.
	if _, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000001", 4)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000002", 4)); !errors.Is(err, domain.ErrNoCapacity) {
		t.Fatalf("expected no capacity, got %v", err)
	}

	start, _ := time.Parse(time.RFC3339, noonStart)
	ok, err := f.locks.Acquire(context.Background(), booking.LockKey("S1", start))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("slot lock must be released after a failed attempt")
	}
}

func TestScheduler_ConcurrentAttemptsBookOnce(t *testing.T) {
	f := newFixture(t, nil, domain.Table{ID: "T1", SectorID: "S1", MinSize: 1, MaxSize: 4})

	const attempts = 16
	results := make([]error, attempts)

	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		i := i
		g.Go(func() error {
			_, err := f.scheduler.Create(context.Background(),
				input(noonStart, uuid.NewString(), 2))
			results[i] = err
			return nil
		})
	}
	g.Wait()

	succeeded := 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrNoCapacity):
		default:
			t.Fatalf("unexpected failure kind: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("expected exactly one successful booking, got %d", succeeded)
	}
	if f.reservations.Len() != 1 {
		t.Errorf("expected exactly one persisted reservation, got %d", f.reservations.Len())
	}
}

func TestCancel_FreesTable(t *testing.T) {
	f := newFixture(t, nil, domain.Table{ID: "T1", SectorID: "S1", MinSize: 1, MaxSize: 4})
	svc := booking.NewReservations(f.restaurants, f.reservations)

	res, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000001", 2))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000002", 2)); !errors.Is(err, domain.ErrNoCapacity) {
		t.Fatalf("table should be busy before the cancel, got %v", err)
	}

	if err := svc.Cancel(context.Background(), res.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := f.scheduler.Create(context.Background(), input(noonStart, "key-0000000000000003", 2)); err != nil {
		t.Errorf("cancelled reservation must free the table, got %v", err)
	}
}

func TestCancel_NotFound(t *testing.T) {
	f := newFixture(t, nil)
	svc := booking.NewReservations(f.restaurants, f.reservations)

	if err := svc.Cancel(context.Background(), uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
