// Package memory holds mutex-guarded in-process implementations of the
// storage contracts. They back the booking unit tests and local development;
// production wiring uses the crdb and redis adapters.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
)

type Restaurants struct {
	mu    sync.RWMutex
	items map[string]domain.Restaurant
}

func NewRestaurants() *Restaurants {
	return &Restaurants{items: make(map[string]domain.Restaurant)}
}

func (r *Restaurants) Save(restaurant domain.Restaurant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[restaurant.ID] = restaurant
}

func (r *Restaurants) FindByID(_ context.Context, id string) (*domain.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	restaurant, ok := r.items[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "restaurant %s", id)
	}
	return &restaurant, nil
}

func (r *Restaurants) FindAll(_ context.Context) ([]domain.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Restaurant, 0, len(r.items))
	for _, restaurant := range r.items {
		out = append(out, restaurant)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type Sectors struct {
	mu    sync.RWMutex
	items map[string]domain.Sector
}

func NewSectors() *Sectors {
	return &Sectors{items: make(map[string]domain.Sector)}
}

func (s *Sectors) Save(sector domain.Sector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sector.ID] = sector
}

func (s *Sectors) FindByID(_ context.Context, id string) (*domain.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sector, ok := s.items[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "sector %s", id)
	}
	return &sector, nil
}

func (s *Sectors) FindByRestaurantID(_ context.Context, restaurantID string) ([]domain.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Sector
	for _, sector := range s.items {
		if sector.RestaurantID == restaurantID {
			out = append(out, sector)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type Tables struct {
	mu    sync.RWMutex
	items map[string]domain.Table
}

func NewTables() *Tables {
	return &Tables{items: make(map[string]domain.Table)}
}

func (t *Tables) Save(table domain.Table) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[table.ID] = table
}

func (t *Tables) FindByID(_ context.Context, id string) (*domain.Table, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	table, ok := t.items[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "table %s", id)
	}
	return &table, nil
}

// FindBySectorID returns tables in id order, matching the stable catalog
// order the first-fit selection relies on.
func (t *Tables) FindBySectorID(_ context.Context, sectorID string) ([]domain.Table, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []domain.Table
	for _, table := range t.items {
		if table.SectorID == sectorID {
			out = append(out, table)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type Reservations struct {
	mu    sync.RWMutex
	items map[uuid.UUID]domain.Reservation
}

func NewReservations() *Reservations {
	return &Reservations{items: make(map[uuid.UUID]domain.Reservation)}
}

func (s *Reservations) FindByID(_ context.Context, id uuid.UUID) (*domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "reservation %s", id)
	}
	return &r, nil
}

func (s *Reservations) FindByDate(_ context.Context, date time.Time, restaurantID, sectorID string) ([]domain.Reservation, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reservation
	for _, r := range s.items {
		if r.RestaurantID != restaurantID || r.Status == domain.StatusCancelled {
			continue
		}
		if sectorID != "" && r.SectorID != sectorID {
			continue
		}
		start := r.StartAt.UTC()
		if start.Before(dayStart) || !start.Before(dayEnd) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (s *Reservations) FindOverlapping(_ context.Context, sectorID string, start, end time.Time) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Reservation
	for _, r := range s.items {
		if r.SectorID != sectorID || r.Status == domain.StatusCancelled {
			continue
		}
		if r.Overlaps(start, end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Reservations) Save(_ context.Context, r domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[r.ID] = r
	return nil
}

func (s *Reservations) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *Reservations) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Locker mirrors the expiring-lock semantics of the production adapters: an
// entry past its expiry counts as free.
type Locker struct {
	mu    sync.Mutex
	ttl   time.Duration
	locks map[string]time.Time // key -> expiry
}

func NewLocker(ttl time.Duration) *Locker {
	return &Locker{ttl: ttl, locks: make(map[string]time.Time)}
}

func (l *Locker) Acquire(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if expiry, held := l.locks[key]; held && now.Before(expiry) {
		return false, nil
	}
	l.locks[key] = now.Add(l.ttl)
	return true, nil
}

func (l *Locker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
	return nil
}

type IdempotencyKeys struct {
	mu   sync.Mutex
	keys map[string]uuid.UUID
}

func NewIdempotencyKeys() *IdempotencyKeys {
	return &IdempotencyKeys{keys: make(map[string]uuid.UUID)}
}

func (k *IdempotencyKeys) Get(_ context.Context, key string) (uuid.UUID, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	id, ok := k.keys[key]
	return id, ok, nil
}

// Set is first-write-wins, matching the unique-key insert of the crdb
// adapter.
func (k *IdempotencyKeys) Set(_ context.Context, key string, reservationID uuid.UUID) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, exists := k.keys[key]; !exists {
		k.keys[key] = reservationID
	}
	return nil
}
