package booking

import (
	"time"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
)

// FitsParty filters tables whose capacity bounds admit the party size,
// preserving input order.
func FitsParty(tables []domain.Table, partySize int) []domain.Table {
	fit := make([]domain.Table, 0, len(tables))
	for _, t := range tables {
		if t.MinSize <= partySize && partySize <= t.MaxSize {
			fit = append(fit, t)
		}
	}
	return fit
}

// FreeTables returns the candidates not referenced by any non-cancelled
// reservation overlapping [start, end), in input order. Both the bulk
// availability scan and the single-booking check go through here; the
// booking path takes the first element (deterministic first-fit).
func FreeTables(candidates []domain.Table, reservations []domain.Reservation, start, end time.Time) []domain.Table {
	busy := make(map[string]struct{})
	for _, r := range reservations {
		if r.Status == domain.StatusCancelled {
			continue
		}
		if !r.Overlaps(start, end) {
			continue
		}
		for _, tableID := range r.TableIDs {
			busy[tableID] = struct{}{}
		}
	}

	free := make([]domain.Table, 0, len(candidates))
	for _, t := range candidates {
		if _, taken := busy[t.ID]; !taken {
			free = append(free, t)
		}
	}
	return free
}
