package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
)

func table(id string, minSize, maxSize int) domain.Table {
	return domain.Table{ID: id, SectorID: "S1", MinSize: minSize, MaxSize: maxSize}
}

func reservationAt(tableID string, start, end time.Time, status domain.ReservationStatus) domain.Reservation {
	return domain.Reservation{
		ID:       uuid.New(),
		SectorID: "S1",
		TableIDs: []string{tableID},
		StartAt:  start,
		EndAt:    end,
		Status:   status,
	}
}

func TestFitsParty(t *testing.T) {
	tables := []domain.Table{table("T1", 1, 2), table("T2", 3, 4), table("T3", 5, 8)}

	fit := FitsParty(tables, 4)
	if len(fit) != 1 || fit[0].ID != "T2" {
		t.Fatalf("expected only T2 to fit party of 4, got %v", fit)
	}

	if got := FitsParty(tables, 9); len(got) != 0 {
		t.Errorf("no table should fit a party of 9, got %v", got)
	}

	// Bounds are inclusive on both ends.
	if got := FitsParty(tables, 5); len(got) != 1 || got[0].ID != "T3" {
		t.Errorf("party of 5 should fit T3 exactly, got %v", got)
	}
}

func TestFreeTables_Overlap(t *testing.T) {
	start := time.Date(2026, 9, 10, 13, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	tables := []domain.Table{table("T1", 1, 4), table("T2", 1, 4)}

	existing := []domain.Reservation{
		reservationAt("T1", start.Add(-30*time.Minute), start.Add(60*time.Minute), domain.StatusConfirmed),
	}

	free := FreeTables(tables, existing, start, end)
	if len(free) != 1 || free[0].ID != "T2" {
		t.Fatalf("expected only T2 free, got %v", free)
	}
}

func TestFreeTables_AdjacencyIsNotOverlap(t *testing.T) {
	start := time.Date(2026, 9, 10, 14, 30, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	tables := []domain.Table{table("T1", 1, 4)}

	// Existing booking ends exactly when the request starts.
	existing := []domain.Reservation{
		reservationAt("T1", start.Add(-90*time.Minute), start, domain.StatusConfirmed),
	}
	if free := FreeTables(tables, existing, start, end); len(free) != 1 {
		t.Error("back-to-back booking on the same table must be allowed")
	}

	// And one starting exactly at the request end.
	existing = []domain.Reservation{
		reservationAt("T1", end, end.Add(90*time.Minute), domain.StatusConfirmed),
	}
	if free := FreeTables(tables, existing, start, end); len(free) != 1 {
		t.Error("booking starting at the requested end must not block")
	}
}

func TestFreeTables_CancelledIgnored(t *testing.T) {
	start := time.Date(2026, 9, 10, 13, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	tables := []domain.Table{table("T1", 1, 4)}

	existing := []domain.Reservation{
		reservationAt("T1", start, end, domain.StatusCancelled),
	}
	if free := FreeTables(tables, existing, start, end); len(free) != 1 {
		t.Error("cancelled reservations must not occupy tables")
	}
}

func TestFreeTables_PreservesInputOrder(t *testing.T) {
	start := time.Date(2026, 9, 10, 13, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	// A 4-top listed before a 2-top stays first: first-fit is deliberately
	// not capacity-optimal.
	tables := []domain.Table{table("T9", 1, 4), table("T1", 1, 2)}

	free := FreeTables(tables, nil, start, end)
	if len(free) != 2 || free[0].ID != "T9" || free[1].ID != "T1" {
		t.Fatalf("input order must be preserved, got %v", free)
	}
}
