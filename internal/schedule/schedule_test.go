package schedule_test

import (
	"testing"
	"time"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
	"github.com/robertarktes/restaurant-reservations/internal/schedule"
)

const tzBuenosAires = "America/Argentina/Buenos_Aires"

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestGenerateDaySlots_NoShifts(t *testing.T) {
	slots, err := schedule.GenerateDaySlots(date(t, "2026-09-10"), tzBuenosAires, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 96 {
		t.Fatalf("expected 96 slots for a full day, got %d", len(slots))
	}

	loc, _ := time.LoadLocation(tzBuenosAires)
	first := slots[0].In(loc)
	if first.Hour() != 0 || first.Minute() != 0 {
		t.Errorf("first slot should be local midnight, got %v", first)
	}
	last := slots[95].In(loc)
	if last.Hour() != 23 || last.Minute() != 45 {
		t.Errorf("last slot should be local 23:45, got %v", last)
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].Sub(slots[i-1]) != 15*time.Minute {
			t.Fatalf("slots %d and %d are not 15 minutes apart", i-1, i)
		}
	}
}

func TestGenerateDaySlots_Shifts(t *testing.T) {
	shifts := []domain.Shift{
		{Start: "12:00", End: "16:00"},
		{Start: "20:00", End: "23:00"},
	}
	slots, err := schedule.GenerateDaySlots(date(t, "2026-09-10"), tzBuenosAires, shifts)
	if err != nil {
		t.Fatal(err)
	}
	// 4 hours and 3 hours of 15-minute slots, [start, end).
	if len(slots) != 16+12 {
		t.Fatalf("expected 28 slots, got %d", len(slots))
	}

	loc, _ := time.LoadLocation(tzBuenosAires)
	first := slots[0].In(loc)
	if first.Hour() != 12 || first.Minute() != 0 {
		t.Errorf("first slot should be local 12:00, got %v", first)
	}
	lunchLast := slots[15].In(loc)
	if lunchLast.Hour() != 15 || lunchLast.Minute() != 45 {
		t.Errorf("last lunch slot should be local 15:45, got %v", lunchLast)
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i-1].Before(slots[i]) {
			t.Fatalf("slots not ascending at index %d", i)
		}
	}
}

func TestGenerateDaySlots_UnknownTimezone(t *testing.T) {
	_, err := schedule.GenerateDaySlots(date(t, "2026-09-10"), "Mars/Olympus", nil)
	if err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestIsWithinShifts(t *testing.T) {
	shifts := []domain.Shift{{Start: "12:00", End: "16:00"}}
	loc, _ := time.LoadLocation(tzBuenosAires)

	local := func(hour, min int) time.Time {
		return time.Date(2026, 9, 10, hour, min, 0, 0, loc)
	}

	cases := []struct {
		name   string
		start  time.Time
		end    time.Time
		shifts []domain.Shift
		want   bool
	}{
		{"fully inside", local(12, 0), local(13, 30), shifts, true},
		{"ends at shift end", local(14, 30), local(16, 0), shifts, true},
		{"straddles shift end", local(15, 0), local(16, 30), shifts, false},
		{"outside entirely", local(18, 0), local(19, 30), shifts, false},
		{"starts before shift", local(11, 0), local(12, 30), shifts, false},
		{"no shifts always ok", local(3, 0), local(4, 30), nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := schedule.IsWithinShifts(tc.start, tc.end, tzBuenosAires, tc.shifts)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("IsWithinShifts(%v, %v) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestIsWithinShifts_UTCInstants(t *testing.T) {
	// Buenos Aires is UTC-3: 15:00Z is local noon.
	shifts := []domain.Shift{{Start: "12:00", End: "16:00"}}
	start := time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)
	ok, err := schedule.IsWithinShifts(start, start.Add(90*time.Minute), tzBuenosAires, shifts)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("local noon booking should be inside the 12:00-16:00 shift")
	}
}

func TestParseClock(t *testing.T) {
	min, err := schedule.ParseClock("23:45")
	if err != nil {
		t.Fatal(err)
	}
	if min != 23*60+45 {
		t.Errorf("expected 1425, got %d", min)
	}

	if _, err := schedule.ParseClock("25:99"); err == nil {
		t.Error("expected error for malformed clock string")
	}
}

func TestEndOf(t *testing.T) {
	start := time.Date(2026, 9, 10, 13, 0, 0, 0, time.UTC)
	if got := schedule.EndOf(start); !got.Equal(start.Add(90 * time.Minute)) {
		t.Errorf("expected 90-minute duration, got %v", got.Sub(start))
	}
}
