// Package schedule holds the pure time arithmetic of the booking engine:
// slot generation on a fixed granularity and service-window validation
// against a restaurant's local shifts.
package schedule

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/robertarktes/restaurant-reservations/internal/domain"
)

const (
	SlotMinutes       = 15
	DurationMinutes   = 90
	slotsPerDay       = 24 * 60 / SlotMinutes
	ReservationLength = DurationMinutes * time.Minute
)

// ParseClock converts a "HH:MM" wall-clock string to minutes since midnight.
func ParseClock(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, errors.Wrapf(domain.ErrValidation, "malformed shift time %q", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// GenerateDaySlots produces the candidate start instants for one calendar day
// in the restaurant's timezone. With no shifts configured the whole local day
// is bookable: 96 slots from 00:00 through 23:45. With shifts configured only
// the [start, end) window of each shift is stepped, and no slot extends past
// the shift end. The result is ascending for ordered, non-overlapping shifts.
func GenerateDaySlots(date time.Time, timezone string, shifts []domain.Shift) ([]time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown timezone %q", timezone)
	}
	y, m, d := date.Date()

	if len(shifts) == 0 {
		slots := make([]time.Time, 0, slotsPerDay)
		for i := 0; i < slotsPerDay; i++ {
			slots = append(slots, time.Date(y, m, d, 0, i*SlotMinutes, 0, 0, loc))
		}
		return slots, nil
	}

	var slots []time.Time
	for _, shift := range shifts {
		startMin, err := ParseClock(shift.Start)
		if err != nil {
			return nil, err
		}
		endMin, err := ParseClock(shift.End)
		if err != nil {
			return nil, err
		}
		for min := startMin; min < endMin; min += SlotMinutes {
			slots = append(slots, time.Date(y, m, d, 0, min, 0, 0, loc))
		}
	}
	return slots, nil
}

// IsWithinShifts reports whether [start, end] is fully contained in some
// shift once both instants are expressed as local wall-clock minutes. A
// reservation straddling a shift boundary is rejected, not truncated. Empty
// shifts mean every moment of the day is bookable.
func IsWithinShifts(start, end time.Time, timezone string, shifts []domain.Shift) (bool, error) {
	if len(shifts) == 0 {
		return true, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return false, errors.Wrapf(err, "unknown timezone %q", timezone)
	}

	localStart := start.In(loc)
	localEnd := end.In(loc)
	startMin := localStart.Hour()*60 + localStart.Minute()
	endMin := localEnd.Hour()*60 + localEnd.Minute()

	for _, shift := range shifts {
		shiftStart, err := ParseClock(shift.Start)
		if err != nil {
			return false, err
		}
		shiftEnd, err := ParseClock(shift.End)
		if err != nil {
			return false, err
		}
		if shiftStart <= startMin && endMin <= shiftEnd {
			return true, nil
		}
	}
	return false, nil
}

// EndOf returns the reservation end instant for a start, using the fixed
// 90-minute duration.
func EndOf(start time.Time) time.Time {
	return start.Add(ReservationLength)
}
