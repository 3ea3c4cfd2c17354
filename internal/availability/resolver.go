// Package availability decides which time slots a shop offers on a date and which of them are still free.
// Everything here is a pure function over snapshots supplied by the caller.
package availability

import (
	"cmp"
	"slices"
	"time"

	"barberbook/backend/internal/domain"
)

// GridStepMinutes is the spacing of synthetic slots when a shop defines no custom slot list.
const GridStepMinutes = 60

// ResolveSlots returns the bookable start times of shop on day, in order.
//
// An empty result means the shop is closed that day. Custom slots are returned in their stored order.
// Otherwise slots run from OpeningTime (inclusive) to ClosingTime (exclusive) on a 60 minute grid.
// Opening and closing times are assumed to be valid HH:MM strings.
func ResolveSlots(shop domain.Shop, day time.Time) []string {
	if !shop.WorksOn(domain.WeekdayOf(day)) {
		return nil
	}

	if len(shop.AvailableTimeSlots) > 0 {
		out := make([]string, 0, len(shop.AvailableTimeSlots))
		for _, s := range shop.AvailableTimeSlots {
			out = append(out, s.Time)
		}
		return out
	}

	open, err := domain.ParseClock(shop.OpeningTime)
	if err != nil {
		return nil
	}
	closing, err := domain.ParseClock(shop.ClosingTime)
	if err != nil {
		return nil
	}

	var out []string
	for t := open; t < closing; t = t.Add(GridStepMinutes) {
		out = append(out, t.String())
	}
	return out
}

// SortTimeSlots orders custom slots chronologically. Entries with unparsable times sort last.
// Ties keep their input order.
func SortTimeSlots(slots []domain.TimeSlot) []domain.TimeSlot {
	type keyed struct {
		minute int
		slot   domain.TimeSlot
	}

	keys := make([]keyed, len(slots))
	for i, s := range slots {
		minute := 24 * 60
		if c, err := domain.ParseClock(s.Time); err == nil {
			minute = int(c)
		}
		keys[i] = keyed{minute: minute, slot: s}
	}
	slices.SortStableFunc(keys, func(a, b keyed) int { return cmp.Compare(a.minute, b.minute) })

	out := make([]domain.TimeSlot, len(keys))
	for i, k := range keys {
		out[i] = k.slot
	}
	return out
}
