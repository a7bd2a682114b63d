package service

import (
	"time"

	"go-consultation-booking/internal/domain/entity"
)

// SlotCalendar enumerates candidate consultation start times over a doctor's
// working window. Pure computation, no I/O.
type SlotCalendar struct {
	interval time.Duration
}

func NewSlotCalendar() *SlotCalendar {
	return &SlotCalendar{
		interval: entity.AppointmentDurationMinutes * time.Minute,
	}
}

// Enumerate returns the candidate start instants for the given calendar date,
// spaced by the planning interval, from workdayStart to workdayEnd inclusive.
// Times are in "HH:MM" format; invalid input yields an empty sequence.
// With the default 09:00-17:30 window this produces 18 slots.
func (c *SlotCalendar) Enumerate(date time.Time, workdayStart, workdayEnd string) []time.Time {
	start, err := time.Parse("15:04", workdayStart)
	if err != nil {
		return nil
	}
	end, err := time.Parse("15:04", workdayEnd)
	if err != nil {
		return nil
	}

	day := date.UTC().Truncate(24 * time.Hour)
	startOffset := time.Duration(start.Hour())*time.Hour + time.Duration(start.Minute())*time.Minute
	endOffset := time.Duration(end.Hour())*time.Hour + time.Duration(end.Minute())*time.Minute

	var slots []time.Time
	for offset := startOffset; offset <= endOffset; offset += c.interval {
		slots = append(slots, day.Add(offset))
	}
	return slots
}
