package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-consultation-booking/internal/domain/entity"
)

func TestSlotCalendarEnumerate(t *testing.T) {
	calendar := NewSlotCalendar()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("default window yields eighteen slots", func(t *testing.T) {
		slots := calendar.Enumerate(date, entity.DefaultWorkdayStart, entity.DefaultWorkdayEnd)

		require.Len(t, slots, 18)
		assert.True(t, slots[0].Equal(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)))
		assert.True(t, slots[17].Equal(time.Date(2026, 3, 14, 17, 30, 0, 0, time.UTC)))
	})

	t.Run("slots are ascending and evenly spaced", func(t *testing.T) {
		slots := calendar.Enumerate(date, entity.DefaultWorkdayStart, entity.DefaultWorkdayEnd)

		for i := 1; i < len(slots); i++ {
			assert.Equal(t, 30*time.Minute, slots[i].Sub(slots[i-1]))
		}
	})

	t.Run("the window end is inclusive", func(t *testing.T) {
		slots := calendar.Enumerate(date, "10:00", "11:00")

		require.Len(t, slots, 3)
		assert.True(t, slots[2].Equal(time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)))
	})

	t.Run("a single instant window yields one slot", func(t *testing.T) {
		slots := calendar.Enumerate(date, "10:00", "10:00")
		assert.Len(t, slots, 1)
	})

	t.Run("an inverted window yields nothing", func(t *testing.T) {
		slots := calendar.Enumerate(date, "17:00", "09:00")
		assert.Empty(t, slots)
	})

	t.Run("malformed times yield nothing", func(t *testing.T) {
		assert.Empty(t, calendar.Enumerate(date, "9am", "17:30"))
		assert.Empty(t, calendar.Enumerate(date, "09:00", "half past five"))
	})

	t.Run("a mid-day input is truncated to the calendar date", func(t *testing.T) {
		noon := time.Date(2026, 3, 14, 12, 45, 11, 0, time.UTC)
		slots := calendar.Enumerate(noon, entity.DefaultWorkdayStart, entity.DefaultWorkdayEnd)

		require.NotEmpty(t, slots)
		assert.True(t, slots[0].Equal(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)))
	})
}
