package calendar

import (
	"time"

	"github.com/yungbote/courseplanner-backend/internal/types"
)

// MapSlot resolves one half-day slot of a course onto a calendar date and
// period. The course runs as a continuous sequence of half-day slots, two per
// day, starting at startDate in slot startSlotIndex (0 morning, 1 afternoon).
// Each week restarts the sequence at startDate + 7*(weekNumber-1) days, so a
// week's three slots occupy two calendar days when the week opens in the
// morning and spill onto a third half-day otherwise.
//
// weekNumber is 1-based, slotInWeek is 0..2. Range checks are the caller's
// job; MapSlot is pure arithmetic.
func MapSlot(startDate time.Time, startSlotIndex, weekNumber, slotInWeek int) (time.Time, types.Period) {
	weekFirstDay := Midnight(startDate).AddDate(0, 0, 7*(weekNumber-1))

	slotOffset := startSlotIndex + slotInWeek
	dayOffset := slotOffset / 2

	period := types.PeriodMorning
	if slotOffset%2 != 0 {
		period = types.PeriodAfternoon
	}
	return weekFirstDay.AddDate(0, 0, dayOffset), period
}

// Midnight normalizes a timestamp to the start of its day, keeping location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
