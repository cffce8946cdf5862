package service

import (
	"time"

	"github.com/iniyan007/Power-loom-production-monitoring-app/internal/model"
)

// Shift hours in facility civil time.
const (
	morningStartHour = 6  // 06:00 to 14:00
	eveningStartHour = 14 // 14:00 to 22:00
	nightStartHour   = 22 // 22:00 to 06:00 next day
	shiftHours       = 8
)

// ShiftWindow computes the start and end instants of a shift from its type
// and scheduled date. Pure and total: every valid shift type yields a valid
// window. The date's year/month/day are interpreted in loc, the facility's
// timezone; time-of-day on date is ignored. The Night window crosses
// midnight, so its end lands on the next calendar day.
func ShiftWindow(shiftType string, date time.Time, loc *time.Location) (start, end time.Time) {
	y, m, d := date.Date()

	var startHour int
	switch shiftType {
	case model.ShiftMorning:
		startHour = morningStartHour
	case model.ShiftEvening:
		startHour = eveningStartHour
	case model.ShiftNight:
		startHour = nightStartHour
	}

	start = time.Date(y, m, d, startHour, 0, 0, 0, loc)
	end = start.Add(shiftHours * time.Hour)
	return start, end
}

// DateOnly strips the time of day, keeping the calendar date in loc.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
