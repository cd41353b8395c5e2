package reminders

import (
	"time"

	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/models"
)

// NextOccurrence returns the first instant strictly after now that falls on
// weekday at hour:minute in now's location. The result is at most 7 days out.
//
// Candidates are built with time.Date per calendar day rather than by adding
// 24h so the wall clock time is kept across DST transitions.
func NextOccurrence(weekday time.Weekday, hour, minute int, now time.Time) time.Time {
	loc := now.Location()
	y, m, d := now.Date()
	for i := 0; i <= 7; i++ {
		candidate := time.Date(y, m, d+i, hour, minute, 0, 0, loc)
		if candidate.Weekday() == weekday && candidate.After(now) {
			return candidate
		}
	}
	// unreachable for valid inputs: day 7 always matches the weekday of day 0
	return time.Date(y, m, d+7, hour, minute, 0, 0, loc)
}

// NextFire returns when a registered trigger will next fire after now.
func NextFire(t models.Trigger, now time.Time) time.Time {
	if t.Kind == constants.TriggerDate {
		return t.At
	}
	return NextOccurrence(t.Weekday, t.Hour, t.Minute, now)
}
