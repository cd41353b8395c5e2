// Package streak derives completion and streak state from a habit's history.
//
// Every function takes the reference instant explicitly; "today" is the
// calendar date of now in now's location, not a rolling 24 hour window.
package streak

import (
	"math"
	"time"

	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/utils"
)

// IsCompletedToday reports whether the habit is checked in for now's calendar date.
func IsCompletedToday(h models.Habit, now time.Time) bool {
	return h.History.Done(utils.DateKey(now))
}

// CurrentStreak counts consecutive completed dates ending at the most recent
// completed day. The walk starts at today; an incomplete today is skipped so
// the streak only breaks once a whole day has been missed.
func CurrentStreak(h models.Habit, now time.Time) int {
	day := utils.CalendarDay(now)
	if !h.History.Done(utils.DateKey(day)) {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for h.History.Done(utils.DateKey(day)) {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// LongestRun returns the longest run of consecutive completed dates anywhere in the history.
func LongestRun(h models.Habit) int {
	longest := 0
	for date, done := range h.History {
		if !done {
			continue
		}
		d, err := time.Parse(constants.DateFormat, date)
		if err != nil {
			continue
		}
		d = utils.CalendarDay(d)
		// only start counting at the first day of a run
		if h.History.Done(utils.DateKey(d.AddDate(0, 0, -1))) {
			continue
		}
		run := 0
		for h.History.Done(utils.DateKey(d)) {
			run++
			d = d.AddDate(0, 0, 1)
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// RecordCheckIn marks today complete and returns the updated habit.
// If today is already complete the habit is returned unchanged. The input is never mutated.
func RecordCheckIn(h models.Habit, now time.Time) models.Habit {
	if IsCompletedToday(h, now) {
		return h
	}

	updated := h.Clone()
	updated.History[utils.DateKey(now)] = true
	updated.Streak = CurrentStreak(updated, now)
	if updated.Streak > updated.LongestStreak {
		updated.LongestStreak = updated.Streak
	}
	updated.UpdatedAt = now
	return updated
}

// HistoryWindow returns completion flags for the trailing windowDays dates,
// oldest first, today last.
func HistoryWindow(h models.Habit, windowDays int, now time.Time) []bool {
	if windowDays <= 0 {
		return []bool{}
	}

	window := make([]bool, windowDays)
	today := utils.CalendarDay(now)
	for i := 0; i < windowDays; i++ {
		date := today.AddDate(0, 0, -(windowDays - 1 - i))
		window[i] = h.History.Done(utils.DateKey(date))
	}
	return window
}

// CompletionRate returns the percentage (0-100, rounded) of the trailing
// windowDays dates, today inclusive, that are complete.
func CompletionRate(h models.Habit, windowDays int, now time.Time) int {
	if windowDays <= 0 {
		return 0
	}

	completed := 0
	for _, done := range HistoryWindow(h, windowDays, now) {
		if done {
			completed++
		}
	}
	return int(math.Round(float64(completed) * 100 / float64(windowDays)))
}
