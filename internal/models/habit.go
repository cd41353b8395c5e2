package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Habit is a named daily practice with a completion history and per-weekday reminders
type Habit struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Icon             string            `json:"icon"`
	Streak           int               `json:"streak"`
	LongestStreak    int               `json:"longestStreak"`
	History          History           `json:"history"`
	DayNotifications []DayNotification `json:"dayNotifications"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// DayNotification binds one weekday to an ordered list of HH:MM reminder times
type DayNotification struct {
	Day   Day      `json:"day"`
	Times []string `json:"times"`
}

// History maps YYYY-MM-DD local dates to a completion flag. A missing key is false.
type History map[string]bool

// UnmarshalJSON decodes a history object, treating any non-boolean value as false.
func (h *History) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(History, len(raw))
	for date, v := range raw {
		var done bool
		if err := json.Unmarshal(v, &done); err != nil {
			done = false
		}
		out[date] = done
	}
	*h = out
	return nil
}

// Done reports whether the given date is marked complete.
func (h History) Done(date string) bool {
	return h[date]
}

// Clone returns an independent copy of the history.
func (h History) Clone() History {
	out := make(History, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the habit so callers can derive new values
// without aliasing the original's history or notification slices.
func (h Habit) Clone() Habit {
	out := h
	out.History = h.History.Clone()
	out.DayNotifications = CloneDayNotifications(h.DayNotifications)
	return out
}

// CloneDayNotifications deep-copies a day notification list. A nil input yields an empty list.
func CloneDayNotifications(dns []DayNotification) []DayNotification {
	out := make([]DayNotification, 0, len(dns))
	for _, dn := range dns {
		times := make([]string, len(dn.Times))
		copy(times, dn.Times)
		out = append(out, DayNotification{Day: dn.Day, Times: times})
	}
	return out
}

// TimesFor returns the configured times for a day, sorted ascending.
func (h Habit) TimesFor(day Day) []string {
	for _, dn := range h.DayNotifications {
		if dn.Day == day {
			times := make([]string, len(dn.Times))
			copy(times, dn.Times)
			sort.Strings(times)
			return times
		}
	}
	return nil
}

// HasReminder reports whether the habit still has a reminder at time on day.
func (h Habit) HasReminder(day Day, hhmm string) bool {
	for _, t := range h.TimesFor(day) {
		if t == hhmm {
			return true
		}
	}
	return false
}

// ReminderCount returns the total number of (day, time) pairs configured.
func (h Habit) ReminderCount() int {
	n := 0
	for _, dn := range h.DayNotifications {
		n += len(dn.Times)
	}
	return n
}
