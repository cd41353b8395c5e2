package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/models"
)

var (
	ErrNameRequired = errors.New("habit name is required")
	ErrNameTooLong  = fmt.Errorf("habit name must be %d characters or less", constants.MaxHabitNameLength)
	ErrInvalidTime  = errors.New("please use 24-hour format (HH:MM)")
	ErrTooManyTimes = fmt.Errorf("you can only set up to %d notification times per day", constants.MaxTimesPerDay)
	ErrInvalidDay   = errors.New("invalid day")
)

var timeOfDayRe = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

// HabitName validates a habit name as entered on create or edit.
func HabitName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(trimmed) > constants.MaxHabitNameLength {
		return ErrNameTooLong
	}
	return nil
}

// TimeOfDay validates a zero-padded 24-hour HH:MM string.
func TimeOfDay(s string) error {
	if !timeOfDayRe.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return nil
}

// NormalizeTimes validates, deduplicates and sorts a single day's times.
func NormalizeTimes(times []string) ([]string, error) {
	seen := make(map[string]bool, len(times))
	out := make([]string, 0, len(times))
	for _, raw := range times {
		t := strings.TrimSpace(raw)
		if err := TimeOfDay(t); err != nil {
			return nil, err
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > constants.MaxTimesPerDay {
		return nil, ErrTooManyTimes
	}
	// zero-padded HH:MM sorts lexically in time-of-day order
	sort.Strings(out)
	return out, nil
}

// NormalizeDayNotifications returns a canonical copy of the per-day reminder
// configuration: canonical day tokens, one entry per day ordered Monday to
// Sunday, validated, deduplicated and sorted times, and no empty entries.
func NormalizeDayNotifications(dns []models.DayNotification) ([]models.DayNotification, error) {
	byDay := make(map[models.Day][]string)
	for _, dn := range dns {
		day, err := models.ParseDay(string(dn.Day))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDay, dn.Day)
		}
		byDay[day] = append(byDay[day], dn.Times...)
	}

	out := make([]models.DayNotification, 0, len(byDay))
	for _, day := range models.Days {
		times, ok := byDay[day]
		if !ok {
			continue
		}
		normalized, err := NormalizeTimes(times)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", day.Name(), err)
		}
		if len(normalized) == 0 {
			continue
		}
		out = append(out, models.DayNotification{Day: day, Times: normalized})
	}
	return out, nil
}

// SetDayTimes returns the habit's day notifications with one day's entry
// replaced by times. An empty times list removes the day.
func SetDayTimes(h models.Habit, day models.Day, times []string) ([]models.DayNotification, error) {
	canonical, err := models.ParseDay(string(day))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	normalized, err := NormalizeTimes(times)
	if err != nil {
		return nil, err
	}

	dns := make([]models.DayNotification, 0, len(h.DayNotifications)+1)
	for _, dn := range models.CloneDayNotifications(h.DayNotifications) {
		if dn.Day != canonical {
			dns = append(dns, dn)
		}
	}
	if len(normalized) > 0 {
		dns = append(dns, models.DayNotification{Day: canonical, Times: normalized})
	}
	return NormalizeDayNotifications(dns)
}

// Habit validates a full habit record before it is persisted.
func Habit(h models.Habit) error {
	if strings.TrimSpace(h.ID) == "" {
		return errors.New("habit id is required")
	}
	if err := HabitName(h.Name); err != nil {
		return err
	}
	if h.Streak < 0 || h.LongestStreak < h.Streak {
		return fmt.Errorf("invalid streak state: streak=%d longest=%d", h.Streak, h.LongestStreak)
	}
	for _, dn := range h.DayNotifications {
		if !dn.Day.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidDay, dn.Day)
		}
		if len(dn.Times) == 0 {
			return fmt.Errorf("%s: at least one time is required", dn.Day.Name())
		}
		if len(dn.Times) > constants.MaxTimesPerDay {
			return fmt.Errorf("%s: %w", dn.Day.Name(), ErrTooManyTimes)
		}
		for _, t := range dn.Times {
			if err := TimeOfDay(t); err != nil {
				return fmt.Errorf("%s: %w", dn.Day.Name(), err)
			}
		}
	}
	return nil
}
