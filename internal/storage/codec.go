package storage

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/validation"
)

// EncodeHabitColumns serializes the nested habit fields stored as JSON columns.
func EncodeHabitColumns(h models.Habit) (history, dayNotifications string, err error) {
	hist := h.History
	if hist == nil {
		hist = models.History{}
	}
	hb, err := json.Marshal(hist)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode history for habit %s: %w", h.ID, err)
	}
	dns := h.DayNotifications
	if dns == nil {
		dns = []models.DayNotification{}
	}
	db, err := json.Marshal(dns)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode day notifications for habit %s: %w", h.ID, err)
	}
	return string(hb), string(db), nil
}

// DecodeHabitColumns is the inverse of EncodeHabitColumns.
func DecodeHabitColumns(h *models.Habit, history, dayNotifications []byte) error {
	h.History = models.History{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &h.History); err != nil {
			return fmt.Errorf("failed to decode history for habit %s: %w", h.ID, err)
		}
	}
	h.DayNotifications = []models.DayNotification{}
	if len(dayNotifications) > 0 {
		if err := json.Unmarshal(dayNotifications, &h.DayNotifications); err != nil {
			return fmt.Errorf("failed to decode day notifications for habit %s: %w", h.ID, err)
		}
	}
	return nil
}

// MigrateHabit brings a habit loaded from an older format up to date: the
// obsolete single reminderTime field is dropped by decoding, a missing
// day notification list becomes empty, day tokens are normalized and the
// streak counters are made consistent.
func MigrateHabit(h models.Habit) (models.Habit, error) {
	out := h.Clone()
	dns, err := validation.NormalizeDayNotifications(out.DayNotifications)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %q: %w", h.Name, err)
	}
	out.DayNotifications = dns
	if out.Streak < 0 {
		out.Streak = 0
	}
	if out.LongestStreak < out.Streak {
		out.LongestStreak = out.Streak
	}
	return out, nil
}

// DocumentVersion is written into every stored or exported Document.
const DocumentVersion = 1

// Document is the on-disk shape of the JSON store and of exports.
type Document struct {
	Version   int                        `json:"version"`
	Habits    []models.Habit             `json:"habits"`
	Reminders []models.ScheduledReminder `json:"reminders,omitempty"`
}

// DecodeHabits parses either a Document or a bare JSON array of habits, the
// blob format written by the mobile app, and migrates every habit.
func DecodeHabits(data []byte) ([]models.Habit, error) {
	var habits []models.Habit
	if err := json.Unmarshal(data, &habits); err != nil {
		var doc Document
		if docErr := json.Unmarshal(data, &doc); docErr != nil {
			return nil, fmt.Errorf("failed to parse habits: %w", err)
		}
		habits = doc.Habits
	}

	out := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if h.ID == "" {
			return nil, fmt.Errorf("habit %q has no id", h.Name)
		}
		migrated, err := MigrateHabit(h)
		if err != nil {
			return nil, err
		}
		out = append(out, migrated)
	}
	return out, nil
}

// SortHabits orders habits by creation time, then id.
func SortHabits(habits []models.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		if !habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].CreatedAt.Before(habits[j].CreatedAt)
		}
		return habits[i].ID < habits[j].ID
	})
}
