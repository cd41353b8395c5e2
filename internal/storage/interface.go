package storage

import (
	"errors"

	"github.com/julianstephens/microhabit/internal/models"
)

var (
	// ErrNotFound is returned when a habit or registration does not exist
	ErrNotFound = errors.New("not found")
	// ErrNotLoaded is returned when a store is used before Init or Load
	ErrNotLoaded = errors.New("storage not loaded")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits() ([]models.Habit, error)
	UpsertHabit(models.Habit) error
	DeleteHabit(id string) error

	// Scheduled reminders held on behalf of the notification sink
	SaveReminder(models.ScheduledReminder) error
	DeleteReminder(key string) error
	GetAllReminders() ([]models.ScheduledReminder, error)

	// Utils
	GetConfigPath() string
}
