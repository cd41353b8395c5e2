package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/storage"
)

const habitColumns = "id, name, icon, streak, longest_streak, history, day_notifications, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var history, dayNotifications []byte

	if err := row.Scan(&h.ID, &h.Name, &h.Icon, &h.Streak, &h.LongestStreak,
		&history, &dayNotifications, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return models.Habit{}, err
	}
	if err := storage.DecodeHabitColumns(&h, history, dayNotifications); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) getHabitWhere(where string, arg any, label string) (models.Habit, error) {
	if s.db == nil {
		return models.Habit{}, storage.ErrNotLoaded
	}
	h, err := scanHabit(s.db.QueryRow("SELECT "+habitColumns+" FROM habits WHERE "+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", label, storage.ErrNotFound)
	}
	return h, err
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	return s.getHabitWhere("id = $1", id, id)
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	return s.getHabitWhere("lower(name) = lower($1)", name, fmt.Sprintf("%q", name))
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}

	rows, err := s.db.Query("SELECT " + habitColumns + " FROM habits ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpsertHabit(habit models.Habit) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	history, dayNotifications, err := storage.EncodeHabitColumns(habit)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO habits (`+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			icon = EXCLUDED.icon,
			streak = EXCLUDED.streak,
			longest_streak = EXCLUDED.longest_streak,
			history = EXCLUDED.history,
			day_notifications = EXCLUDED.day_notifications,
			updated_at = EXCLUDED.updated_at`,
		habit.ID, habit.Name, habit.Icon, habit.Streak, habit.LongestStreak,
		history, dayNotifications, habit.CreatedAt, habit.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save habit %s: %w", habit.ID, err)
	}
	return nil
}

func (s *Store) DeleteHabit(id string) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	result, err := s.db.Exec("DELETE FROM habits WHERE id = $1", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit %s: %w", id, storage.ErrNotFound)
	}
	return nil
}
