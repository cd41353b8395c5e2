package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/storage"
)

const habitColumns = "id, name, icon, streak, longest_streak, history, day_notifications, created_at, updated_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var history, dayNotifications, createdAt, updatedAt string

	if err := row.Scan(&h.ID, &h.Name, &h.Icon, &h.Streak, &h.LongestStreak,
		&history, &dayNotifications, &createdAt, &updatedAt); err != nil {
		return models.Habit{}, err
	}

	var err error
	h.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse updated_at for habit %s: %w", h.ID, err)
	}
	if err := storage.DecodeHabitColumns(&h, []byte(history), []byte(dayNotifications)); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) getHabitWhere(where string, arg any, label string) (models.Habit, error) {
	if s.db == nil {
		return models.Habit{}, storage.ErrNotLoaded
	}
	row := s.db.QueryRow("SELECT "+habitColumns+" FROM habits WHERE "+where, arg)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, fmt.Errorf("habit %s: %w", label, storage.ErrNotFound)
	}
	return h, err
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	return s.getHabitWhere("id = ?", id, id)
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	return s.getHabitWhere("name = ? COLLATE NOCASE", name, fmt.Sprintf("%q", name))
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}

	exists, err := s.tableExists("habits")
	if err != nil {
		return nil, fmt.Errorf("failed to check habits table: %w", err)
	}
	if !exists {
		// behave as empty when the schema is not there yet
		return []models.Habit{}, nil
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// created_at is text, so re-sort on the parsed instant
	storage.SortHabits(habits)
	return habits, nil
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			streak = excluded.streak,
			longest_streak = excluded.longest_streak,
			history = excluded.history,
			day_notifications = excluded.day_notifications,
			updated_at = excluded.updated_at`,
		habit.ID, habit.Name, habit.Icon, habit.Streak, habit.LongestStreak,
		history, dayNotifications,
		habit.CreatedAt.Format(time.RFC3339Nano), habit.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save habit %s: %w", habit.ID, err)
	}
	return nil
}

func (s *Store) DeleteHabit(id string) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	result, err := s.db.Exec("DELETE FROM habits WHERE id = ?", id)
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
