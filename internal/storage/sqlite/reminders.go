package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/storage"
)

func (s *Store) SaveReminder(r models.ScheduledReminder) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	var fireAt sql.NullString
	if !r.Trigger.At.IsZero() {
		fireAt = sql.NullString{String: r.Trigger.At.Format(time.RFC3339Nano), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO scheduled_reminders
			(key, habit_id, day, time, kind, weekday, hour, minute, repeats, fire_at, title, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			habit_id = excluded.habit_id,
			day = excluded.day,
			time = excluded.time,
			kind = excluded.kind,
			weekday = excluded.weekday,
			hour = excluded.hour,
			minute = excluded.minute,
			repeats = excluded.repeats,
			fire_at = excluded.fire_at,
			title = excluded.title,
			body = excluded.body,
			created_at = excluded.created_at`,
		r.Key, r.Content.Payload.HabitID, string(r.Content.Payload.Day), r.Content.Payload.Time,
		string(r.Trigger.Kind), int(r.Trigger.Weekday), r.Trigger.Hour, r.Trigger.Minute, r.Trigger.Repeats,
		fireAt, r.Content.Title, r.Content.Body, r.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save reminder %s: %w", r.Key, err)
	}
	return nil
}

func (s *Store) DeleteReminder(key string) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	result, err := s.db.Exec("DELETE FROM scheduled_reminders WHERE key = ?", key)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("reminder %s: %w", key, storage.ErrNotFound)
	}
	return nil
}

func (s *Store) GetAllReminders() ([]models.ScheduledReminder, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}

	rows, err := s.db.Query(`
		SELECT key, habit_id, day, time, kind, weekday, hour, minute, repeats, fire_at, title, body, created_at
		FROM scheduled_reminders ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := []models.ScheduledReminder{}
	for rows.Next() {
		var r models.ScheduledReminder
		var day, kind, createdAt string
		var weekday int
		var fireAt sql.NullString

		if err := rows.Scan(&r.Key, &r.Content.Payload.HabitID, &day, &r.Content.Payload.Time,
			&kind, &weekday, &r.Trigger.Hour, &r.Trigger.Minute, &r.Trigger.Repeats,
			&fireAt, &r.Content.Title, &r.Content.Body, &createdAt); err != nil {
			return nil, err
		}

		r.Content.Payload.Day = models.Day(day)
		r.Trigger.Kind = constants.TriggerKind(kind)
		r.Trigger.Weekday = time.Weekday(weekday)
		if fireAt.Valid {
			r.Trigger.At, err = time.Parse(time.RFC3339Nano, fireAt.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse fire_at for reminder %s: %w", r.Key, err)
			}
		}
		r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for reminder %s: %w", r.Key, err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}
