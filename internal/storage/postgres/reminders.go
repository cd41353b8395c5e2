package postgres

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

	var fireAt sql.NullTime
	if !r.Trigger.At.IsZero() {
		fireAt = sql.NullTime{Time: r.Trigger.At, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO scheduled_reminders
			(key, habit_id, day, time, kind, weekday, hour, minute, repeats, fire_at, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (key) DO UPDATE SET
			habit_id = EXCLUDED.habit_id,
			day = EXCLUDED.day,
			time = EXCLUDED.time,
			kind = EXCLUDED.kind,
			weekday = EXCLUDED.weekday,
			hour = EXCLUDED.hour,
			minute = EXCLUDED.minute,
			repeats = EXCLUDED.repeats,
			fire_at = EXCLUDED.fire_at,
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			created_at = EXCLUDED.created_at`,
		r.Key, r.Content.Payload.HabitID, string(r.Content.Payload.Day), r.Content.Payload.Time,
		string(r.Trigger.Kind), int(r.Trigger.Weekday), r.Trigger.Hour, r.Trigger.Minute, r.Trigger.Repeats,
		fireAt, r.Content.Title, r.Content.Body, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save reminder %s: %w", r.Key, err)
	}
	return nil
}

func (s *Store) DeleteReminder(key string) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}

	result, err := s.db.Exec("DELETE FROM scheduled_reminders WHERE key = $1", key)
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
		var day, kind string
		var weekday int
		var fireAt sql.NullTime

		if err := rows.Scan(&r.Key, &r.Content.Payload.HabitID, &day, &r.Content.Payload.Time,
			&kind, &weekday, &r.Trigger.Hour, &r.Trigger.Minute, &r.Trigger.Repeats,
			&fireAt, &r.Content.Title, &r.Content.Body, &r.CreatedAt); err != nil {
			return nil, err
		}

		r.Content.Payload.Day = models.Day(day)
		r.Trigger.Kind = constants.TriggerKind(kind)
		r.Trigger.Weekday = time.Weekday(weekday)
		if fireAt.Valid {
			r.Trigger.At = fireAt.Time
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}
