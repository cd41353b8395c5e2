// Package reminders turns a habit's per-weekday reminder configuration into
// registrations held by a notification sink, and keeps the two consistent.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/logger"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/storage"
	"github.com/julianstephens/microhabit/internal/utils"
)

// Sink holds registered reminders on behalf of the platform.
// Schedule replaces any registration with the same key. Cancel of an
// unknown key is not an error.
type Sink interface {
	Schedule(ctx context.Context, key string, trigger models.Trigger, content models.ReminderContent) (string, error)
	Cancel(ctx context.Context, key string) error
	ListScheduled(ctx context.Context) ([]models.ScheduledReminder, error)
}

// HabitSource is the read side of storage the scheduler needs.
type HabitSource interface {
	GetHabit(id string) (models.Habit, error)
}

// Result is the outcome of scheduling one habit. Individual (day, time)
// registrations fail independently; Err joins their errors.
type Result struct {
	HabitID   string
	Cancelled int
	Scheduled int
	Failed    int
	Err       error
}

// SyncReport is the outcome of SyncAll.
type SyncReport struct {
	Results  []Result
	Orphaned int
	Err      error
}

// Scheduled sums the registrations made across all habits.
func (r SyncReport) Scheduled() int {
	n := 0
	for _, res := range r.Results {
		n += res.Scheduled
	}
	return n
}

// Failed sums the failed registrations across all habits.
func (r SyncReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		n += res.Failed
	}
	return n
}

type Option func(*Scheduler)

// WithClock overrides the source of the current time. The returned
// instant's location is the calendar reminders are computed in.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler is constructed once at startup with exactly one strategy.
type Scheduler struct {
	sink     Sink
	habits   HabitSource
	strategy Strategy
	now      func() time.Time

	// serializes cancel-then-register against fire callbacks
	mu sync.Mutex
}

func New(sink Sink, habits HabitSource, strategy Strategy, opts ...Option) *Scheduler {
	if strategy == nil {
		strategy = CalendarStrategy{}
	}
	s := &Scheduler{
		sink:     sink,
		habits:   habits,
		strategy: strategy,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Strategy() Strategy {
	return s.strategy
}

// ReminderKey is the deterministic registration key for one (habit, day, time).
func ReminderKey(habitID string, day models.Day, hhmm string) string {
	return fmt.Sprintf("%s%s_%s_%s", constants.ReminderKeyPrefix, habitID, day, strings.ReplaceAll(hhmm, ":", ""))
}

// ContentFor builds the notification shown for a habit's reminder.
func ContentFor(h models.Habit, day models.Day, hhmm string) models.ReminderContent {
	icon := h.Icon
	if icon == "" {
		icon = constants.DefaultHabitIcon
	}
	return models.ReminderContent{
		Title:   fmt.Sprintf("%s Time for: %s", icon, h.Name),
		Body:    fmt.Sprintf("It's time to complete your habit: %s", h.Name),
		Payload: models.ReminderPayload{HabitID: h.ID, Day: day, Time: hhmm},
	}
}

// ScheduleForHabit cancels every registration for the habit and registers
// one per configured (day, time) pair.
func (s *Scheduler) ScheduleForHabit(ctx context.Context, habit models.Habit) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleLocked(ctx, habit)
}

func (s *Scheduler) scheduleLocked(ctx context.Context, habit models.Habit) Result {
	res := Result{HabitID: habit.ID}
	var errs []error

	cancelled, err := s.cancelLocked(ctx, habit.ID)
	res.Cancelled = cancelled
	if err != nil {
		errs = append(errs, fmt.Errorf("cancel: %w", err))
	}

	now := s.now()
	for _, dn := range habit.DayNotifications {
		weekday, ok := dn.Day.Weekday()
		for _, hhmm := range dn.Times {
			if !ok {
				res.Failed++
				errs = append(errs, fmt.Errorf("%s %s: invalid day", dn.Day, hhmm))
				continue
			}
			hour, minute, err := utils.ParseTimeOfDay(hhmm)
			if err != nil {
				res.Failed++
				errs = append(errs, fmt.Errorf("%s %s: %w", dn.Day, hhmm, err))
				continue
			}

			key := ReminderKey(habit.ID, dn.Day, hhmm)
			trigger := s.strategy.Trigger(weekday, hour, minute, now)
			if _, err := s.sink.Schedule(ctx, key, trigger, ContentFor(habit, dn.Day, hhmm)); err != nil {
				res.Failed++
				errs = append(errs, fmt.Errorf("%s %s: %w", dn.Day, hhmm, err))
				continue
			}
			res.Scheduled++
		}
	}

	res.Err = errors.Join(errs...)
	if res.Err != nil {
		logger.Warn("Some reminders could not be scheduled",
			"habit", habit.ID, "scheduled", res.Scheduled, "failed", res.Failed, "error", res.Err)
	} else {
		logger.Debug("Scheduled reminders", "habit", habit.ID, "count", res.Scheduled, "strategy", s.strategy.Name())
	}
	return res
}

// CancelForHabit removes every registration tagged with habitID and returns
// how many were removed. A habit with no registrations is a no-op.
func (s *Scheduler) CancelForHabit(ctx context.Context, habitID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(ctx, habitID)
}

func (s *Scheduler) cancelLocked(ctx context.Context, habitID string) (int, error) {
	scheduled, err := s.sink.ListScheduled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list scheduled reminders: %w", err)
	}

	var errs []error
	cancelled := 0
	for _, r := range scheduled {
		if r.Content.Payload.HabitID != habitID {
			continue
		}
		if err := s.sink.Cancel(ctx, r.Key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Key, err))
			continue
		}
		cancelled++
	}
	return cancelled, errors.Join(errs...)
}

// OnFire handles a fired reminder. With a re-arming strategy it registers
// the next weekly occurrence, but only while the habit still has that
// (day, time) entry. It reports whether a registration was made.
func (s *Scheduler) OnFire(ctx context.Context, payload models.ReminderPayload) (bool, error) {
	if !s.strategy.RearmOnFire() {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	habit, err := s.habits.GetHabit(payload.HabitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Debug("Fired reminder for deleted habit", "habit", payload.HabitID)
			return false, nil
		}
		return false, fmt.Errorf("failed to load habit %s: %w", payload.HabitID, err)
	}

	if !habit.HasReminder(payload.Day, payload.Time) {
		logger.Debug("Fired reminder no longer configured", "habit", habit.ID, "day", payload.Day, "time", payload.Time)
		return false, nil
	}

	weekday, _ := payload.Day.Weekday()
	hour, minute, err := utils.ParseTimeOfDay(payload.Time)
	if err != nil {
		return false, err
	}

	key := ReminderKey(habit.ID, payload.Day, payload.Time)
	trigger := s.strategy.Trigger(weekday, hour, minute, s.now())
	if _, err := s.sink.Schedule(ctx, key, trigger, ContentFor(habit, payload.Day, payload.Time)); err != nil {
		return false, fmt.Errorf("failed to re-arm %s: %w", key, err)
	}
	logger.Debug("Re-armed reminder", "key", key, "at", trigger.At)
	return true, nil
}

// SyncAll re-registers every habit and removes registrations whose habit is
// no longer present. It is run at process start.
func (s *Scheduler) SyncAll(ctx context.Context, habits []models.Habit) SyncReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report SyncReport
	var errs []error

	known := make(map[string]bool, len(habits))
	for _, h := range habits {
		known[h.ID] = true
		res := s.scheduleLocked(ctx, h)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("habit %s: %w", h.ID, res.Err))
		}
		report.Results = append(report.Results, res)
	}

	scheduled, err := s.sink.ListScheduled(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to list scheduled reminders: %w", err))
	}
	for _, r := range scheduled {
		if known[r.Content.Payload.HabitID] {
			continue
		}
		if err := s.sink.Cancel(ctx, r.Key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Key, err))
			continue
		}
		report.Orphaned++
	}

	report.Err = errors.Join(errs...)
	return report
}
