package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/microhabit/internal/achievements"
	"github.com/julianstephens/microhabit/internal/backup"
	"github.com/julianstephens/microhabit/internal/config"
	"github.com/julianstephens/microhabit/internal/dispatch"
	"github.com/julianstephens/microhabit/internal/logger"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/reminders"
	"github.com/julianstephens/microhabit/internal/storage"
	"github.com/julianstephens/microhabit/internal/streak"
	"github.com/julianstephens/microhabit/internal/validation"
)

// Deliverer shows reminders to the user and knows whether it can.
type Deliverer interface {
	dispatch.Deliverer
	Available() bool
}

type Context struct {
	Store     storage.Provider
	Scheduler *reminders.Scheduler
	Sink      reminders.Sink
	Deliverer Deliverer
	Settings  config.Settings

	// SettingsPath is where init writes default settings
	SettingsPath string
	// ConfigDir holds logs and backups
	ConfigDir    string
	Location     *time.Location
	Clock        func() time.Time
	Out          io.Writer
}

// Now returns the current instant in the configured habit calendar.
func (c *Context) Now() time.Time {
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return clock().In(loc)
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Stdout(), args...)
}

// Backups returns the snapshot manager for the configured directory.
func (c *Context) Backups() *backup.Manager {
	return backup.NewManager(c.ConfigDir)
}

// PerformAutomaticBackup snapshots every habit, logging rather than
// returning failures.
func (c *Context) PerformAutomaticBackup() {
	habits, err := c.Store.GetAllHabits()
	if err != nil {
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	if _, err := c.Backups().CreateBackup(habits); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// FindHabit resolves ref as a habit id, then as a case-insensitive name.
func (c *Context) FindHabit(ref string) (models.Habit, error) {
	h, err := c.Store.GetHabit(ref)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, err
	}
	h, err = c.Store.GetHabitByName(ref)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, fmt.Errorf("habit %q not found", ref)
	}
	return h, err
}

// SaveHabit validates and persists h. Nothing is written when validation fails.
func (c *Context) SaveHabit(h models.Habit) error {
	if err := validation.Habit(h); err != nil {
		return err
	}
	if err := c.Store.UpsertHabit(h); err != nil {
		logger.Error("Failed to save habit", "habit", h.ID, "error", err)
		return fmt.Errorf("failed to save habit: %w", err)
	}
	return nil
}

// Habits returns every stored habit in creation order.
func (c *Context) Habits() ([]models.Habit, error) {
	return c.Store.GetAllHabits()
}

// CheckInResult is the outcome of CheckIn.
type CheckInResult struct {
	Habit    models.Habit
	Already  bool
	Unlocked *achievements.Achievement
}

// CheckIn records today's completion and saves the habit. A habit already
// done today is returned unchanged with Already set.
func (c *Context) CheckIn(h models.Habit) (CheckInResult, error) {
	now := c.Now()
	if streak.IsCompletedToday(h, now) {
		return CheckInResult{Habit: h, Already: true}, nil
	}

	updated := streak.RecordCheckIn(h, now)
	if err := c.SaveHabit(updated); err != nil {
		return CheckInResult{}, err
	}

	res := CheckInResult{Habit: updated}
	if a, ok := achievements.CheckForNew(h.Streak, updated.Streak); ok {
		res.Unlocked = &a
	}
	return res, nil
}

// RemoveHabit cancels the habit's reminders and deletes it.
func (c *Context) RemoveHabit(ctx context.Context, h models.Habit) error {
	if c.Scheduler != nil {
		if _, err := c.Scheduler.CancelForHabit(ctx, h.ID); err != nil {
			// leftovers are removed on the next daemon sync
			logger.Warn("Failed to cancel reminders for deleted habit", "habit", h.ID, "error", err)
		}
	}
	if err := c.Store.DeleteHabit(h.ID); err != nil {
		logger.Error("Failed to delete habit", "habit", h.ID, "error", err)
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}

// SyncReminders brings the habit's registrations in line with its day
// notifications. Scheduling problems are reported as warnings and never
// fail the command that saved the habit.
func (c *Context) SyncReminders(ctx context.Context, h models.Habit) reminders.Result {
	if c.Scheduler == nil {
		return reminders.Result{HabitID: h.ID}
	}
	if !c.Settings.NotificationsEnabled {
		n, err := c.Scheduler.CancelForHabit(ctx, h.ID)
		if err != nil {
			logger.Warn("Failed to cancel reminders", "habit", h.ID, "error", err)
		}
		return reminders.Result{HabitID: h.ID, Cancelled: n, Err: err}
	}

	res := c.Scheduler.ScheduleForHabit(ctx, h)
	if res.Err != nil {
		c.Printf("%s %d of %d reminders could not be scheduled: %v\n",
			WarningStyle.Render("⚠"), res.Failed, res.Failed+res.Scheduled, res.Err)
	}
	return res
}

// ParseDayTimes parses "Day=HH:MM[,HH:MM...]" as used by --remind.
func ParseDayTimes(s string) (models.Day, []string, error) {
	dayPart, timesPart, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid reminder %q (expected Day=HH:MM[,HH:MM])", s)
	}
	day, err := models.ParseDay(strings.TrimSpace(dayPart))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %q", validation.ErrInvalidDay, dayPart)
	}
	return day, SplitTimes(timesPart), nil
}

// SplitTimes splits a comma or space separated list of times.
func SplitTimes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	times := make([]string, 0, len(fields))
	for _, f := range fields {
		times = append(times, strings.TrimSpace(f))
	}
	return times
}
