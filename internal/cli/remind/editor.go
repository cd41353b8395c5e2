package remind

import (
	"context"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/validation"
)

type EditCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	values := WeekValues(h)
	if err := NewWeekForm(h, values).Run(); err != nil {
		return err
	}

	dns, err := ApplyWeek(values)
	if err != nil {
		return err
	}
	updated := h.Clone()
	updated.DayNotifications = dns
	updated.UpdatedAt = ctx.Now()
	if err := ctx.SaveHabit(updated); err != nil {
		return err
	}
	ctx.SyncReminders(context.Background(), updated)

	ctx.Printf("Saved %d reminder(s) for %s\n", updated.ReminderCount(), cli.HabitLabel(updated))
	for _, dn := range updated.DayNotifications {
		ctx.Printf("  %s\n", cli.RenderDayTimes(dn))
	}
	return nil
}

// WeekValues returns the editable text for each weekday, Monday first.
func WeekValues(h models.Habit) []*string {
	values := make([]*string, len(models.Days))
	for i, day := range models.Days {
		s := strings.Join(h.TimesFor(day), ", ")
		values[i] = &s
	}
	return values
}

// NewWeekForm builds one input per weekday bound to values.
func NewWeekForm(h models.Habit, values []*string) *huh.Form {
	fields := make([]huh.Field, 0, len(models.Days))
	for i, day := range models.Days {
		fields = append(fields, huh.NewInput().
			Title(day.Name()).
			Placeholder("e.g. 07:00, 18:30").
			Value(values[i]).
			Validate(validateTimes))
	}
	return huh.NewForm(
		huh.NewGroup(fields...).
			Title(cli.HabitLabel(h)).
			Description("Up to 5 times per day as HH:MM. Leave empty for no reminders."),
	).WithTheme(huh.ThemeDracula())
}

func validateTimes(s string) error {
	_, err := validation.NormalizeTimes(cli.SplitTimes(s))
	return err
}

// ApplyWeek turns the edited per-day text back into day notifications.
func ApplyWeek(values []*string) ([]models.DayNotification, error) {
	var dns []models.DayNotification
	for i, day := range models.Days {
		if i >= len(values) || values[i] == nil {
			continue
		}
		times := cli.SplitTimes(*values[i])
		if len(times) == 0 {
			continue
		}
		dns = append(dns, models.DayNotification{Day: day, Times: times})
	}
	return validation.NormalizeDayNotifications(dns)
}
