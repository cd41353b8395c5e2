package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/microhabit/internal/achievements"
	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/storage"
	"github.com/julianstephens/microhabit/internal/streak"
	"github.com/julianstephens/microhabit/internal/validation"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits with streaks and recent history."`
	Show    HabitShowCmd    `cmd:"" help:"Show details for a habit."`
	Edit    HabitEditCmd    `cmd:"" help:"Rename a habit or change its icon."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit and its reminders."`
	Checkin HabitCheckinCmd `cmd:"" help:"Check in a habit for today."`
}

type HabitAddCmd struct {
	Name   string   `arg:"" help:"Habit name."`
	Icon   string   `help:"Display icon." default:"✅"`
	Remind []string `help:"Reminder as Day=HH:MM[,HH:MM] (repeatable), e.g. M=07:00,18:30." sep:"none"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	name := strings.TrimSpace(c.Name)
	if err := validation.HabitName(name); err != nil {
		return err
	}
	if _, err := ctx.Store.GetHabitByName(name); err == nil {
		return fmt.Errorf("habit with name %q already exists", name)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	var dns []models.DayNotification
	for _, r := range c.Remind {
		day, times, err := cli.ParseDayTimes(r)
		if err != nil {
			return err
		}
		dns = append(dns, models.DayNotification{Day: day, Times: times})
	}
	dns, err := validation.NormalizeDayNotifications(dns)
	if err != nil {
		return err
	}

	now := ctx.Now()
	habit := models.Habit{
		ID:               uuid.New().String(),
		Name:             name,
		Icon:             c.Icon,
		History:          models.History{},
		DayNotifications: dns,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := ctx.SaveHabit(habit); err != nil {
		return err
	}
	res := ctx.SyncReminders(context.Background(), habit)

	ctx.Printf("Added habit: %s\n", cli.HabitLabel(habit))
	if res.Scheduled > 0 {
		ctx.Printf("  %d reminder(s) scheduled\n", res.Scheduled)
	}
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found. Add one with 'microhabit habit add <name>'.")
		return nil
	}

	now := ctx.Now()
	days := ctx.Settings.HistoryDays
	if days <= 0 {
		days = constants.DefaultHistoryDays
	}
	done := 0
	for _, h := range habits {
		status := "[ ]"
		if streak.IsCompletedToday(h, now) {
			status = "[x]"
			done++
		}
		ctx.Printf("%s %-24s %s  %s  %3d%%\n",
			status,
			cli.HabitLabel(h),
			cli.RenderHistory(streak.HistoryWindow(h, days, now)),
			cli.RenderStreak(streak.CurrentStreak(h, now)),
			streak.CompletionRate(h, days, now),
		)
	}
	ctx.Printf("\nCompleted today: %d/%d\n", done, len(habits))
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	now := ctx.Now()
	current := streak.CurrentStreak(h, now)
	longest := h.LongestStreak
	if run := streak.LongestRun(h); run > longest {
		longest = run
	}

	ctx.Println(cli.TitleStyle.Render(cli.HabitLabel(h)))
	ctx.Printf("%s %s\n", cli.LabelStyle.Render("ID:        "), h.ID)
	ctx.Printf("%s %s  %s\n", cli.LabelStyle.Render("Streak:    "), cli.RenderStreak(current), achievements.StreakMessage(current))
	ctx.Printf("%s %d\n", cli.LabelStyle.Render("Longest:   "), longest)
	ctx.Printf("%s %d%% (last %d days)\n", cli.LabelStyle.Render("Completion:"),
		streak.CompletionRate(h, constants.DefaultCompletionWindow, now), constants.DefaultCompletionWindow)
	ctx.Printf("%s %s\n", cli.LabelStyle.Render("History:   "),
		cli.RenderHistory(streak.HistoryWindow(h, constants.DefaultCompletionWindow, now)))
	ctx.Printf("%s %s\n", cli.LabelStyle.Render("Created:   "), h.CreatedAt.In(now.Location()).Format("2006-01-02 15:04"))

	if next, ok := achievements.Next(current); ok {
		p := achievements.ProgressFor(current)
		ctx.Printf("%s %s %s in %d day(s) (%.0f%%)\n", cli.LabelStyle.Render("Next:      "),
			next.Icon, next.Title, next.Streak-current, p.Percentage)
	}

	if len(h.DayNotifications) == 0 {
		ctx.Println(cli.LabelStyle.Render("Reminders:  none"))
		return nil
	}
	ctx.Println(cli.LabelStyle.Render("Reminders:"))
	for _, dn := range h.DayNotifications {
		ctx.Printf("  %s\n", cli.RenderDayTimes(dn))
	}
	return nil
}

type HabitEditCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Name  string `help:"New name."`
	Icon  string `help:"New icon."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if c.Name == "" && c.Icon == "" {
		return errors.New("nothing to change: pass --name and/or --icon")
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	updated := h.Clone()
	if c.Name != "" {
		name := strings.TrimSpace(c.Name)
		if err := validation.HabitName(name); err != nil {
			return err
		}
		if other, err := ctx.Store.GetHabitByName(name); err == nil && other.ID != h.ID {
			return fmt.Errorf("habit with name %q already exists", name)
		}
		updated.Name = name
	}
	if c.Icon != "" {
		updated.Icon = c.Icon
	}
	updated.UpdatedAt = ctx.Now()

	if err := ctx.SaveHabit(updated); err != nil {
		return err
	}
	// reminder text carries the name and icon
	if updated.ReminderCount() > 0 {
		ctx.SyncReminders(context.Background(), updated)
	}

	ctx.Printf("Updated habit: %s\n", cli.HabitLabel(updated))
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.RemoveHabit(context.Background(), h); err != nil {
		return err
	}

	ctx.Printf("Deleted habit: %s\n", cli.HabitLabel(h))
	return nil
}

type HabitCheckinCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *HabitCheckinCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	res, err := ctx.CheckIn(h)
	if err != nil {
		return err
	}
	if res.Already {
		ctx.Printf("%s is already checked in today. %s\n", cli.HabitLabel(h), cli.RenderStreak(h.Streak))
		return nil
	}

	ctx.Printf("Checked in %s  %s  %s\n", cli.HabitLabel(res.Habit),
		cli.RenderStreak(res.Habit.Streak), achievements.StreakMessage(res.Habit.Streak))
	if res.Unlocked != nil {
		ctx.Printf("\n%s\n", cli.RenderAchievement(*res.Unlocked))
	}
	return nil
}
