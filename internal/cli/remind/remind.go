package remind

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/constants"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/reminders"
	"github.com/julianstephens/microhabit/internal/utils"
	"github.com/julianstephens/microhabit/internal/validation"
)

type RemindersCmd struct {
	Set   SetCmd   `cmd:"" help:"Set the reminder times for one weekday."`
	Clear ClearCmd `cmd:"" help:"Remove a habit's reminders."`
	List  ListCmd  `cmd:"" help:"List registered reminders."`
	Edit  EditCmd  `cmd:"" help:"Edit a habit's weekly reminders interactively."`
	Next  NextCmd  `cmd:"" help:"Show upcoming reminders."`
	Test  TestCmd  `cmd:"" help:"Send a test notification for a habit now."`
}

type SetCmd struct {
	Habit string   `arg:"" help:"Habit name or id."`
	Day   string   `arg:"" help:"Weekday (M, Tu, W, Th, F, Sa, Su or a day name)."`
	Times []string `arg:"" optional:"" help:"Times as HH:MM (up to 5). None removes the day."`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	day, err := models.ParseDay(c.Day)
	if err != nil {
		return fmt.Errorf("%w: %q", validation.ErrInvalidDay, c.Day)
	}
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	var times []string
	for _, t := range c.Times {
		times = append(times, cli.SplitTimes(t)...)
	}
	dns, err := validation.SetDayTimes(h, day, times)
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

	if got := updated.TimesFor(day); len(got) > 0 {
		ctx.Printf("%s: %s\n", cli.HabitLabel(updated), cli.RenderDayTimes(models.DayNotification{Day: day, Times: got}))
	} else {
		ctx.Printf("%s: no reminders on %s\n", cli.HabitLabel(updated), day.Name())
	}
	return nil
}

type ClearCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Day   string `help:"Only clear this weekday."`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	updated := h.Clone()
	if c.Day != "" {
		day, err := models.ParseDay(c.Day)
		if err != nil {
			return fmt.Errorf("%w: %q", validation.ErrInvalidDay, c.Day)
		}
		if updated.DayNotifications, err = validation.SetDayTimes(h, day, nil); err != nil {
			return err
		}
	} else {
		updated.DayNotifications = []models.DayNotification{}
	}
	updated.UpdatedAt = ctx.Now()

	if err := ctx.SaveHabit(updated); err != nil {
		return err
	}
	ctx.SyncReminders(context.Background(), updated)

	ctx.Printf("Cleared %d reminder(s) for %s\n", h.ReminderCount()-updated.ReminderCount(), cli.HabitLabel(updated))
	return nil
}

type ListCmd struct {
	Habit string `arg:"" optional:"" help:"Only list this habit's reminders."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if ctx.Sink == nil {
		return errors.New("no reminder sink configured")
	}
	filter := ""
	if c.Habit != "" {
		h, err := ctx.FindHabit(c.Habit)
		if err != nil {
			return err
		}
		filter = h.ID
	}

	scheduled, err := ctx.Sink.ListScheduled(context.Background())
	if err != nil {
		return err
	}

	now := ctx.Now()
	shown := 0
	for _, r := range scheduled {
		if filter != "" && r.Content.Payload.HabitID != filter {
			continue
		}
		next := reminders.NextFire(r.Trigger, now)
		ctx.Printf("%-40s %-9s %-8s %-9s next %s\n", r.Key,
			r.Content.Payload.Day.Name(), utils.FormatTime12h(r.Content.Payload.Time),
			r.Trigger.Kind, next.In(now.Location()).Format("Mon Jan 2 15:04"))
		shown++
	}
	if shown == 0 {
		ctx.Println("No reminders registered.")
	}
	return nil
}

type NextCmd struct {
	Limit int `help:"Number of reminders to show." default:"10"`
}

type upcoming struct {
	at    time.Time
	habit models.Habit
	day   models.Day
	time  string
}

func (c *NextCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}

	now := ctx.Now()
	var list []upcoming
	for _, h := range habits {
		for _, dn := range h.DayNotifications {
			wd, ok := dn.Day.Weekday()
			if !ok {
				continue
			}
			for _, hhmm := range dn.Times {
				hour, minute, err := utils.ParseTimeOfDay(hhmm)
				if err != nil {
					continue
				}
				list = append(list, upcoming{
					at:    reminders.NextOccurrence(wd, hour, minute, now),
					habit: h,
					day:   dn.Day,
					time:  hhmm,
				})
			}
		}
	}
	if len(list) == 0 {
		ctx.Println("No reminders configured.")
		return nil
	}

	sort.SliceStable(list, func(i, j int) bool { return list[i].at.Before(list[j].at) })
	if c.Limit > 0 && len(list) > c.Limit {
		list = list[:c.Limit]
	}
	for _, u := range list {
		ctx.Printf("%s  %-8s  %s  (in %s)\n", u.at.Format("Mon Jan 2"), utils.FormatTime12h(u.time),
			cli.HabitLabel(u.habit), u.at.Sub(now).Round(time.Minute))
	}
	if !ctx.Settings.NotificationsEnabled {
		ctx.Println(cli.WarningStyle.Render("Notifications are disabled in settings; these will not fire."))
	}
	return nil
}

type TestCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *TestCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if ctx.Deliverer == nil {
		return errors.New("no notification deliverer configured")
	}
	if !ctx.Deliverer.Available() {
		ctx.Printf("%s the tray app is not running; reminders will not be shown\n", cli.WarningStyle.Render("⚠"))
	}

	now := ctx.Now()
	content := reminders.ContentFor(h, models.DayFromWeekday(now.Weekday()), now.Format(constants.TimeFormat))
	if err := ctx.Deliverer.Deliver(context.Background(), content); err != nil {
		return fmt.Errorf("failed to send test notification: %w", err)
	}
	ctx.Printf("Sent: %s\n", content.Title)
	return nil
}
