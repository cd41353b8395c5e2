package habits

import (
	"github.com/julianstephens/microhabit/internal/achievements"
	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/streak"
)

type AchievementsCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or id (default: all habits)."`
}

func (c *AchievementsCmd) Run(ctx *cli.Context) error {
	if c.Habit != "" {
		h, err := ctx.FindHabit(c.Habit)
		if err != nil {
			return err
		}
		ctx.Println(cli.TitleStyle.Render(cli.HabitLabel(h)))
		best := h.LongestStreak
		for _, a := range achievements.All {
			mark := cli.MissedStyle.Render("○")
			if a.Streak <= best {
				mark = cli.DoneStyle.Render("●")
			}
			ctx.Printf("%s %s %-20s %3d days  %s\n", mark, a.Icon, a.Title, a.Streak, a.Message)
		}
		return nil
	}

	habits, err := ctx.Store.GetAllHabits()
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	now := ctx.Now()
	for _, h := range habits {
		current := streak.CurrentStreak(h, now)
		line := cli.HabitLabel(h)
		if a, ok := achievements.ForStreak(h.LongestStreak); ok {
			line += "  " + a.Icon + " " + a.Title
		}
		if next, ok := achievements.Next(current); ok {
			p := achievements.ProgressFor(current)
			ctx.Printf("%s  (next: %s at %d days, %.0f%%)\n", line, next.Title, next.Streak, p.Percentage)
		} else {
			ctx.Printf("%s  (all milestones unlocked)\n", line)
		}
	}
	return nil
}
