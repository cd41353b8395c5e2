package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/microhabit/internal/achievements"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/utils"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	StreakStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	DoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	MissedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	AchievementStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("57")).
				Padding(0, 1).
				Bold(true)
)

// RenderHistory draws one dot per day, oldest first.
func RenderHistory(window []bool) string {
	var b strings.Builder
	for _, done := range window {
		if done {
			b.WriteString(DoneStyle.Render("●"))
		} else {
			b.WriteString(MissedStyle.Render("○"))
		}
	}
	return b.String()
}

// RenderStreak draws the streak badge, e.g. "🔥 12 days".
func RenderStreak(streak int) string {
	unit := "days"
	if streak == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%s %s", achievements.StreakEmoji(streak), StreakStyle.Render(fmt.Sprintf("%d %s", streak, unit)))
}

func RenderAchievement(a achievements.Achievement) string {
	return AchievementStyle.Render(fmt.Sprintf("%s %s", a.Icon, a.Title)) + " " + a.Message
}

// RenderDayTimes formats a day's reminders, e.g. "Monday: 7:00 AM, 6:30 PM".
func RenderDayTimes(dn models.DayNotification) string {
	times := make([]string, 0, len(dn.Times))
	for _, t := range dn.Times {
		times = append(times, utils.FormatTime12h(t))
	}
	return fmt.Sprintf("%s: %s", dn.Day.Name(), strings.Join(times, ", "))
}

// HabitLabel is the icon and name shown in listings.
func HabitLabel(h models.Habit) string {
	icon := h.Icon
	if icon == "" {
		icon = "•"
	}
	return icon + " " + h.Name
}
