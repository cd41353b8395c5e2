package milestones

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/microhabit/internal/achievements"
	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/streak"
)

const barWidth = 20

var (
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	barFullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	barEmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	rowStyle = lipgloss.NewStyle().
			MarginBottom(1)
)

type Model struct {
	viewport viewport.Model
	content  string
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

// SetHabits renders milestone progress for each habit as of now.
func (m *Model) SetHabits(habits []models.Habit, now time.Time) {
	if len(habits) == 0 {
		m.content = "\n  No habits yet."
		m.viewport.SetContent(m.content)
		return
	}

	rows := make([]string, 0, len(habits))
	for _, h := range habits {
		rows = append(rows, renderRow(h, streak.CurrentStreak(h, now)))
	}
	m.content = lipgloss.JoinVertical(lipgloss.Left, rows...)
	m.viewport.SetContent(m.content)
}

func renderRow(h models.Habit, current int) string {
	header := fmt.Sprintf("%s  %s  best %d", nameStyle.Render(cli.HabitLabel(h)), cli.RenderStreak(current), h.LongestStreak)

	next, ok := achievements.Next(current)
	if !ok {
		return rowStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, "  All milestones unlocked"))
	}

	p := achievements.ProgressFor(current)
	filled := int(p.Percentage / 100 * barWidth)
	bar := barFullStyle.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
	line := fmt.Sprintf("  %s %3.0f%%  next: %s %s (%d days)", bar, p.Percentage, next.Icon, next.Title, next.Streak)
	return rowStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, line))
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
}
