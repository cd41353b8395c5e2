package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/microhabit/internal/achievements"
	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/tui/components/habitlist"
)

// rows taken by tabs, summary, status and help
const chromeHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		height := max(msg.Height-chromeHeight-v, 0)
		m.habitList.SetSize(msg.Width-h, height)
		m.milestones.SetSize(msg.Width-h, height)
		return m, nil

	case habitlist.CheckInMsg:
		m.checkIn(msg.ID)
		return m, nil

	case habitlist.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.previousState = m.state
		m.state = StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		if m.state == StateConfirmDelete {
			return m.updateConfirmDelete(msg)
		}
		if m.state == StateToday && m.habitList.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + SessionState(len(tabTitles))) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.habitList, cmd = m.habitList.Update(msg)
	case StateMilestones:
		m.milestones, cmd = m.milestones.Update(msg)
	}
	return m, cmd
}

func (m *Model) checkIn(id string) {
	h, ok := m.find(id)
	if !ok {
		return
	}

	res, err := m.backend.CheckIn(h)
	switch {
	case err != nil:
		m.status = dangerStyle.Render("⚠ " + err.Error())
	case res.Already:
		m.status = fmt.Sprintf("%s is already checked in today", cli.HabitLabel(h))
	case res.Unlocked != nil:
		m.status = cli.RenderAchievement(*res.Unlocked)
	default:
		m.status = fmt.Sprintf("Checked in %s  %s", cli.HabitLabel(res.Habit), achievements.StreakMessage(res.Habit.Streak))
	}
	m.refresh()
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		if h, ok := m.find(m.habitToDeleteID); ok {
			if err := m.backend.RemoveHabit(context.Background(), h); err != nil {
				m.status = dangerStyle.Render("⚠ " + err.Error())
			} else {
				m.status = "Deleted habit: " + cli.HabitLabel(h)
			}
			m.refresh()
		}
	case key.Matches(msg, m.keys.Cancel):
	default:
		return m, nil
	}
	m.habitToDeleteID = ""
	m.state = m.previousState
	return m, nil
}
