// Package tui is the interactive daily dashboard: today's check-ins and
// milestone progress for every habit.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/tui/components/habitlist"
	"github.com/julianstephens/microhabit/internal/tui/components/milestones"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateMilestones
	StateConfirmDelete
)

var tabTitles = []string{"Today", "Milestones"}

// Backend is what the dashboard reads and mutates. *cli.Context satisfies it.
type Backend interface {
	Now() time.Time
	Habits() ([]models.Habit, error)
	CheckIn(h models.Habit) (cli.CheckInResult, error)
	RemoveHabit(ctx context.Context, h models.Habit) error
}

type Model struct {
	backend         Backend
	historyDays     int
	state           SessionState
	previousState   SessionState
	keys            KeyMap
	help            help.Model
	habitList       habitlist.Model
	milestones      milestones.Model
	habits          []models.Habit
	habitToDeleteID string
	status          string
	quitting        bool
	width           int
	height          int
}

func NewModel(backend Backend, historyDays int) Model {
	if historyDays <= 0 {
		historyDays = 7
	}
	m := Model{
		backend:     backend,
		historyDays: historyDays,
		state:       StateToday,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitList:   habitlist.New(0, 0),
		milestones:  milestones.New(0, 0),
	}
	m.refresh()
	return m
}

// refresh reloads habits from the backend into both tabs.
func (m *Model) refresh() {
	habits, err := m.backend.Habits()
	if err != nil {
		m.status = "⚠ " + err.Error()
		return
	}
	m.habits = habits
	now := m.backend.Now()
	m.habitList.SetHabits(habits, now, m.historyDays)
	m.milestones.SetHabits(habits, now)
}

func (m Model) find(id string) (models.Habit, bool) {
	for _, h := range m.habits {
		if h.ID == id {
			return h, true
		}
	}
	return models.Habit{}, false
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		lk := m.habitList.Keys()
		keys = append(keys, lk.CheckIn, lk.Delete)
	case StateConfirmDelete:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	var actions []key.Binding
	switch m.state {
	case StateToday:
		lk := m.habitList.Keys()
		actions = []key.Binding{lk.CheckIn, lk.Delete}
	case StateConfirmDelete:
		actions = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
