package habitlist

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/microhabit/internal/cli"
	"github.com/julianstephens/microhabit/internal/models"
	"github.com/julianstephens/microhabit/internal/streak"
)

type CheckInMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

type Item struct {
	Habit   models.Habit
	Done    bool
	Streak  int
	Rate    int
	History []bool
}

func (i Item) Title() string {
	mark := "○ "
	if i.Done {
		mark = "✓ "
	}
	return mark + cli.HabitLabel(i.Habit)
}

func (i Item) Description() string {
	return fmt.Sprintf("%s  %s  %d%%", cli.RenderStreak(i.Streak), cli.RenderHistory(i.History), i.Rate)
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	CheckIn key.Binding
	Delete  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		CheckIn: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c", "check in"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	return Model{
		list: l,
		keys: DefaultKeyMap(),
	}
}

// SetHabits rebuilds the rows for the calendar day of now.
func (m *Model) SetHabits(habits []models.Habit, now time.Time, historyDays int) {
	items := make([]list.Item, len(habits))
	for i, h := range habits {
		items[i] = Item{
			Habit:   h,
			Done:    streak.IsCompletedToday(h, now),
			Streak:  streak.CurrentStreak(h, now),
			Rate:    streak.CompletionRate(h, historyDays, now),
			History: streak.HistoryWindow(h, historyDays, now),
		}
	}
	m.list.SetItems(items)
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.CheckIn):
			if i, ok := m.list.SelectedItem().(Item); ok && !i.Done {
				return m, func() tea.Msg { return CheckInMsg{ID: i.Habit.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No habits yet.\n  Add one with 'microhabit habit add'."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
