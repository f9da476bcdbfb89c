// Package dashboard renders the activity list grouped by calendar day.
package dashboard

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/models"
	"github.com/julianstephens/activities/internal/store"
	"github.com/julianstephens/activities/internal/utils"
)

type SelectMsg struct {
	ID string
}

type AddMsg struct{}

type EditMsg struct {
	ID string
}

type DeleteMsg struct {
	ID string
}

type RefreshMsg struct{}

var (
	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	deletingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Italic(true)
)

// header is the non-selectable row that opens each day.
type header struct {
	day string
}

func (h header) FilterValue() string { return "" }

// Item is one activity row.
type Item struct {
	Activity models.Activity
	Deleting bool
}

func (i Item) FilterValue() string { return i.Activity.Title }

type delegate struct {
	loc *time.Location
}

func (d delegate) Height() int                             { return 1 }
func (d delegate) Spacing() int                            { return 0 }
func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	switch it := item.(type) {
	case header:
		fmt.Fprint(w, dayStyle.Render(utils.FormatDayHeader(it.day)))
	case Item:
		a := it.Activity
		line := fmt.Sprintf("%s  %s  %s",
			a.Date.In(d.loc).Format(constants.TimeFormat),
			a.Title,
			mutedStyle.Render(fmt.Sprintf("%s, %s · %s", a.Venue, a.City, a.Category)),
		)
		if it.Deleting {
			line += deletingStyle.Render("  deleting…")
		}
		if index == m.Index() {
			fmt.Fprint(w, selectedStyle.Render("> ")+line)
			return
		}
		fmt.Fprint(w, normalStyle.Render("  ")+line)
	}
}

type KeyMap struct {
	Open    key.Binding
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(loc *time.Location, width, height int) Model {
	if loc == nil {
		loc = time.UTC
	}
	l := list.New(nil, delegate{loc: loc}, width, height)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{list: l, keys: DefaultKeyMap()}
}

func (m Model) Keys() KeyMap { return m.keys }

// SetGroups replaces the rows. The selected activity stays selected when it
// is still present.
func (m *Model) SetGroups(groups []store.DateGroup, target string) {
	selected, hadSelection := m.SelectedID()

	var items []list.Item
	for _, g := range groups {
		items = append(items, header{day: g.Day})
		for _, a := range g.Activities {
			items = append(items, Item{Activity: a, Deleting: target != "" && a.ID == target})
		}
	}
	m.list.SetItems(items)

	idx := 0
	if hadSelection {
		for i, it := range items {
			if row, ok := it.(Item); ok && row.Activity.ID == selected {
				idx = i
				break
			}
		}
	}
	m.list.Select(nearestActivity(items, idx, 1))
}

// SelectedID returns the id of the highlighted activity.
func (m Model) SelectedID() (string, bool) {
	if row, ok := m.list.SelectedItem().(Item); ok {
		return row.Activity.ID, true
	}
	return "", false
}

// Len is the number of activities shown, headers excluded.
func (m Model) Len() int {
	n := 0
	for _, it := range m.list.Items() {
		if _, ok := it.(Item); ok {
			n++
		}
	}
	return n
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddMsg{} }
		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshMsg{} }
		case key.Matches(msg, m.keys.Open):
			if id, ok := m.SelectedID(); ok {
				return m, func() tea.Msg { return SelectMsg{ID: id} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Edit):
			if id, ok := m.SelectedID(); ok {
				return m, func() tea.Msg { return EditMsg{ID: id} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if row, ok := m.list.SelectedItem().(Item); ok && !row.Deleting {
				return m, func() tea.Msg { return DeleteMsg{ID: row.Activity.ID} }
			}
			return m, nil
		}
	}

	prev := m.list.Index()
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if idx := m.list.Index(); idx != prev {
		dir := 1
		if idx < prev {
			dir = -1
		}
		m.list.Select(nearestActivity(m.list.Items(), idx, dir))
	}
	return m, cmd
}

// nearestActivity walks from i in direction dir to the first activity row,
// falling back to the other direction at the edges.
func nearestActivity(items []list.Item, i, dir int) int {
	for j := i; j >= 0 && j < len(items); j += dir {
		if _, ok := items[j].(Item); ok {
			return j
		}
	}
	for j := i; j >= 0 && j < len(items); j -= dir {
		if _, ok := items[j].(Item); ok {
			return j
		}
	}
	return 0
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No activities yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
