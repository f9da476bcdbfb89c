// Package details renders a single activity.
package details

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/models"
)

type EditMsg struct {
	ID string
}

type DeleteMsg struct {
	ID string
}

type BackMsg struct{}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(8)
	badgeStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("0"))

	categoryColors = map[constants.Category]lipgloss.Color{
		constants.CategoryDrinks:  lipgloss.Color("214"),
		constants.CategoryCulture: lipgloss.Color("141"),
		constants.CategoryFilm:    lipgloss.Color("81"),
		constants.CategoryFood:    lipgloss.Color("150"),
		constants.CategoryMusic:   lipgloss.Color("205"),
		constants.CategoryTravel:  lipgloss.Color("117"),
	}
)

type KeyMap struct {
	Edit   key.Binding
	Delete key.Binding
	Back   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
	}
}

type Model struct {
	activity *models.Activity
	loc      *time.Location
	keys     KeyMap
	width    int
}

func New(loc *time.Location) Model {
	if loc == nil {
		loc = time.UTC
	}
	return Model{loc: loc, keys: DefaultKeyMap()}
}

func (m Model) Keys() KeyMap { return m.keys }

// SetActivity sets the record shown. nil shows a loading placeholder.
func (m *Model) SetActivity(a *models.Activity) {
	m.activity = a
}

func (m *Model) SetWidth(width int) {
	m.width = width
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	msg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return BackMsg{} }
	case m.activity == nil:
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		id := m.activity.ID
		return m, func() tea.Msg { return EditMsg{ID: id} }
	case key.Matches(msg, m.keys.Delete):
		id := m.activity.ID
		return m, func() tea.Msg { return DeleteMsg{ID: id} }
	}
	return m, nil
}

func (m Model) View() string {
	if m.activity == nil {
		return "\n  Loading activity…"
	}
	a := m.activity
	local := a.Date.In(m.loc)

	badge := badgeStyle.Background(categoryColors[a.Category]).Render(strings.ToUpper(string(a.Category)))
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Center, titleStyle.Render(a.Title), " ", badge),
		"",
		labelStyle.Render("When") + fmt.Sprintf("%s at %s", local.Format(constants.DisplayDateFormat), local.Format(constants.TimeFormat)),
		labelStyle.Render("Where") + fmt.Sprintf("%s, %s", a.Venue, a.City),
		"",
	}

	desc := lipgloss.NewStyle()
	if m.width > 0 {
		desc = desc.Width(m.width)
	}
	rows = append(rows, desc.Render(a.Description))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
