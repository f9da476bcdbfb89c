// Package tui is the interactive terminal front end. It renders store snapshots
// and acts as the store's navigator and notifier through a Bridge.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/form"
	"github.com/julianstephens/activities/internal/store"
	"github.com/julianstephens/activities/internal/tui/components/dashboard"
	"github.com/julianstephens/activities/internal/tui/components/details"
)

type Model struct {
	ctx    context.Context
	store  *store.Store
	bridge *Bridge
	loc    *time.Location

	snap      store.Snapshot
	state     constants.SessionState
	keys      KeyMap
	help      help.Model
	spinner   spinner.Model
	dashboard dashboard.Model
	details   details.Model

	form      *huh.Form
	formCtl   *form.Controller
	formError string

	detailID string
	deleteID string
	returnTo constants.SessionState

	toast    string
	toastSeq int

	quitting bool
	width    int
	height   int
}

type Option func(*Model)

// WithLocation sets the timezone dates are displayed and entered in.
func WithLocation(loc *time.Location) Option {
	return func(m *Model) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// New builds the root model. st must have been created with bridge as its
// navigator and notifier.
func New(ctx context.Context, st *store.Store, bridge *Bridge, opts ...Option) Model {
	m := Model{
		ctx:     ctx,
		store:   st,
		bridge:  bridge,
		loc:     time.UTC,
		snap:    st.Snapshot(),
		state:   constants.StateDashboard,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.dashboard = dashboard.New(m.loc, 0, 0)
	m.details = details.New(m.loc)
	m.dashboard.SetGroups(m.snap.ActivitiesByDate(), m.snap.Target)
	return m
}

// Run starts the program and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, st *store.Store, bridge *Bridge, opts ...Option) error {
	p := tea.NewProgram(New(ctx, st, bridge, opts...), tea.WithAltScreen(), tea.WithContext(ctx))

	bridge.Attach(p.Send)
	defer bridge.Close()
	unsubscribe := st.Subscribe(bridge.Publish)
	defer unsubscribe()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadActivities())
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateDashboard:
		dk := m.dashboard.Keys()
		return []key.Binding{dk.Open, dk.Add, dk.Edit, dk.Delete, m.keys.Quit, m.keys.Help}
	case constants.StateDetails:
		dk := m.details.Keys()
		return []key.Binding{dk.Edit, dk.Delete, dk.Back, m.keys.Quit}
	case constants.StateConfirmDelete:
		return []key.Binding{m.keys.Confirm, m.keys.Deny}
	case constants.StateForm:
		return []key.Binding{m.keys.Back}
	}
	return []key.Binding{m.keys.Quit}
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Help, m.keys.Quit}
	if m.state != constants.StateDashboard {
		return [][]key.Binding{m.ShortHelp(), global}
	}
	dk := m.dashboard.Keys()
	navigation := []key.Binding{m.keys.Up, m.keys.Down, dk.Open}
	actions := []key.Binding{dk.Add, dk.Edit, dk.Delete, dk.Refresh}
	return [][]key.Binding{navigation, actions, global}
}

// refreshDetails shows the current selection when it is the routed record,
// otherwise the cached copy.
func (m *Model) refreshDetails() {
	if sel := m.snap.Activity; sel != nil && sel.ID == m.detailID {
		a := *sel
		m.details.SetActivity(&a)
		return
	}
	if a, ok := m.snap.Get(m.detailID); ok {
		m.details.SetActivity(&a)
		return
	}
	m.details.SetActivity(nil)
}

func (m Model) contentSize() (int, int) {
	h, v := docStyle.GetFrameSize()
	width := m.width - h
	height := m.height - v - lipgloss.Height(m.viewHeader()) - 3
	return max(width, 0), max(height, 0)
}
