package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/form"
	"github.com/julianstephens/activities/internal/logger"
	"github.com/julianstephens/activities/internal/models"
	"github.com/julianstephens/activities/internal/tui/components/dashboard"
	"github.com/julianstephens/activities/internal/tui/components/details"
)

type clearToastMsg struct {
	seq int
}

type formLoadedMsg struct {
	ctl *form.Controller
	err error
}

type submitDoneMsg struct {
	ctl *form.Controller
	err error
}

// opDoneMsg reports a finished store call. State changes arrive separately as
// snapshots, so it only matters for follow-up navigation.
type opDoneMsg struct {
	op  string
	id  string
	err error
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := m.contentSize()
		m.dashboard.SetSize(w, h)
		m.details.SetWidth(w)
		m.help.Width = msg.Width
		if m.form != nil {
			m.form = m.form.WithWidth(w)
		}
		return m, nil

	case SnapshotMsg:
		if msg.Snapshot.Version < m.snap.Version {
			return m, nil
		}
		m.snap = msg.Snapshot
		m.dashboard.SetGroups(m.snap.ActivitiesByDate(), m.snap.Target)
		m.refreshDetails()
		return m, nil

	case NavigateMsg:
		return m.navigate(msg.Path)

	case ToastMsg:
		cmd := m.showToast(msg.Text)
		return m, cmd

	case clearToastMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case formLoadedMsg:
		return m.handleFormLoaded(msg)

	case submitDoneMsg:
		return m.handleSubmitDone(msg)

	case opDoneMsg:
		if msg.err != nil {
			logger.Debug("tui operation failed", "op", msg.op, "id", msg.id, "error", msg.err)
		}
		return m, nil

	case dashboard.SelectMsg:
		return m.navigate(models.DetailPath(msg.ID))
	case dashboard.AddMsg:
		return m.navigate(constants.RouteCreate)
	case dashboard.EditMsg:
		return m.navigate(ManagePath(msg.ID))
	case details.EditMsg:
		return m.navigate(ManagePath(msg.ID))
	case dashboard.RefreshMsg:
		return m, m.loadActivities()
	case details.BackMsg:
		return m.navigate(constants.RouteActivities)
	case dashboard.DeleteMsg:
		return m.confirmDelete(msg.ID), nil
	case details.DeleteMsg:
		return m.confirmDelete(msg.ID), nil
	}

	// The form and the confirmation own the keyboard while they are open.
	switch m.state {
	case constants.StateForm:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case constants.StateDetails:
		m.details, cmd = m.details.Update(msg)
	}
	return m, cmd
}

func (m Model) navigate(path string) (tea.Model, tea.Cmd) {
	route, ok := ParseRoute(path)
	if !ok {
		logger.Warn("unknown route", "path", path)
		return m, nil
	}

	m.form, m.formCtl, m.formError = nil, nil, ""
	m.state = route.State

	switch route.State {
	case constants.StateDashboard:
		m.detailID = ""
		return m, m.clearSelection()
	case constants.StateDetails:
		m.detailID = route.ID
		m.refreshDetails()
		return m, m.loadActivity(route.ID)
	case constants.StateForm:
		ctl := form.NewController(m.store, route.ID,
			form.WithNavigator(m.bridge),
			form.WithLocation(m.loc),
		)
		m.formCtl = ctl
		return m, m.loadForm(ctl)
	}
	return m, nil
}

func (m Model) confirmDelete(id string) Model {
	m.deleteID = id
	m.returnTo = m.state
	m.state = constants.StateConfirmDelete
	return m
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		id := m.deleteID
		m.deleteID = ""
		// Deleting from the details view returns to the list, where the row
		// shows its progress.
		m.state = constants.StateDashboard
		m.detailID = ""
		return m, m.deleteActivity(id)
	case key.Matches(keyMsg, m.keys.Deny):
		m.deleteID = ""
		m.state = m.returnTo
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEsc:
			if m.formCtl != nil {
				m.formCtl.Cancel()
			}
			return m, nil
		}
	}

	// Still loading, or waiting for the submit to settle.
	if m.form == nil {
		return m, nil
	}

	f, cmd := m.form.Update(msg)
	if ff, ok := f.(*huh.Form); ok {
		m.form = ff
	}

	switch m.form.State {
	case huh.StateCompleted:
		ctl := m.formCtl
		if ctl.Pristine() {
			ctl.Cancel()
			return m, cmd
		}
		if errs := ctl.Errors(); errs != nil {
			m.formError = errs.Error()
			return m, m.rebuildForm()
		}
		m.form = nil
		m.formError = ""
		return m, tea.Batch(cmd, m.submit(ctl))
	case huh.StateAborted:
		m.formCtl.Cancel()
	}
	return m, cmd
}

func (m Model) handleFormLoaded(msg formLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.ctl != m.formCtl {
		return m, nil
	}
	if msg.err != nil {
		logger.Warn("could not load activity for editing", "id", msg.ctl.ID(), "error", msg.err)
		toast := m.showToast("Could not load activity")
		next, cmd := m.navigate(constants.RouteActivities)
		return next, tea.Batch(toast, cmd)
	}
	return m, m.rebuildForm()
}

// handleSubmitDone only has work to do on failure: success navigates through
// the store, which replaces the form.
func (m Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	if msg.ctl != m.formCtl || msg.err == nil {
		return m, nil
	}
	var verr form.ValidationError
	if errors.As(msg.err, &verr) {
		m.formError = verr.Error()
	} else {
		m.formError = constants.SubmitErrorMessage
	}
	return m, m.rebuildForm()
}

// showToast replaces the toast line and schedules its removal. A newer toast
// is not cleared by an older timer.
func (m *Model) showToast(text string) tea.Cmd {
	m.toastSeq++
	m.toast = text
	seq := m.toastSeq
	return tea.Tick(constants.ToastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{seq: seq}
	})
}

func (m *Model) rebuildForm() tea.Cmd {
	m.form = m.formCtl.Form()
	if w, _ := m.contentSize(); w > 0 {
		m.form = m.form.WithWidth(w)
	}
	return m.form.Init()
}

func (m Model) loadActivities() tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "list", err: st.LoadActivities(ctx)}
	}
}

func (m Model) loadActivity(id string) tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		_, err := st.LoadActivity(ctx, id)
		return opDoneMsg{op: "details", id: id, err: err}
	}
}

func (m Model) clearSelection() tea.Cmd {
	st := m.store
	return func() tea.Msg {
		st.ClearActivity()
		return opDoneMsg{op: "clear"}
	}
}

func (m Model) deleteActivity(id string) tea.Cmd {
	st, ctx := m.store, m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: "delete", id: id, err: st.DeleteActivity(ctx, id)}
	}
}

func (m Model) loadForm(ctl *form.Controller) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return formLoadedMsg{ctl: ctl, err: ctl.Load(ctx)}
	}
}

func (m Model) submit(ctl *form.Controller) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return submitDoneMsg{ctl: ctl, err: ctl.Submit(ctx)}
	}
}
