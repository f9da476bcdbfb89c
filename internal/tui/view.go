package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/activities/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateDashboard:
		content = docStyle.Render(m.dashboard.View())
	case constants.StateDetails:
		content = docStyle.Render(m.details.View())
	case constants.StateForm:
		content = docStyle.Render(m.viewForm())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	var crumb string
	switch m.state {
	case constants.StateDashboard:
		crumb = fmt.Sprintf("%d activities", m.dashboard.Len())
	case constants.StateDetails:
		crumb = "Details"
	case constants.StateForm:
		crumb = "Create activity"
		if m.formCtl != nil && m.formCtl.Editing() {
			crumb = "Edit activity"
		}
	case constants.StateConfirmDelete:
		crumb = "Delete"
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("Activities"), crumbStyle.Render(crumb))
}

func (m Model) viewForm() string {
	if m.form == nil {
		label := "Saving…"
		if m.formCtl != nil && m.formCtl.Loading() {
			label = "Loading activity…"
		}
		return m.spinner.View() + " " + label
	}
	if m.formError == "" {
		return m.form.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, dangerStyle.Render(m.formError), "", m.form.View())
}

func (m Model) viewConfirmDelete() string {
	title := m.deleteID
	if a, ok := m.snap.Get(m.deleteID); ok {
		title = a.Title
	}
	return lipgloss.Place(m.width, max(m.height-4, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q?", title)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

// viewStatus is the line under the content: progress, then toast, then the
// last failure when the list is empty.
func (m Model) viewStatus() string {
	switch {
	case m.snap.LoadingInitial:
		return m.spinner.View() + " Loading activities…"
	case m.snap.Submitting:
		return m.spinner.View() + " Submitting…"
	case m.toast != "":
		return toastStyle.Render(m.toast)
	case m.snap.LastError != nil && m.state == constants.StateDashboard && m.dashboard.Len() == 0:
		return warningStyle.Render("Could not reach the activity API. Press r to retry.")
	}
	return ""
}
