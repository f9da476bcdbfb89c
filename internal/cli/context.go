// Package cli implements the activities commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/gateway"
	"github.com/julianstephens/activities/internal/logger"
	"github.com/julianstephens/activities/internal/models"
	"github.com/julianstephens/activities/internal/notifier"
	"github.com/julianstephens/activities/internal/store"
)

// Context is bound into every command's Run method.
type Context struct {
	Ctx      context.Context
	Gateway  gateway.Gateway
	Location *time.Location
	Out      io.Writer
	// Notifier defaults to the desktop tray with a log fallback.
	Notifier store.Notifier
}

// NewStore builds a store for one command. Later options win, so the TUI can
// replace the navigator and notifier with its bridge.
func (c *Context) NewStore(opts ...store.Option) *store.Store {
	n := c.Notifier
	if n == nil {
		n = notifier.NewChain(logger.Component("notifier"), notifier.NewTray())
	}
	base := []store.Option{
		store.WithLocation(c.Location),
		store.WithNotifier(n),
	}
	return store.New(c.Gateway, append(base, opts...)...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// printActivity writes the full record, as shown by show/create/edit.
func (c *Context) printActivity(a models.Activity) {
	local := a.Date.In(c.loc())
	c.printf("%s\n", headerStyle.Render(a.Title))
	c.printf("  ID:          %s\n", a.ID)
	c.printf("  Category:    %s\n", a.Category)
	c.printf("  When:        %s at %s\n", local.Format(constants.DisplayDateFormat), local.Format(constants.TimeFormat))
	c.printf("  Where:       %s, %s\n", a.Venue, a.City)
	c.printf("  Description: %s\n", a.Description)
}
