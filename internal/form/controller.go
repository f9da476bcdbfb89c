package form

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/models"
	"github.com/julianstephens/activities/internal/store"
)

// ActivityStore is the part of the store the form needs.
type ActivityStore interface {
	LoadActivity(ctx context.Context, id string) (models.Activity, error)
	CreateActivity(ctx context.Context, activity models.Activity) error
	EditActivity(ctx context.Context, activity models.Activity) error
	Snapshot() store.Snapshot
}

// Controller drives one create or edit session. It is in edit mode when
// constructed with a non-empty id.
type Controller struct {
	store     ActivityStore
	navigator store.Navigator
	loc       *time.Location
	newID     func() string

	id      string
	loading atomic.Bool

	// Values is bound to the input widgets. initial is what Pristine compares against.
	Values  Values
	initial Values
}

type Option func(*Controller)

func WithNavigator(n store.Navigator) Option {
	return func(c *Controller) { c.navigator = n }
}

// WithLocation sets the timezone the date and time fields are read in.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithIDGenerator replaces the uuid generator used for new activities.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

// NewController creates a form session. Pass an empty id to create.
func NewController(st ActivityStore, id string, opts ...Option) *Controller {
	c := &Controller{
		store: st,
		id:    id,
		loc:   time.UTC,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.navigator == nil {
		c.navigator = store.NavigatorFunc(func(string) {})
	}
	return c
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Editing() bool { return c.id != "" }

func (c *Controller) Loading() bool { return c.loading.Load() }

// Load pre-fills the values in edit mode. It is a no-op when creating.
// Values must not be touched by other goroutines until Load returns.
func (c *Controller) Load(ctx context.Context) error {
	if !c.Editing() {
		return nil
	}

	c.loading.Store(true)
	defer c.loading.Store(false)

	a, err := c.store.LoadActivity(ctx, c.id)
	if err != nil {
		return err
	}
	c.Values = FromActivity(a, c.loc)
	c.initial = c.Values
	return nil
}

// Pristine reports whether the values are unchanged since the form opened.
func (c *Controller) Pristine() bool {
	return c.Values == c.initial
}

// Errors returns the current validation failures, or nil.
func (c *Controller) Errors() ValidationError {
	if err := c.Values.Validate(); err != nil {
		return err.(ValidationError)
	}
	return nil
}

// CanSubmit reports whether the submit action is enabled.
func (c *Controller) CanSubmit() bool {
	return !c.Loading() && !c.Pristine() && c.Errors() == nil
}

// Submitting mirrors the store's in-flight write flag.
func (c *Controller) Submitting() bool {
	return c.store.Snapshot().Submitting
}

// Submit validates the values and sends them to the store. A new activity gets
// a fresh uuid; an existing one is edited in place. Navigation on success is
// done by the store.
func (c *Controller) Submit(ctx context.Context) error {
	a, err := c.Values.ToActivity(c.loc)
	if err != nil {
		return err
	}

	if a.ID == "" {
		a.ID = c.newID()
		err = c.store.CreateActivity(ctx, a)
	} else {
		err = c.store.EditActivity(ctx, a)
	}
	if err != nil {
		return err
	}

	c.id = a.ID
	c.Values.ID = a.ID
	c.initial = c.Values
	return nil
}

// CancelPath is where Cancel navigates to.
func (c *Controller) CancelPath() string {
	if c.Values.ID != "" {
		return models.DetailPath(c.Values.ID)
	}
	if c.id != "" {
		return models.DetailPath(c.id)
	}
	return constants.RouteActivities
}

// Cancel leaves the form. It does nothing while the record is loading.
func (c *Controller) Cancel() {
	if c.Loading() {
		return
	}
	c.navigator.Navigate(c.CancelPath())
}
