// Package store holds the client-side activity cache. It is the single source of
// truth for activity data shown by the TUI and CLI, mediates every gateway call and
// publishes a Snapshot after each committed state transition.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/gateway"
	"github.com/julianstephens/activities/internal/logger"
	"github.com/julianstephens/activities/internal/models"
)

// Navigator receives navigation intents such as /activities/{id}.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Notifier surfaces a transient user-visible message.
type Notifier interface {
	Notify(text string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(text string) error

func (f NotifierFunc) Notify(text string) error { return f(text) }

// state is the mutable part of the store. It is only touched inside commit.
type state struct {
	registry   map[string]models.Activity
	selection  *models.Activity
	loading    int
	submitting int
	target     string
	lastErr    error
}

// Store is the activity cache. It is safe for concurrent use.
type Store struct {
	gateway   gateway.Gateway
	navigator Navigator
	notifier  Notifier
	log       *log.Logger
	loc       *time.Location

	// pubMu orders publication so subscribers see snapshots in commit order.
	pubMu sync.Mutex

	mu      sync.RWMutex
	st      state
	version uint64

	subs      map[int]func(Snapshot)
	nextSubID int
}

// Option configures a Store.
type Option func(*Store)

// WithNavigator sets where create and edit send the user on success.
func WithNavigator(n Navigator) Option {
	return func(s *Store) { s.navigator = n }
}

// WithNotifier sets how submit failures are shown to the user.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithLogger sets the logger gateway failures are reported to.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithLocation sets the timezone dates are normalized to and grouped in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New creates an empty store backed by gw.
func New(gw gateway.Gateway, opts ...Option) *Store {
	s := &Store{
		gateway: gw,
		log:     logger.Component("store"),
		loc:     time.UTC,
		st:      state{registry: make(map[string]models.Activity)},
		subs:    make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.navigator == nil {
		s.navigator = NavigatorFunc(func(string) {})
	}
	if s.notifier == nil {
		s.notifier = NotifierFunc(func(text string) error {
			s.log.Warn(text)
			return nil
		})
	}
	return s
}

// Subscribe registers fn to receive every snapshot committed from now on. fn is
// called once immediately with the current snapshot. Callbacks run on the
// committing goroutine and must not call mutating store methods synchronously.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = fn
	fn(s.Snapshot())

	return func() {
		s.pubMu.Lock()
		defer s.pubMu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	activities := make(map[string]models.Activity, len(s.st.registry))
	for id, a := range s.st.registry {
		activities[id] = a
	}
	var selection *models.Activity
	if s.st.selection != nil {
		sel := *s.st.selection
		selection = &sel
	}
	return Snapshot{
		Version:        s.version,
		Activities:     activities,
		Activity:       selection,
		LoadingInitial: s.st.loading > 0,
		Submitting:     s.st.submitting > 0,
		Target:         s.st.target,
		LastError:      s.st.lastErr,
		loc:            s.loc,
	}
}

// commit applies delta as one atomic transition and publishes the result.
func (s *Store) commit(delta func(st *state)) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	delta(&s.st)
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	for _, fn := range s.subs {
		fn(snap)
	}
}

// normalize pins the date to the store's location and drops the monotonic reading.
func (s *Store) normalize(a models.Activity) models.Activity {
	a.Date = a.Date.In(s.loc).Round(0)
	return a
}

func (s *Store) report(op string, err error) {
	s.log.Error("operation failed", "op", op, "error", err)
}

func (s *Store) notifySubmitError() {
	if err := s.notifier.Notify(constants.SubmitErrorMessage); err != nil {
		s.log.Warn("notification failed", "error", err)
	}
}

// ActivitiesByDate returns every cached activity grouped by calendar day.
func (s *Store) ActivitiesByDate() []DateGroup {
	return s.Snapshot().ActivitiesByDate()
}

// GetActivity is a pure cache lookup.
func (s *Store) GetActivity(id string) (models.Activity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.st.registry[id]
	return a, ok
}

// ClearActivity drops the current selection.
func (s *Store) ClearActivity() {
	s.commit(func(st *state) {
		st.selection = nil
	})
}

// LoadActivities fetches the full collection and merges it into the cache.
// Records missing from the response are kept.
func (s *Store) LoadActivities(ctx context.Context) error {
	s.commit(func(st *state) {
		st.loading++
		st.lastErr = nil
	})

	activities, err := s.gateway.List(ctx)
	if err != nil {
		s.commit(func(st *state) {
			st.loading--
			st.lastErr = err
		})
		s.report("load activities", err)
		return fmt.Errorf("load activities: %w", err)
	}

	s.commit(func(st *state) {
		for _, a := range activities {
			a = s.normalize(a)
			st.registry[a.ID] = a
		}
		st.loading--
	})
	return nil
}

// LoadActivity returns the cached activity for id, fetching it on a miss.
// Either way the result becomes the current selection.
func (s *Store) LoadActivity(ctx context.Context, id string) (models.Activity, error) {
	if a, ok := s.GetActivity(id); ok {
		s.commit(func(st *state) {
			st.selection = &a
		})
		return a, nil
	}

	s.commit(func(st *state) {
		st.loading++
		st.lastErr = nil
	})

	fetched, err := s.gateway.Details(ctx, id)
	if err != nil {
		s.commit(func(st *state) {
			st.loading--
			st.lastErr = err
		})
		s.report("load activity", err)
		return models.Activity{}, fmt.Errorf("load activity %s: %w", id, err)
	}

	a := s.normalize(fetched)
	s.commit(func(st *state) {
		st.registry[a.ID] = a
		st.selection = &a
		st.loading--
	})
	return a, nil
}

// CreateActivity persists a new activity and, on success, caches it, selects it
// and navigates to its detail view. On failure the cache and selection are
// untouched and the user is notified.
func (s *Store) CreateActivity(ctx context.Context, activity models.Activity) error {
	s.commit(func(st *state) {
		st.submitting++
		st.lastErr = nil
	})

	if err := s.gateway.Create(ctx, activity); err != nil {
		s.commit(func(st *state) {
			st.submitting--
			st.lastErr = err
		})
		s.notifySubmitError()
		s.report("create activity", err)
		return fmt.Errorf("create activity: %w", err)
	}

	a := s.normalize(activity)
	s.commit(func(st *state) {
		st.registry[a.ID] = a
		st.selection = &a
		st.submitting--
	})
	s.navigator.Navigate(a.DetailPath())
	return nil
}

// EditActivity persists changes to an existing activity. On failure the
// attempted record still becomes the current selection, unlike CreateActivity.
func (s *Store) EditActivity(ctx context.Context, activity models.Activity) error {
	s.commit(func(st *state) {
		st.submitting++
		st.lastErr = nil
	})

	a := s.normalize(activity)
	if err := s.gateway.Update(ctx, activity); err != nil {
		s.notifySubmitError()
		s.report("edit activity", err)
		s.commit(func(st *state) {
			st.selection = &a
			st.submitting--
			st.lastErr = err
		})
		return fmt.Errorf("edit activity %s: %w", activity.ID, err)
	}

	s.commit(func(st *state) {
		st.registry[a.ID] = a
		st.selection = &a
		st.submitting--
	})
	s.navigator.Navigate(a.DetailPath())
	return nil
}

// DeleteActivity removes id remotely and then from the cache. Target names id
// while the request is in flight.
func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	s.commit(func(st *state) {
		st.submitting++
		st.target = id
		st.lastErr = nil
	})

	err := s.gateway.Delete(ctx, id)

	s.commit(func(st *state) {
		st.submitting--
		// A later delete may have retargeted; leave its marker alone.
		if st.target == id {
			st.target = ""
		}
		if err != nil {
			st.lastErr = err
			return
		}
		delete(st.registry, id)
	})
	if err != nil {
		s.report("delete activity", err)
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	return nil
}
