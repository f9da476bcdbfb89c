package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/activities/internal/constants"
	"github.com/julianstephens/activities/internal/gateway"
	"github.com/julianstephens/activities/internal/logger"
	"github.com/julianstephens/activities/internal/models"
	"github.com/julianstephens/activities/internal/store"
	"github.com/julianstephens/activities/internal/tui/components/dashboard"
)

type fakeGateway struct {
	mu         sync.Mutex
	activities map[string]models.Activity
	details    int
	err        error
}

func newFakeGateway(list ...models.Activity) *fakeGateway {
	f := &fakeGateway{activities: make(map[string]models.Activity)}
	for _, a := range list {
		f.activities[a.ID] = a
	}
	return f
}

func (f *fakeGateway) List(ctx context.Context) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Activity
	for _, a := range f.activities {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeGateway) Details(ctx context.Context, id string) (models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details++
	a, ok := f.activities[id]
	if !ok {
		return models.Activity{}, gateway.ErrNotFound
	}
	return a, nil
}

func (f *fakeGateway) Create(ctx context.Context, a models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.activities[a.ID] = a
	return nil
}

func (f *fakeGateway) Update(ctx context.Context, a models.Activity) error {
	return f.Create(ctx, a)
}

func (f *fakeGateway) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.activities, id)
	return nil
}

func sample(id string) models.Activity {
	return models.Activity{
		ID:          id,
		Title:       "Jazz brunch " + id,
		Description: "Live trio",
		Category:    constants.CategoryMusic,
		Date:        time.Date(2024, 8, 3, 11, 0, 0, 0, time.UTC),
		City:        "Glasgow",
		Venue:       "The Blue Arrow",
	}
}

func newTestModel(t *testing.T, gw gateway.Gateway) (Model, *store.Store, *Bridge) {
	t.Helper()
	b := NewBridge()
	t.Cleanup(b.Close)
	st := store.New(gw,
		store.WithNavigator(b),
		store.WithNotifier(b),
		store.WithLogger(logger.Discard()),
	)
	return New(context.Background(), st, b), st, b
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// nextBridged returns the next queued message of type T, skipping others.
func nextBridged[T tea.Msg](t *testing.T, b *Bridge) T {
	t.Helper()
	for {
		select {
		case msg := <-b.ch:
			if v, ok := msg.(T); ok {
				return v
			}
		default:
			var zero T
			t.Fatalf("no %T queued", zero)
			return zero
		}
	}
}

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path string
		want Route
		ok   bool
	}{
		{"/activities", Route{State: constants.StateDashboard}, true},
		{"/activities/", Route{State: constants.StateDashboard}, true},
		{"/activities/a1", Route{State: constants.StateDetails, ID: "a1"}, true},
		{"/manage/a1", Route{State: constants.StateForm, ID: "a1"}, true},
		{"/createActivity", Route{State: constants.StateForm}, true},
		{"/manage/", Route{}, false},
		{"/activities/a1/extra", Route{}, false},
		{"/elsewhere", Route{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := ParseRoute(tt.path)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseRoute(%q) = %+v, %v; want %+v, %v", tt.path, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestBridgeDeliversInOrder(t *testing.T) {
	b := NewBridge()
	defer b.Close()

	got := make(chan tea.Msg, 3)
	b.Attach(func(msg tea.Msg) { got <- msg })

	b.Navigate("/activities/a1")
	if err := b.Notify("hello"); err != nil {
		t.Fatal(err)
	}
	b.Publish(store.Snapshot{Version: 7})

	want := []tea.Msg{
		NavigateMsg{Path: "/activities/a1"},
		ToastMsg{Text: "hello"},
	}
	for _, w := range want {
		select {
		case msg := <-got:
			if msg != w {
				t.Fatalf("got %#v, want %#v", msg, w)
			}
		case <-time.After(time.Second):
			t.Fatal("bridge did not deliver")
		}
	}
	select {
	case msg := <-got:
		if snap, ok := msg.(SnapshotMsg); !ok || snap.Snapshot.Version != 7 {
			t.Fatalf("got %#v, want snapshot 7", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("bridge did not deliver the snapshot")
	}
}

func TestStaleSnapshotsAreDropped(t *testing.T) {
	m, _, _ := newTestModel(t, newFakeGateway())

	m, _ = update(t, m, SnapshotMsg{Snapshot: store.Snapshot{
		Version:    2,
		Activities: map[string]models.Activity{"a": sample("a"), "b": sample("b")},
	}})
	m, _ = update(t, m, SnapshotMsg{Snapshot: store.Snapshot{Version: 1}})

	if m.snap.Version != 2 || m.dashboard.Len() != 2 {
		t.Errorf("version %d with %d rows, want version 2 with 2 rows", m.snap.Version, m.dashboard.Len())
	}
}

func TestNavigateToDetails(t *testing.T) {
	gw := newFakeGateway(sample("a1"))
	m, st, _ := newTestModel(t, gw)

	m, cmd := update(t, m, NavigateMsg{Path: "/activities/a1"})
	if m.state != constants.StateDetails || m.detailID != "a1" {
		t.Fatalf("state %v detail %q", m.state, m.detailID)
	}
	if !strings.Contains(m.View(), "Loading activity") {
		t.Error("details should show a placeholder before the record arrives")
	}

	if msg := cmd().(opDoneMsg); msg.err != nil {
		t.Fatalf("load: %v", msg.err)
	}
	m, _ = update(t, m, SnapshotMsg{Snapshot: st.Snapshot()})
	if !strings.Contains(m.View(), "Jazz brunch a1") {
		t.Errorf("details view missing title:\n%s", m.View())
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	gw := newFakeGateway(sample("a1"))
	m, st, _ := newTestModel(t, gw)
	if err := st.LoadActivities(context.Background()); err != nil {
		t.Fatal(err)
	}
	m, _ = update(t, m, SnapshotMsg{Snapshot: st.Snapshot()})

	m, _ = update(t, m, dashboard.DeleteMsg{ID: "a1"})
	if m.state != constants.StateConfirmDelete {
		t.Fatalf("state = %v, want confirm", m.state)
	}
	if !strings.Contains(m.View(), "Jazz brunch a1") {
		t.Error("confirmation does not name the activity")
	}

	m, cmd := update(t, m, runes("n"))
	if m.state != constants.StateDashboard || cmd != nil {
		t.Fatalf("declining: state %v, cmd %v", m.state, cmd)
	}

	m, _ = update(t, m, dashboard.DeleteMsg{ID: "a1"})
	m, cmd = update(t, m, runes("y"))
	if m.state != constants.StateDashboard || cmd == nil {
		t.Fatalf("confirming: state %v, cmd %v", m.state, cmd)
	}
	if msg := cmd().(opDoneMsg); msg.op != "delete" || msg.err != nil {
		t.Fatalf("delete result %+v", msg)
	}
	if _, ok := st.GetActivity("a1"); ok {
		t.Error("activity still cached after delete")
	}
}

func TestToastClearsOnlyLatest(t *testing.T) {
	m, _, _ := newTestModel(t, newFakeGateway())

	m, _ = update(t, m, ToastMsg{Text: "one"})
	m, _ = update(t, m, ToastMsg{Text: constants.SubmitErrorMessage})
	m, _ = update(t, m, clearToastMsg{seq: 1})
	if m.toast != constants.SubmitErrorMessage {
		t.Fatalf("toast = %q after stale clear", m.toast)
	}
	if !strings.Contains(m.View(), constants.SubmitErrorMessage) {
		t.Error("toast not rendered")
	}
	m, _ = update(t, m, clearToastMsg{seq: 2})
	if m.toast != "" {
		t.Errorf("toast = %q, want cleared", m.toast)
	}
}

func TestCreateFormOpensAndCancels(t *testing.T) {
	m, _, b := newTestModel(t, newFakeGateway())

	m, cmd := update(t, m, NavigateMsg{Path: constants.RouteCreate})
	if m.state != constants.StateForm || m.formCtl == nil || m.formCtl.Editing() {
		t.Fatalf("state %v, controller %+v", m.state, m.formCtl)
	}
	m, _ = update(t, m, cmd())
	if m.form == nil {
		t.Fatal("form not built after load")
	}
	if !strings.Contains(m.View(), "Create activity") {
		t.Error("header does not say create")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	nav := nextBridged[NavigateMsg](t, b)
	if nav.Path != constants.RouteActivities {
		t.Errorf("cancel navigated to %q", nav.Path)
	}
	m, _ = update(t, m, nav)
	if m.state != constants.StateDashboard || m.formCtl != nil {
		t.Errorf("state %v after cancel", m.state)
	}
}

func TestEditFormLoadFailure(t *testing.T) {
	m, _, _ := newTestModel(t, newFakeGateway())

	m, cmd := update(t, m, NavigateMsg{Path: ManagePath("missing")})
	loaded := cmd().(formLoadedMsg)
	if !errors.Is(loaded.err, gateway.ErrNotFound) {
		t.Fatalf("load error = %v", loaded.err)
	}
	m, _ = update(t, m, loaded)
	if m.state != constants.StateDashboard || m.toast == "" {
		t.Errorf("state %v toast %q, want dashboard with toast", m.state, m.toast)
	}
}

func TestStaleFormLoadIgnored(t *testing.T) {
	m, _, _ := newTestModel(t, newFakeGateway(sample("a1")))

	m, first := update(t, m, NavigateMsg{Path: ManagePath("a1")})
	m, _ = update(t, m, NavigateMsg{Path: constants.RouteCreate})
	m, _ = update(t, m, first())
	if m.form != nil {
		t.Error("a load for a closed form rebuilt the current one")
	}
}

func TestSubmitFailureKeepsForm(t *testing.T) {
	gw := newFakeGateway()
	gw.err = errors.New("503")
	m, _, b := newTestModel(t, gw)

	m, cmd := update(t, m, NavigateMsg{Path: constants.RouteCreate})
	m, _ = update(t, m, cmd())

	ctl := m.formCtl
	ctl.Values.Title = "Quiz"
	ctl.Values.Description = "General knowledge"
	ctl.Values.Category = constants.CategoryDrinks
	ctl.Values.Date = "2024-08-03"
	ctl.Values.Time = "20:00"
	ctl.Values.City = "Cardiff"
	ctl.Values.Venue = "The Goat"
	m.form = nil

	msg := m.submit(ctl)().(submitDoneMsg)
	if msg.err == nil {
		t.Fatal("submit should fail")
	}
	m, _ = update(t, m, msg)
	if m.form == nil || m.formError != constants.SubmitErrorMessage {
		t.Errorf("form %v error %q", m.form, m.formError)
	}
	if ctl.Values.Title != "Quiz" {
		t.Error("values lost after failure")
	}
	if toast := nextBridged[ToastMsg](t, b); toast.Text != constants.SubmitErrorMessage {
		t.Errorf("store notified %q", toast.Text)
	}
}

func TestCreateSuccessNavigatesToDetails(t *testing.T) {
	m, st, b := newTestModel(t, newFakeGateway())

	if err := st.CreateActivity(context.Background(), sample("new")); err != nil {
		t.Fatal(err)
	}
	nav := nextBridged[NavigateMsg](t, b)
	m, _ = update(t, m, nav)
	m, _ = update(t, m, SnapshotMsg{Snapshot: st.Snapshot()})

	if m.state != constants.StateDetails || m.detailID != "new" {
		t.Fatalf("state %v detail %q", m.state, m.detailID)
	}
	if !strings.Contains(m.View(), "Jazz brunch new") {
		t.Error("details view missing the created activity")
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t, newFakeGateway())
	m, cmd := update(t, m, runes("q"))
	if !m.quitting || cmd == nil {
		t.Error("q did not quit")
	}
	if m.View() != "" {
		t.Error("view not cleared on quit")
	}
}
