package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/activities/internal/store"
)

// SnapshotMsg carries a committed store state into the event loop.
type SnapshotMsg struct {
	Snapshot store.Snapshot
}

// NavigateMsg asks the TUI to switch to a route.
type NavigateMsg struct {
	Path string
}

// ToastMsg shows a transient message at the bottom of the screen.
type ToastMsg struct {
	Text string
}

// Bridge forwards store callbacks to a running program in order. It satisfies
// store.Navigator and store.Notifier, and Publish can be passed to
// Store.Subscribe. Callbacks never wait on the event loop unless the queue is full.
type Bridge struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

func NewBridge() *Bridge {
	return &Bridge{
		ch:   make(chan tea.Msg, 64),
		done: make(chan struct{}),
	}
}

// Attach starts delivering queued messages to send, usually tea.Program.Send.
func (b *Bridge) Attach(send func(tea.Msg)) {
	go func() {
		for {
			select {
			case msg := <-b.ch:
				send(msg)
			case <-b.done:
				return
			}
		}
	}()
}

// Close stops delivery. Later callbacks are dropped.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) post(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

func (b *Bridge) Navigate(path string) {
	b.post(NavigateMsg{Path: path})
}

func (b *Bridge) Notify(text string) error {
	b.post(ToastMsg{Text: text})
	return nil
}

func (b *Bridge) Publish(s store.Snapshot) {
	b.post(SnapshotMsg{Snapshot: s})
}
