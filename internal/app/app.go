// Package app is the root Bubble Tea model wiring the inbox view, the
// background runner, and the click router together.
package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/push-center/internal/keys"
	"github.com/nhle/push-center/internal/router"
	appsync "github.com/nhle/push-center/internal/sync"
	"github.com/nhle/push-center/internal/ui"
	"github.com/nhle/push-center/internal/ui/inbox"
)

// Model is the root application model.
type Model struct {
	layout    ui.Layout
	inboxView inbox.Model
	runner    *appsync.Runner
	router    *router.Router
	keys      *keys.KeyMap

	ready      bool
	permission string
	lastEvent  string
}

// New creates the root model.
func New(in inbox.Model, runner *appsync.Runner, r *router.Router, k *keys.KeyMap) Model {
	return Model{
		layout:     ui.NewLayout(80, 24),
		inboxView:  in,
		runner:     runner,
		router:     r,
		keys:       k,
		permission: "initializing...",
	}
}

// Init starts the background runner and loads the initial snapshot.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.runner.Start(), m.inboxView.Refresh())
}

// Update routes messages to the inbox view and reacts to runner events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.inboxView.SetSize(msg.Width, m.layout.ContentHeight())
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.runner.Stop()
			return m, tea.Quit
		}

	case appsync.InitDoneMsg:
		switch {
		case msg.Err != nil:
			m.permission = "init failed"
		case !msg.Result.Granted:
			m.permission = "permission denied"
		default:
			m.permission = "ready"
		}
		return m, m.runner.WaitForNextEvent()

	case appsync.RecordStoredMsg:
		m.lastEvent = fmt.Sprintf("received %s (%s)", msg.Record.ID, msg.Record.Kind)
		return m, tea.Batch(m.inboxView.Refresh(), m.runner.WaitForNextEvent())

	case appsync.ClickRoutedMsg:
		m.lastEvent = "click routed"
		return m, tea.Batch(m.inboxView.Refresh(), m.runner.WaitForNextEvent())

	case inbox.ClickRequestedMsg:
		r := m.router
		click := msg.Click
		routeCmd := func() tea.Msg {
			r.Route(context.Background(), click)
			return appsync.ClickRoutedMsg{}
		}
		return m, routeCmd
	}

	var cmd tea.Cmd
	m.inboxView, cmd = m.inboxView.Update(msg)
	return m, cmd
}

// View renders the header, the inbox list, and the status bar.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.layout.RenderHeader("push-center", m.permission)
	status := m.lastEvent
	if status == "" {
		status = "waiting for notifications"
	}
	statusBar := m.layout.RenderStatusBar(status)

	return header + "\n" + m.inboxView.View() + "\n" + statusBar
}
