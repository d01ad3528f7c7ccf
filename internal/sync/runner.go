// Package sync bridges the messaging transport's delivery callbacks and
// the presenter's click events onto the Bubble Tea runtime.
package sync

import (
	"context"
	gosync "sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/push-center/internal/alert"
	"github.com/nhle/push-center/internal/ingress"
	"github.com/nhle/push-center/internal/model"
	"github.com/nhle/push-center/internal/router"
	"github.com/nhle/push-center/internal/transport"
)

// RecordStoredMsg is a tea.Msg sent when a push message has been ingested.
type RecordStoredMsg struct {
	Record model.NotificationRecord
}

// ClickRoutedMsg is a tea.Msg sent after a click event has been routed.
type ClickRoutedMsg struct{}

// InitDoneMsg is a tea.Msg carrying the result of the initialization
// sequence.
type InitDoneMsg struct {
	Result ingress.InitResult
	Err    error
}

// Runner owns the background goroutine that drains transport and click
// channels, feeding the listener and router, and surfaces the results to
// the UI as messages.
type Runner struct {
	listener  *ingress.Listener
	router    *router.Router
	transport transport.Transport
	presenter alert.Presenter
	logger    *zap.Logger

	eventCh chan tea.Msg
	stopCh  chan struct{}

	mu      gosync.Mutex
	running bool
}

// New creates a Runner.
func New(
	listener *ingress.Listener,
	r *router.Router,
	tr transport.Transport,
	presenter alert.Presenter,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		listener:  listener,
		router:    r,
		transport: tr,
		presenter: presenter,
		logger:    logger,
		eventCh:   make(chan tea.Msg, 16),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the event loop goroutine and returns a command that
// subscribes the UI to runner events. Calling Start twice is a no-op.
func (r *Runner) Start() tea.Cmd {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	go r.loop()

	return tea.Batch(r.initialize(), r.waitForEvent())
}

// Stop halts the event loop.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	close(r.stopCh)
	r.running = false
}

// initialize returns a command running the startup sequence: permission,
// device token, and the initial-notification check covering the
// terminated-then-launched transition.
func (r *Runner) initialize() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		result, err := r.listener.Initialize(ctx)

		if msg, initErr := r.transport.Initial(ctx); initErr != nil {
			r.logger.Error("querying initial notification", zap.Error(initErr))
		} else if msg != nil {
			rec := r.listener.HandleInitial(ctx, *msg)
			r.router.Route(ctx, clickFor(rec, *msg))
		}

		return InitDoneMsg{Result: result, Err: err}
	}
}

// loop drains the delivery and click channels until stopped.
func (r *Runner) loop() {
	ctx := context.Background()

	for {
		select {
		case <-r.stopCh:
			return

		case msg := <-r.transport.Foreground():
			rec := r.listener.HandleForeground(ctx, msg)
			r.send(RecordStoredMsg{Record: rec})

		case msg := <-r.transport.Background():
			rec := r.listener.HandleBackground(ctx, msg)
			r.send(RecordStoredMsg{Record: rec})

		case msg := <-r.transport.Opened():
			// A tap on an OS-rendered alert: ingest so the record exists,
			// then route it like any other click.
			rec := r.listener.HandleInitial(ctx, msg)
			r.router.Route(ctx, clickFor(rec, msg))
			r.send(ClickRoutedMsg{})

		case click := <-r.presenter.Clicks():
			r.router.Route(ctx, click)
			r.send(ClickRoutedMsg{})
		}
	}
}

// clickFor builds the click payload for a message whose alert the OS
// rendered and the user tapped.
func clickFor(rec model.NotificationRecord, msg transport.Message) alert.Click {
	return alert.Click{
		Title: msg.Title,
		Data: map[string]string{
			"message_id": rec.ID,
			"user_info":  msg.Data["user_info"],
		},
	}
}

// send delivers a message to the UI without blocking the event loop.
func (r *Runner) send(msg tea.Msg) {
	select {
	case r.eventCh <- msg:
	default:
		// Drop if the UI is not keeping up.
	}
}

// waitForEvent returns a command that waits for the next runner event.
// The UI re-issues it after each received message to keep listening.
func (r *Runner) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-r.eventCh
		if !ok {
			return nil
		}
		return msg
	}
}

// WaitForNextEvent returns a command that waits for the next runner
// event. Call after processing a runner message.
func (r *Runner) WaitForNextEvent() tea.Cmd {
	return r.waitForEvent()
}
