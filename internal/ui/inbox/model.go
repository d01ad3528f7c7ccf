// Package inbox is the terminal view over the notification store: the
// records currently held in memory, with manual eviction and a way to
// replay a click through the router. It is the counterpart of the mobile
// app's notification debug panel.
package inbox

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/push-center/internal/alert"
	"github.com/nhle/push-center/internal/keys"
	"github.com/nhle/push-center/internal/model"
	"github.com/nhle/push-center/internal/store"
)

// RecordsLoadedMsg is sent when the record snapshot has been refreshed.
type RecordsLoadedMsg struct {
	Records []model.NotificationRecord
}

// ClickRequestedMsg asks the app to route a click for the given record.
type ClickRequestedMsg struct {
	Click alert.Click
}

// ClearedMsg is sent after both store tiers have been wiped.
type ClearedMsg struct{}

// Model is the inbox list view.
type Model struct {
	list   list.Model
	inbox  *store.Inbox
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates an inbox view over the given store.
func New(in *store.Inbox, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return Model{
		list:   l,
		inbox:  in,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Refresh returns a command that reloads the record snapshot.
func (m Model) Refresh() tea.Cmd {
	in := m.inbox
	return func() tea.Msg {
		return RecordsLoadedMsg{Records: in.Snapshot()}
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height)
}

// Update handles messages for the inbox view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RecordsLoadedMsg:
		items := make([]list.Item, len(msg.Records))
		for i, rec := range msg.Records {
			items[i] = RecordItem{Record: rec}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			return m, m.Refresh()

		case key.Matches(msg, m.keys.Open):
			if item, ok := m.list.SelectedItem().(RecordItem); ok {
				return m, m.requestClick(item.Record)
			}
			return m, nil

		case key.Matches(msg, m.keys.Evict):
			if item, ok := m.list.SelectedItem().(RecordItem); ok {
				return m, m.evict(item.Record.ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.ClearAll):
			return m, m.clearAll()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the inbox list.
func (m Model) View() string {
	return m.list.View()
}

// SelectedID returns the id of the currently focused record, or empty.
func (m Model) SelectedID() string {
	if item, ok := m.list.SelectedItem().(RecordItem); ok {
		return item.Record.ID
	}
	return ""
}

// requestClick builds the click payload the presented alert would have
// carried for this record.
func (m Model) requestClick(rec model.NotificationRecord) tea.Cmd {
	return func() tea.Msg {
		return ClickRequestedMsg{
			Click: alert.Click{
				Title: rec.Title,
				Data: map[string]string{
					"message_id": rec.ID,
					"user_info":  rec.Raw["user_info"],
				},
			},
		}
	}
}

// evict removes one record from both tiers and reloads.
func (m Model) evict(id string) tea.Cmd {
	in := m.inbox
	return func() tea.Msg {
		_ = in.Evict(context.Background(), id)
		return RecordsLoadedMsg{Records: in.Snapshot()}
	}
}

// clearAll wipes both tiers and reloads.
func (m Model) clearAll() tea.Cmd {
	in := m.inbox
	return func() tea.Msg {
		_ = in.ClearAll(context.Background())
		return RecordsLoadedMsg{Records: in.Snapshot()}
	}
}
