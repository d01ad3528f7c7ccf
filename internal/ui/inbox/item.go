package inbox

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/push-center/internal/model"
	"github.com/nhle/push-center/internal/theme"
)

// RecordItem wraps a NotificationRecord so it can be used in a
// bubbles/list.
type RecordItem struct {
	Record model.NotificationRecord
}

// FilterValue returns the string used for fuzzy filtering.
func (i RecordItem) FilterValue() string { return i.Record.Title }

// Title returns the item title for the list.
func (i RecordItem) Title() string { return i.Record.Title }

// Description returns a short summary line for the list.
func (i RecordItem) Description() string {
	return fmt.Sprintf("%s | %s", i.Record.Kind, relativeTime(i.Record.ReceivedAt))
}

// ItemDelegate implements list.ItemDelegate for rendering records.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single record line: kind badge, title, age.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(RecordItem)
	if !ok {
		return
	}

	rec := ri.Record
	badge := theme.KindBadgeStyle(rec.Kind).Render(
		fmt.Sprintf("[%-7s]", rec.Kind),
	)

	title := rec.Title
	if title == "" {
		title = rec.ID
	}

	line := fmt.Sprintf("%s %s  %s",
		badge, title,
		theme.HelpStyle.Render(relativeTime(rec.ReceivedAt)),
	)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line))
}

// relativeTime formats epoch milliseconds as a short age string.
func relativeTime(ms int64) string {
	if ms == 0 {
		return ""
	}

	age := time.Since(time.UnixMilli(ms))
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}
