// Package alert defines the local alert presenter contract: the on-device
// banner surface that shows a notification and reports user taps back as
// click events.
package alert

// Importance mirrors the platform's notification importance levels.
type Importance int

const (
	ImportanceDefault Importance = iota
	ImportanceHigh
)

// Channel describes the platform notification channel alerts are posted
// on. Created once during initialization.
type Channel struct {
	ID          string
	Name        string
	Description string
	Importance  Importance
}

// Alert is one on-device banner. Data is correlation payload handed back
// on click, not displayed.
type Alert struct {
	ChannelID  string
	Title      string
	Message    string
	Importance Importance
	Data       map[string]string
}

// Click is the payload delivered when the user taps a presented alert.
// On some platforms only the displayed title survives the round trip, so
// both the correlation data and the title are carried.
type Click struct {
	Title string
	Data  map[string]string
}

// Presenter is the local alert surface. Show is fire-and-forget; delivery
// failures are the platform's concern.
type Presenter interface {
	CreateChannel(ch Channel) error
	Show(a Alert)

	// Clicks delivers taps on previously shown alerts.
	Clicks() <-chan Click
}
