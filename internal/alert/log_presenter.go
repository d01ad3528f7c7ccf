package alert

import "go.uber.org/zap"

// LogPresenter is a Presenter for headless and terminal contexts: alerts
// are logged instead of rendered, and clicks are injected programmatically
// (the inbox view does this when the user activates a stored record).
type LogPresenter struct {
	logger *zap.Logger
	clicks chan Click
}

// NewLogPresenter creates a LogPresenter writing through the given logger.
func NewLogPresenter(logger *zap.Logger) *LogPresenter {
	return &LogPresenter{
		logger: logger,
		clicks: make(chan Click, 16),
	}
}

// CreateChannel logs the channel registration.
func (p *LogPresenter) CreateChannel(ch Channel) error {
	p.logger.Info("notification channel created",
		zap.String("channel_id", ch.ID),
		zap.String("channel_name", ch.Name),
	)
	return nil
}

// Show logs the alert.
func (p *LogPresenter) Show(a Alert) {
	p.logger.Info("local alert",
		zap.String("channel_id", a.ChannelID),
		zap.String("title", a.Title),
		zap.String("message", a.Message),
		zap.String("message_id", a.Data["message_id"]),
	)
}

// Clicks returns the click channel.
func (p *LogPresenter) Clicks() <-chan Click { return p.clicks }

// Tap injects a click, dropping it if the channel is full.
func (p *LogPresenter) Tap(c Click) {
	select {
	case p.clicks <- c:
	default:
	}
}
