package navigator

import (
	"sync"

	"go.uber.org/zap"
)

// Logged is a Navigator for headless and terminal contexts: navigation
// requests are logged and the latest one is retained for display.
type Logged struct {
	logger *zap.Logger

	mu   sync.Mutex
	last string
}

// NewLogged creates a Logged navigator writing through the given logger.
func NewLogged(logger *zap.Logger) *Logged {
	return &Logged{logger: logger}
}

// Navigate records the navigation request.
func (n *Logged) Navigate(route string, params Params) {
	n.logger.Info("navigate",
		zap.String("route", route),
		zap.Any("params", params),
	)

	n.mu.Lock()
	n.last = route
	n.mu.Unlock()
}

// LastRoute returns the most recent route requested, or empty.
func (n *Logged) LastRoute() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}
