package transport

import (
	"context"
	"sync"
)

// Bridge is an in-process Transport fed by the host platform's binding
// layer. Emit methods drop messages when the corresponding channel is full
// rather than block the caller's delivery thread.
type Bridge struct {
	foreground chan Message
	background chan Message
	opened     chan Message

	mu      sync.Mutex
	initial *Message
	token   string
	granted bool
}

// NewBridge creates a Bridge with buffered delivery channels.
func NewBridge() *Bridge {
	return &Bridge{
		foreground: make(chan Message, 16),
		background: make(chan Message, 16),
		opened:     make(chan Message, 16),
	}
}

// SetToken records the device token returned to Token callers.
func (b *Bridge) SetToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

// SetPermissionGranted records the permission result returned to
// RequestPermission callers.
func (b *Bridge) SetPermissionGranted(granted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.granted = granted
}

// SetInitial records the launch message consumed by Initial.
func (b *Bridge) SetInitial(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.initial = msg
}

// EmitForeground delivers a foreground message.
func (b *Bridge) EmitForeground(msg Message) {
	select {
	case b.foreground <- msg:
	default:
	}
}

// EmitBackground delivers a background message.
func (b *Bridge) EmitBackground(msg Message) {
	select {
	case b.background <- msg:
	default:
	}
}

// EmitOpened delivers an opened-from-alert message.
func (b *Bridge) EmitOpened(msg Message) {
	select {
	case b.opened <- msg:
	default:
	}
}

// RequestPermission reports the recorded permission result.
func (b *Bridge) RequestPermission(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.granted, nil
}

// Token reports the recorded device token.
func (b *Bridge) Token(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.token, nil
}

// Foreground returns the foreground delivery channel.
func (b *Bridge) Foreground() <-chan Message { return b.foreground }

// Background returns the background delivery channel.
func (b *Bridge) Background() <-chan Message { return b.background }

// Opened returns the opened-from-alert delivery channel.
func (b *Bridge) Opened() <-chan Message { return b.opened }

// Initial returns the launch message, if one was recorded. The message is
// consumed: subsequent calls return nil.
func (b *Bridge) Initial(ctx context.Context) (*Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := b.initial
	b.initial = nil
	return msg, nil
}
