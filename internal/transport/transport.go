// Package transport defines the contract of the external messaging
// platform that delivers push messages to the device. The platform's
// capabilities are consumed, not reimplemented: the host application wires
// a concrete implementation (or the in-process Bridge) at startup.
package transport

import "context"

// Message is one inbound push message as handed over by the messaging
// platform. Data values are always strings on the wire.
type Message struct {
	// MessageID is the transport-assigned identifier. May be empty; the
	// ingress listener synthesizes an id in that case.
	MessageID string

	// Title and Body are the optional display payload.
	Title string
	Body  string

	// Data is the custom key-value payload attached by the backend.
	Data map[string]string

	// SentTime is epoch milliseconds when the message was sent, or zero
	// when the transport did not report it.
	SentTime int64
}

// Transport is the messaging platform contract. Foreground, Background,
// and Opened deliver messages for the three app states; Initial performs
// the startup query covering the terminated-then-launched transition.
type Transport interface {
	// RequestPermission asks the platform for notification permission.
	RequestPermission(ctx context.Context) (bool, error)

	// Token retrieves the device registration token.
	Token(ctx context.Context) (string, error)

	// Foreground delivers messages received while the app is active.
	Foreground() <-chan Message

	// Background delivers messages received while the app is backgrounded.
	Background() <-chan Message

	// Opened delivers the message whose alert the user tapped to bring
	// the app to the foreground.
	Opened() <-chan Message

	// Initial returns the message that launched the app from a terminated
	// state, or nil when the app was launched normally.
	Initial(ctx context.Context) (*Message, error)
}
