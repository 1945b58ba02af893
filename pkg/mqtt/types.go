package mqtt

import (
	"context"
)

// MessageHandler is the callback invoked for received MQTT messages.
// Handlers run on their own goroutine and must not block indefinitely.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Client is a thin interface over the paho connection manager. It hides
// reconnect handling and re-subscription from callers.
type Client interface {
	// Start initiates the connection to the broker. It is non-blocking and
	// returns immediately; use AwaitConnection to wait for readiness.
	Start(ctx context.Context) error

	// Disconnect cleanly closes the connection.
	Disconnect(ctx context.Context)

	// Publish sends a message to the specified topic.
	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error

	// Subscribe registers a handler for a topic filter (wildcards allowed).
	// The subscription is re-established automatically after a reconnect.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	// AwaitConnection blocks until the client is connected to the broker.
	AwaitConnection(ctx context.Context) error

	// IsConnected reports whether the client currently holds a live connection.
	IsConnected() bool
}
