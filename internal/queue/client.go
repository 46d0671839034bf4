package queue

import "context"

// Client publishes run notifications.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Noop discards messages. Used when no queue is configured.
type Noop struct{}

// Send implements Client.
func (Noop) Send(context.Context, Message) error { return nil }

var _ Client = Noop{}
