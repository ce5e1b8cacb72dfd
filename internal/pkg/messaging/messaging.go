package messaging

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrDestinationRequired is returned when the subject or topic is empty.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrHandlerRequired is returned when Consume gets a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
	// ErrGroupRequired is returned by drivers that need a consumer group.
	ErrGroupRequired = errors.New("messaging: consumer group is required")
)

// Messaging publishes and consumes messages.
type Messaging interface {
	io.Closer

	// Publish sends msg to destination (a NATS subject or Kafka topic).
	Publish(ctx context.Context, destination string, msg Message) error
	// Consume delivers messages from source to handler until ctx is done.
	// Consumers sharing a group split the messages between them.
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Message is a broker-agnostic message.
type Message struct {
	Key     []byte
	Body    []byte
	Headers map[string]string
	// Source is set on received messages to the subject or topic it came from.
	Source string
}

// Header returns the header value for key, or "".
func (m Message) Header(key string) string {
	return m.Headers[key]
}

// Handler processes a received message. Errors are logged; the message is not redelivered.
type Handler func(ctx context.Context, msg Message) error
