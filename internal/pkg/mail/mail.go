package mail

import (
	"context"
	"errors"
	"io"
)

// Message is an email payload.
type Message struct {
	// From overrides the sender configured on the provider.
	From string
	To   []string
	Cc   []string
	Bcc  []string

	Subject string
	// TextBody and HTMLBody may both be set; the message is then multipart/alternative.
	TextBody string
	HTMLBody string
}

func (m Message) recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// ErrDisabled is returned by Disabled.
var ErrDisabled = errors.New("mail: no provider configured")

// Disabled is the provider used when no SMTP server is configured.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) error { return ErrDisabled }

func (Disabled) Close() error { return nil }
