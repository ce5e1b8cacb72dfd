package settings

import (
	"context"
	"errors"
	"log/slog"
)

type store interface {
	GetMailer(ctx context.Context) (Mailer, error)
	GetDestinataries(ctx context.Context) (Destinataries, error)
	GetSMS(ctx context.Context) (SMS, error)
}

// Loader fills holders from the store.
type Loader struct {
	store         store
	Mailer        *Holder[Mailer]
	Destinataries *Holder[Destinataries]
	SMS           *Holder[SMS]
}

// NewLoader creates a loader with empty holders.
func NewLoader(s store) *Loader {
	return &Loader{
		store:         s,
		Mailer:        NewHolder[Mailer](),
		Destinataries: NewHolder[Destinataries](),
		SMS:           NewHolder[SMS](),
	}
}

// LoadMail loads the mailer config and its destinataries.
func (l *Loader) LoadMail(ctx context.Context) error {
	m, err := l.store.GetMailer(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load mailer config", "error", err)
		return err
	}

	d, err := l.store.GetDestinataries(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load mailer destinataries", "error", err)
		return err
	}

	l.Mailer.Store(m)
	l.Destinataries.Store(d)
	slog.InfoContext(ctx, "mail config loaded", "active", m.Active, "support_active", d.SupportActive)

	return nil
}

// LoadSMS loads the SMS config.
func (l *Loader) LoadSMS(ctx context.Context) error {
	s, err := l.store.GetSMS(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load sms config", "error", err)
		return err
	}

	l.SMS.Store(s)
	slog.InfoContext(ctx, "sms config loaded", "active", s.Active)

	return nil
}

// Reload reloads every setting. Holders keep their previous value on failure.
func (l *Loader) Reload(ctx context.Context) error {
	return errors.Join(l.LoadMail(ctx), l.LoadSMS(ctx))
}
