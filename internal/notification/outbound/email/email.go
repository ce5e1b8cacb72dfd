package email

import (
	"context"
	"sync"

	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/mail"
	"github.com/shandysiswandi/isaback/internal/settings"
	"go.opentelemetry.io/otel/codes"
)

// Mail sends through the SMTP server of the current mailer settings, or
// through fallback when the settings carry no host.
type Mail struct {
	fallback mail.Mail
	mailer   *settings.Holder[settings.Mailer]
	ins      instrument.Instrumentation

	mu     sync.Mutex
	cached settings.Mailer
	client mail.Mail
}

func New(fallback mail.Mail, mailer *settings.Holder[settings.Mailer], ins instrument.Instrumentation) *Mail {
	return &Mail{fallback: fallback, mailer: mailer, ins: ins}
}

func (m *Mail) Send(ctx context.Context, msg mail.Message) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "Send")
	defer span.End()

	client, err := m.current()
	if err == nil {
		err = client.Send(ctx, msg)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (m *Mail) current() (mail.Mail, error) {
	cfg := m.mailer.Load()
	if cfg.Host == "" {
		return m.fallback, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil && m.cached == cfg {
		return m.client, nil
	}

	client, err := mail.NewSMTP(mail.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.Origin,
	})
	if err != nil {
		return nil, err
	}

	m.cached, m.client = cfg, client
	return client, nil
}
