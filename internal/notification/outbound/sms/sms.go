package sms

import (
	"context"
	"sync"

	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/sms"
	"github.com/shandysiswandi/isaback/internal/settings"
	"go.opentelemetry.io/otel/codes"
)

// SMS sends through the gateway of the current SMS settings.
type SMS struct {
	settings *settings.Holder[settings.SMS]
	ins      instrument.Instrumentation
	// build is swapped in tests.
	build func(cfg sms.HTTPConfig) (sms.SMS, error)

	mu     sync.Mutex
	cached settings.SMS
	client sms.SMS
}

func New(s *settings.Holder[settings.SMS], ins instrument.Instrumentation) *SMS {
	return &SMS{
		settings: s,
		ins:      ins,
		build: func(cfg sms.HTTPConfig) (sms.SMS, error) {
			return sms.NewHTTPGateway(cfg)
		},
	}
}

func (s *SMS) Send(ctx context.Context, msg sms.Message) error {
	ctx, span := s.ins.Tracer("notification.outbound.sms").Start(ctx, "Send")
	defer span.End()

	client, err := s.current()
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

func (s *SMS) current() (sms.SMS, error) {
	cfg := s.settings.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil && s.cached == cfg {
		return s.client, nil
	}

	client, err := s.build(sms.HTTPConfig{URL: cfg.GatewayURL, APIKey: cfg.APIKey, From: cfg.Sender})
	if err != nil {
		return nil, err
	}

	s.cached, s.client = cfg, client
	return client, nil
}
