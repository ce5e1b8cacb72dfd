package sms

import (
	"context"
	"testing"

	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/sms"
	"github.com/shandysiswandi/isaback/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	cfg  sms.HTTPConfig
	sent []sms.Message
}

func (r *recorder) Send(_ context.Context, msg sms.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestSMS_FollowsSettings(t *testing.T) {
	// Arrange
	holder := settings.NewHolder[settings.SMS]()
	holder.Store(settings.SMS{Active: true, Sender: "ISA", GatewayURL: "https://sms-a.local", APIKey: "k1"})

	var built []*recorder
	s := New(holder, instrument.NewNoop())
	s.build = func(cfg sms.HTTPConfig) (sms.SMS, error) {
		r := &recorder{cfg: cfg}
		built = append(built, r)
		return r, nil
	}

	// Act
	require.NoError(t, s.Send(context.Background(), sms.Message{To: "+1"}))
	require.NoError(t, s.Send(context.Background(), sms.Message{To: "+2"}))
	holder.Store(settings.SMS{Active: true, Sender: "ISA", GatewayURL: "https://sms-b.local", APIKey: "k2"})
	require.NoError(t, s.Send(context.Background(), sms.Message{To: "+3"}))

	// Assert
	require.Len(t, built, 2)
	assert.Equal(t, sms.HTTPConfig{URL: "https://sms-a.local", APIKey: "k1", From: "ISA"}, built[0].cfg)
	assert.Len(t, built[0].sent, 2)
	assert.Equal(t, "https://sms-b.local", built[1].cfg.URL)
	assert.Len(t, built[1].sent, 1)
}

func TestSMS_NoGateway(t *testing.T) {
	s := New(settings.NewHolder[settings.SMS](), instrument.NewNoop())

	err := s.Send(context.Background(), sms.Message{To: "+1"})

	assert.ErrorIs(t, err, sms.ErrGatewayURLRequired)
}
