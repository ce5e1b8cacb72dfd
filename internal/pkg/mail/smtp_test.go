package mail

import (
	"context"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTP_RequiresHostPort(t *testing.T) {
	_, err := NewSMTP(SMTPConfig{Host: "smtp.local"})

	assert.ErrorIs(t, err, ErrSMTPHostPortRequired)
}

func TestSMTP_Send(t *testing.T) {
	// Arrange
	s, err := NewSMTP(SMTPConfig{Host: "smtp.local", Port: 2525, From: "noreply@isa.local"})
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotRaw string
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotRaw = addr, from, to, string(msg)
		return nil
	}

	// Act
	err = s.Send(context.Background(), Message{
		To:       []string{"support@isa.local"},
		Bcc:      []string{"audit@isa.local"},
		Subject:  "Falha no servidor",
		TextBody: "plain",
		HTMLBody: "<p>html</p>",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Equal(t, "noreply@isa.local", gotFrom)
	assert.Equal(t, []string{"support@isa.local", "audit@isa.local"}, gotTo)
	assert.Contains(t, gotRaw, "Subject: Falha no servidor\r\n")
	assert.Contains(t, gotRaw, "multipart/alternative; boundary=isaback-")
	assert.NotContains(t, gotRaw, "audit@isa.local")
	assert.True(t, strings.HasSuffix(gotRaw, "--"))
}

func TestSMTP_SendValidation(t *testing.T) {
	s, err := NewSMTP(SMTPConfig{Host: "smtp.local", Port: 25})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrSMTPNoRecipients)
	assert.ErrorIs(t, s.Send(context.Background(), Message{To: []string{"a@b.co"}}), ErrSMTPNoSender)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Send(ctx, Message{To: []string{"a@b.co"}}), context.Canceled)
}

func TestDisabled(t *testing.T) {
	var m Mail = Disabled{}

	assert.ErrorIs(t, m.Send(context.Background(), Message{To: []string{"a@b.co"}}), ErrDisabled)
	assert.NoError(t, m.Close())
}
