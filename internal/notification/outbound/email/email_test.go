package email

import (
	"context"
	"testing"

	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/mail"
	"github.com/shandysiswandi/isaback/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct{ sent []mail.Message }

func (r *recorder) Send(_ context.Context, msg mail.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

func (*recorder) Close() error { return nil }

func TestMail_FallbackWithoutHost(t *testing.T) {
	fallback := &recorder{}
	holder := settings.NewHolder[settings.Mailer]()
	holder.Store(settings.Mailer{Active: true, Origin: "no-reply@isa.local"})
	m := New(fallback, holder, instrument.NewNoop())

	err := m.Send(context.Background(), mail.Message{To: []string{"a@isa.local"}})

	require.NoError(t, err)
	assert.Len(t, fallback.sent, 1)
}

func TestMail_BuildsSMTPFromSettings(t *testing.T) {
	holder := settings.NewHolder[settings.Mailer]()
	holder.Store(settings.Mailer{Active: true, Host: "smtp.isa.local", Port: 587, Origin: "no-reply@isa.local"})
	m := New(&recorder{}, holder, instrument.NewNoop())

	first, err := m.current()
	require.NoError(t, err)
	second, err := m.current()
	require.NoError(t, err)
	assert.Same(t, first, second)

	holder.Store(settings.Mailer{Active: true, Host: "smtp.isa.local"})
	_, err = m.current()
	assert.ErrorIs(t, err, mail.ErrSMTPHostPortRequired)
}
