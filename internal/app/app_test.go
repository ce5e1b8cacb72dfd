package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/isaback/internal/notification"
	"github.com/shandysiswandi/isaback/internal/pkg/jobqueue"
	"github.com/shandysiswandi/isaback/internal/pkg/router"
	"github.com/shandysiswandi/isaback/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mailer settings.Mailer
	sms    settings.SMS
	err    error
}

func (f fakeStore) GetMailer(context.Context) (settings.Mailer, error) { return f.mailer, f.err }

func (f fakeStore) GetDestinataries(context.Context) (settings.Destinataries, error) {
	return settings.Destinataries{Support: "support@isa.local", SupportActive: true}, f.err
}

func (f fakeStore) GetSMS(context.Context) (settings.SMS, error) { return f.sms, f.err }

func TestHealth(t *testing.T) {
	// Arrange
	a := &App{}
	r := router.NewRouter(router.Config{
		PublicEndpoints: map[string][]string{http.MethodGet: {"/health"}},
	})
	r.GET("/health", a.health)

	get := func() map[string]any {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var out map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	// Act
	before := get()
	a.ready.Store(true)
	after := get()

	// Assert
	assert.Equal(t, "success", before["status"])
	assert.Equal(t, "ok", before["message"])
	assert.Equal(t, map[string]any{"ready": false}, before["data"])
	assert.Equal(t, map[string]any{"ready": true}, after["data"])
	assert.True(t, a.Ready())
}

func TestScheduleJobsAt_ReloadsSettings(t *testing.T) {
	// Arrange
	a := &App{settings: settings.NewLoader(fakeStore{
		mailer: settings.Mailer{Active: true, Origin: "no-reply@isa.local"},
		sms:    settings.SMS{Active: true, Sender: "ISA"},
	})}

	// Act
	err := a.scheduleJobsAt(context.Background(), jobqueue.Job{Name: "ScheduleJobsAt"})

	// Assert
	require.NoError(t, err)
	assert.True(t, a.settings.Mailer.Load().Active)
	assert.Equal(t, "support@isa.local", a.settings.Destinataries.Load().SupportAddress())
	assert.Equal(t, "ISA", a.settings.SMS.Load().Sender)
}

func TestScheduleJobsAt_ReportsFailure(t *testing.T) {
	boom := errors.New("relation \"mailer_configs\" does not exist")
	a := &App{settings: settings.NewLoader(fakeStore{err: boom})}

	err := a.scheduleJobsAt(context.Background(), jobqueue.Job{Name: "ScheduleJobsAt"})

	assert.ErrorIs(t, err, boom)
	assert.False(t, a.settings.Mailer.Loaded())
}

func TestModels_WithoutIdentity(t *testing.T) {
	a := &App{}

	got := a.models()

	assert.Len(t, got, len(settings.Models())+len(notification.Models()))
}
