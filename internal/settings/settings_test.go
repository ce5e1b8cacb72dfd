package settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/database"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/jwt"
	"github.com/shandysiswandi/isaback/internal/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, Models()...))

	return NewStore(db, instrument.NewNoop()), db
}

func TestHolder(t *testing.T) {
	h := NewHolder[Mailer]()
	assert.False(t, h.Loaded())
	assert.Equal(t, Mailer{}, h.Load())

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() { h.Store(Mailer{Port: i}) })
		wg.Go(func() { _ = h.Load() })
	}
	wg.Wait()

	h.Store(Mailer{Active: true, Origin: "noreply@isa.local"})
	assert.True(t, h.Loaded())
	assert.Equal(t, "noreply@isa.local", h.Load().Origin)
}

func TestDestinataries_SupportAddress(t *testing.T) {
	assert.Equal(t, "", Destinataries{Support: "ops@isa.local"}.SupportAddress())
	assert.Equal(t, "ops@isa.local", Destinataries{Support: "ops@isa.local", SupportActive: true}.SupportAddress())
}

func TestLoader_MissingRowsAreInactive(t *testing.T) {
	store, _ := newStore(t)
	l := NewLoader(store)

	require.NoError(t, l.Reload(context.Background()))

	assert.True(t, l.Mailer.Loaded())
	assert.False(t, l.Mailer.Load().Active)
	assert.False(t, l.SMS.Load().Active)
	assert.Equal(t, "", l.Destinataries.Load().SupportAddress())
}

func TestLoader_LoadsRows(t *testing.T) {
	// Arrange
	store, db := newStore(t)
	require.NoError(t, db.Create(&mailerConfig{ID: 1, Active: true, Host: "smtp.isa.local", Port: 587, Username: "isa", Password: "pw", Origin: "noreply@isa.local"}).Error)
	require.NoError(t, db.Create(&mailerDestinataries{ID: 1, Support: "ops@isa.local", SupportActive: true}).Error)
	require.NoError(t, db.Create(&smsConfig{ID: 1, Active: true, Sender: "ISA", GatewayURL: "https://sms.isa.local", APIKey: "k"}).Error)
	l := NewLoader(store)

	// Act
	errMail := l.LoadMail(context.Background())
	errSMS := l.LoadSMS(context.Background())

	// Assert
	require.NoError(t, errMail)
	require.NoError(t, errSMS)
	assert.Equal(t, Mailer{Active: true, Host: "smtp.isa.local", Port: 587, Username: "isa", Password: "pw", Origin: "noreply@isa.local"}, l.Mailer.Load())
	assert.Equal(t, "ops@isa.local", l.Destinataries.Load().SupportAddress())
	assert.Equal(t, SMS{Active: true, Sender: "ISA", GatewayURL: "https://sms.isa.local", APIKey: "k"}, l.SMS.Load())
}

type failingStore struct{ err error }

func (f failingStore) GetMailer(context.Context) (Mailer, error)               { return Mailer{}, f.err }
func (f failingStore) GetDestinataries(context.Context) (Destinataries, error) { return Destinataries{}, f.err }
func (f failingStore) GetSMS(context.Context) (SMS, error)                     { return SMS{}, f.err }

func TestLoader_FailureKeepsPreviousValue(t *testing.T) {
	boom := errors.New("connection refused")
	l := NewLoader(failingStore{err: boom})
	l.Mailer.Store(Mailer{Active: true})

	err := l.Reload(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.True(t, l.Mailer.Load().Active)
}

type rolesVerifier struct{}

func (rolesVerifier) Verify(token string) (jwt.Claims, error) {
	return jwt.Claims{RealmAccess: jwt.RealmAccess{Roles: []string{token}}}, nil
}

func TestHTTPEndpoint(t *testing.T) {
	// Arrange
	l := NewLoader(failingStore{})
	l.Mailer.Store(Mailer{Active: true, Host: "smtp.isa.local", Password: "secret", Origin: "noreply@isa.local"})
	l.SMS.Store(SMS{Active: true, Sender: "ISA", APIKey: "secret"})

	az, err := authz.New([]string{"admin:settings:read"})
	require.NoError(t, err)

	r := router.NewRouter(router.Config{Verifier: rolesVerifier{}})
	RegisterHTTPEndpoint(r, l, az)

	get := func(target, role string) (int, string) {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set("Authorization", "Bearer "+role)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code, rec.Body.String()
	}

	// Act
	mailerCode, mailerBody := get("/api/v1/settings/mailer", "admin")
	smsCode, smsBody := get("/api/v1/settings/sms", "admin")
	deniedCode, _ := get("/api/v1/settings/sms", "clerk")

	// Assert
	require.Equal(t, http.StatusOK, mailerCode)
	var out struct {
		Data MailerResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(mailerBody), &out))
	assert.Equal(t, "smtp.isa.local", out.Data.Host)
	assert.True(t, out.Data.Active)
	assert.NotContains(t, mailerBody, "secret")

	assert.Equal(t, http.StatusOK, smsCode)
	assert.NotContains(t, smsBody, "secret")
	assert.Equal(t, http.StatusForbidden, deniedCode)
}
