package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/clock"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"github.com/shandysiswandi/isaback/internal/pkg/hash"
	"github.com/shandysiswandi/isaback/internal/pkg/idempotency"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/jwt"
	"github.com/shandysiswandi/isaback/internal/settings"
	"github.com/shandysiswandi/isaback/internal/shared/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 3, 0, 0, 0, time.UTC)

type seq struct {
	mu sync.Mutex
	n  int64
}

func (s *seq) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n
}

type constID string

func (c constID) Generate() string { return string(c) }

type fakeAuthz struct{ err error }

func (f fakeAuthz) Check(context.Context, string, string) (*jwt.Claims, error) {
	return &jwt.Claims{}, f.err
}

type fakeDB struct {
	users          map[string]entity.User
	establishments map[string]bool
	tokens         map[int64]entity.ResetToken
	lastFilter     entity.UserListFilter
	failGet        error
	failCreate     error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:          map[string]entity.User{},
		establishments: map[string]bool{"est-1": true, "est-2": true},
		tokens:         map[int64]entity.ResetToken{},
	}
}

func (f *fakeDB) GetUserByID(_ context.Context, id string) (*entity.User, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	u, ok := f.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetUserConflicts(_ context.Context, email, username, excludeID string) (bool, bool, error) {
	var e, n bool
	for id, u := range f.users {
		if id == excludeID {
			continue
		}
		e = e || u.Email == email
		n = n || u.Username == username
	}
	return e, n, nil
}

func (f *fakeDB) GetUserList(_ context.Context, filter entity.UserListFilter) ([]entity.User, int64, error) {
	f.lastFilter = filter
	out := make([]entity.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeDB) CountEstablishments(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if f.establishments[id] {
			n++
		}
	}
	return n, nil
}

func (f *fakeDB) GetResetTokenByHash(_ context.Context, h string) (*entity.ResetToken, error) {
	for _, t := range f.tokens {
		if t.TokenHash == h {
			return &t, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) CreateUser(_ context.Context, u entity.User) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeDB) CreateResetToken(_ context.Context, t entity.ResetToken) error {
	f.tokens[t.ID] = t
	return nil
}

func (f *fakeDB) UpdateUser(_ context.Context, p entity.UserPatch) error {
	u, ok := f.users[p.ID]
	if !ok {
		return goerror.ErrNotFound
	}
	u.Username, u.Name, u.Email, u.CPF, u.Phone = p.Username, p.Name, p.Email, p.CPF, p.Phone
	if p.RoleID != nil {
		u.RoleID = *p.RoleID
	}
	if p.Establishments != nil {
		u.Establishments = nil
		for _, id := range p.Establishments {
			u.Establishments = append(u.Establishments, entity.Establishment{ID: id})
		}
	}
	f.users[p.ID] = u
	return nil
}

func (f *fakeDB) DeleteResetToken(_ context.Context, id int64) error {
	delete(f.tokens, id)
	return nil
}

func (f *fakeDB) DeleteExpiredResetTokens(_ context.Context, at time.Time) (int64, error) {
	var n int64
	for id, t := range f.tokens {
		if t.Expired(at) {
			delete(f.tokens, id)
			n++
		}
	}
	return n, nil
}

type fakeIDP struct {
	createErr error
	deleteErr error
	created   []string
	updated   []string
	deleted   []string
	resets    map[string]string
}

func (f *fakeIDP) CreateUser(_ context.Context, u entity.User, _ string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, u.Username)
	return "kc-" + u.Username, nil
}

func (f *fakeIDP) UpdateUser(_ context.Context, keycloakID string, _ entity.User) error {
	f.updated = append(f.updated, keycloakID)
	return nil
}

func (f *fakeIDP) ResetPassword(_ context.Context, keycloakID, password string) error {
	if f.resets == nil {
		f.resets = map[string]string{}
	}
	f.resets[keycloakID] = password
	return nil
}

func (f *fakeIDP) DeleteUser(_ context.Context, keycloakID string) error {
	f.deleted = append(f.deleted, keycloakID)
	return f.deleteErr
}

type brokenHash struct{}

func (brokenHash) Hash(string) ([]byte, error) { return nil, errors.New("hmac: empty secret") }
func (brokenHash) Verify(string, string) bool { return false }

type fakeJobs struct {
	mails []job.Notification[job.ForgotPasswordData]
	sms   []job.Notification[job.ForgotPasswordData]
}

func (f *fakeJobs) EnqueueMailForgotPassword(_ context.Context, n job.Notification[job.ForgotPasswordData]) error {
	f.mails = append(f.mails, n)
	return nil
}

func (f *fakeJobs) EnqueueSmsForgotPassword(_ context.Context, n job.Notification[job.ForgotPasswordData]) error {
	f.sms = append(f.sms, n)
	return nil
}

type fixture struct {
	uc     *Usecase
	db     *fakeDB
	idp    *fakeIDP
	jobs   *fakeJobs
	mailer *settings.Holder[settings.Mailer]
	sms    *settings.Holder[settings.SMS]
}

func newFixture(t *testing.T, authErr error, ide idempotency.Idempotency) *fixture {
	t.Helper()

	f := &fixture{
		db:     newFakeDB(),
		idp:    &fakeIDP{},
		jobs:   &fakeJobs{},
		mailer: settings.NewHolder[settings.Mailer](),
		sms:    settings.NewHolder[settings.SMS](),
	}
	f.uc = New(Dependency{
		RepoDB:      f.db,
		RepoIDP:     f.idp,
		RepoJob:     f.jobs,
		Authz:       fakeAuthz{err: authErr},
		Idempotency: ide,
		HMAC:        hash.NewHMACSHA256("test-secret"),
		UID:         &seq{},
		UUID:        constID("7d8f6a1c-4f0e-4b55-9d52-0a8b7e1c2f33"),
		OID:         constID("6650f1c2a1b2c3d4e5f60718"),
		Clock:       clock.Fixed(now),
		Instrument:  instrument.NewNoop(),
		Mailer:      f.mailer,
		SMS:         f.sms,
	})

	return f
}

func assertStatus(t *testing.T, err error, status int, msg string) {
	t.Helper()

	var ge *goerror.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, status, ge.StatusCode())
	assert.Equal(t, msg, ge.Msg())
}

func TestUserCreate(t *testing.T) {
	existing := entity.User{ID: "u-1", Username: "maria", Email: "maria@isa.local"}
	valid := UserCreateInput{
		Username:        "joao",
		Name:            "Joao Silva",
		Password:        "s3cret!",
		ConfirmPassword: "s3cret!",
		Email:           "Joao@Isa.Local ",
		CPF:             "12345678901",
		Phone:           "+5511999990000",
		RoleID:          "admin",
		Establishments:  []string{"est-1", "est-2", "est-1"},
	}

	tests := []struct {
		name       string
		mutate     func(in *UserCreateInput)
		idpErr     error
		authErr    error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "forbidden",
			authErr:    goerror.NewBusiness("Account not allowed", goerror.CodeForbidden),
			wantStatus: http.StatusForbidden,
			wantMsg:    "Account not allowed",
		},
		{
			name:       "password mismatch",
			mutate:     func(in *UserCreateInput) { in.ConfirmPassword = "other" },
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Passwords do not match",
		},
		{
			name:       "email taken",
			mutate:     func(in *UserCreateInput) { in.Email = "MARIA@isa.local" },
			wantStatus: http.StatusConflict,
			wantMsg:    "Email already in use",
		},
		{
			name:       "username taken",
			mutate:     func(in *UserCreateInput) { in.Username = "maria" },
			wantStatus: http.StatusConflict,
			wantMsg:    "Username already in use",
		},
		{
			name:       "unknown establishment",
			mutate:     func(in *UserCreateInput) { in.Establishments = []string{"est-1", "est-9"} },
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Establishment not found",
		},
		{
			name:       "identity provider conflict",
			idpErr:     goerror.ErrConflict,
			wantStatus: http.StatusConflict,
			wantMsg:    "User already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, tt.authErr, nil)
			f.db.users[existing.ID] = existing
			f.idp.createErr = tt.idpErr
			in := valid
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			// Act
			user, err := f.uc.UserCreate(context.Background(), in)

			// Assert
			assert.Nil(t, user)
			assertStatus(t, err, tt.wantStatus, tt.wantMsg)
			assert.Len(t, f.db.users, 1)
		})
	}

	t.Run("created", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		user, err := f.uc.UserCreate(context.Background(), valid)

		require.NoError(t, err)
		assert.Equal(t, "7d8f6a1c-4f0e-4b55-9d52-0a8b7e1c2f33", user.ID)
		assert.Equal(t, "kc-joao", user.KeycloakID)
		assert.Equal(t, "joao@isa.local", user.Email)
		assert.Equal(t, []string{"est-1", "est-2"}, user.EstablishmentIDs())
		assert.Equal(t, *user, f.db.users[user.ID])
		assert.Equal(t, []string{"joao"}, f.idp.created)
	})

	t.Run("identity provider failure is a server error", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.idp.createErr = errors.New("dial tcp: connection refused")

		_, err := f.uc.UserCreate(context.Background(), valid)

		kind, _ := goerror.Classify(err)
		assert.Equal(t, goerror.KindUnclassified, kind)
		assert.Empty(t, f.db.users)
		assert.Empty(t, f.idp.deleted)
	})

	t.Run("database failure removes the provider user", func(t *testing.T) {
		tests := []struct {
			name       string
			dbErr      error
			deleteErr  error
			wantStatus int
			wantMsg    string
		}{
			{
				name:       "transient error",
				dbErr:      errors.New("conn closed"),
				wantStatus: http.StatusInternalServerError,
			},
			{
				name:       "unique index race",
				dbErr:      goerror.ErrConflict,
				wantStatus: http.StatusConflict,
				wantMsg:    "User already exists",
			},
			{
				name:       "rollback failure keeps the original error",
				dbErr:      errors.New("conn closed"),
				deleteErr:  errors.New("keycloak down"),
				wantStatus: http.StatusInternalServerError,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Arrange
				f := newFixture(t, nil, nil)
				f.db.failCreate = tt.dbErr
				f.idp.deleteErr = tt.deleteErr

				// Act
				user, err := f.uc.UserCreate(context.Background(), valid)

				// Assert
				assert.Nil(t, user)
				require.Error(t, err)
				if tt.wantMsg != "" {
					assertStatus(t, err, tt.wantStatus, tt.wantMsg)
				} else {
					kind, _ := goerror.Classify(err)
					assert.Equal(t, goerror.KindUnclassified, kind)
				}
				assert.Equal(t, []string{"joao"}, f.idp.created)
				assert.Equal(t, []string{"kc-joao"}, f.idp.deleted)
				assert.Empty(t, f.db.users)
			})
		}
	})
}

func TestUserUpdate(t *testing.T) {
	seed := func(f *fixture) {
		f.db.users["u-1"] = entity.User{
			ID: "u-1", KeycloakID: "kc-1", Username: "maria", Email: "maria@isa.local", RoleID: "viewer",
			Establishments: []entity.Establishment{{ID: "est-1"}},
		}
		f.db.users["u-2"] = entity.User{ID: "u-2", Username: "joao", Email: "joao@isa.local"}
	}

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t, nil, nil)

		_, err := f.uc.UserUpdate(context.Background(), UserUpdateInput{ID: "nope", Username: "x", Email: "x@isa.local"})

		assertStatus(t, err, http.StatusNotFound, "User not found")
	})

	t.Run("email of another user", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		seed(f)

		_, err := f.uc.UserUpdate(context.Background(), UserUpdateInput{ID: "u-1", Username: "maria", Email: "joao@isa.local"})

		assertStatus(t, err, http.StatusConflict, "Email already in use")
		assert.Empty(t, f.idp.updated)
	})

	t.Run("keeps role and establishments when absent", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		seed(f)

		user, err := f.uc.UserUpdate(context.Background(), UserUpdateInput{
			ID: "u-1", Username: "maria", Name: "Maria Souza", Email: "maria@isa.local",
		})

		require.NoError(t, err)
		assert.Equal(t, "Maria Souza", user.Name)
		assert.Equal(t, "viewer", user.RoleID)
		assert.Equal(t, []string{"est-1"}, user.EstablishmentIDs())
		assert.Equal(t, []string{"kc-1"}, f.idp.updated)
	})

	t.Run("replaces role and establishments", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		seed(f)
		role := "admin"

		user, err := f.uc.UserUpdate(context.Background(), UserUpdateInput{
			ID: "u-1", Username: "maria", Email: "maria@isa.local", RoleID: &role, Establishments: []string{"est-2"},
		})

		require.NoError(t, err)
		assert.Equal(t, "admin", user.RoleID)
		assert.Equal(t, []string{"est-2"}, user.EstablishmentIDs())
	})
}

func TestUserList(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.db.users["u-1"] = entity.User{ID: "u-1"}

	out, err := f.uc.UserList(context.Background(), UserListInput{Search: "ma", Page: 3, Size: 500})

	require.NoError(t, err)
	assert.Equal(t, int32(100), out.Size)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, entity.UserListFilter{Search: "ma", Limit: 100, Offset: 200}, f.db.lastFilter)

	out, err = f.uc.UserList(context.Background(), UserListInput{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), out.Page)
	assert.Equal(t, int32(defaultPageSize), out.Size)
}

func TestUserDetail(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.db.users["u-1"] = entity.User{ID: "u-1", Username: "maria"}

	user, err := f.uc.UserDetail(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "maria", user.Username)

	_, err = f.uc.UserDetail(context.Background(), "u-2")
	assertStatus(t, err, http.StatusNotFound, "User not found")

	f.db.failGet = errors.New("conn reset")
	_, err = f.uc.UserDetail(context.Background(), "u-1")
	kind, _ := goerror.Classify(err)
	assert.Equal(t, goerror.KindUnclassified, kind)
}

func TestSessionCreate(t *testing.T) {
	user := entity.User{ID: "u-1", KeycloakID: "kc-1", Username: "maria", Name: "Maria", Email: "maria@isa.local", Phone: "+5511988887777"}

	t.Run("unknown email answers the same and sends nothing", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.mailer.Store(settings.Mailer{Active: true, Origin: "no-reply@isa.local"})

		err := f.uc.SessionCreate(context.Background(), SessionCreateInput{Email: "ghost@isa.local"})

		require.NoError(t, err)
		assert.Empty(t, f.db.tokens)
		assert.Empty(t, f.jobs.mails)
	})

	t.Run("stores hashed token and notifies active channels", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.db.users[user.ID] = user
		f.mailer.Store(settings.Mailer{Active: true, Origin: "no-reply@isa.local"})
		f.sms.Store(settings.SMS{Active: true, Sender: "ISA"})

		err := f.uc.SessionCreate(context.Background(), SessionCreateInput{Email: " Maria@isa.local"})

		require.NoError(t, err)
		require.Len(t, f.db.tokens, 1)
		token := f.db.tokens[1]
		assert.Equal(t, "u-1", token.UserID)
		assert.NotEqual(t, "6650f1c2a1b2c3d4e5f60718", token.TokenHash)
		assert.Equal(t, now.Add(defaultResetTokenTTL), token.ExpiresAt)

		data := job.ForgotPasswordData{Name: "Maria", Username: "maria", Token: "6650f1c2a1b2c3d4e5f60718"}
		assert.Equal(t, []job.Notification[job.ForgotPasswordData]{{To: "maria@isa.local", From: "no-reply@isa.local", Data: data}}, f.jobs.mails)
		assert.Equal(t, []job.Notification[job.ForgotPasswordData]{{To: "+5511988887777", From: "ISA", Data: data}}, f.jobs.sms)
	})

	t.Run("inactive channels are skipped", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		f.db.users[user.ID] = user

		require.NoError(t, f.uc.SessionCreate(context.Background(), SessionCreateInput{Email: user.Email}))

		assert.Len(t, f.db.tokens, 1)
		assert.Empty(t, f.jobs.mails)
		assert.Empty(t, f.jobs.sms)
	})

	t.Run("repeated requests are throttled", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		f := newFixture(t, nil, idempotency.New(client))
		f.db.users[user.ID] = user

		require.NoError(t, f.uc.SessionCreate(context.Background(), SessionCreateInput{Email: user.Email}))
		require.NoError(t, f.uc.SessionCreate(context.Background(), SessionCreateInput{Email: strings.ToUpper(user.Email)}))

		assert.Len(t, f.db.tokens, 1)
	})
}

func TestSession_HashFailure(t *testing.T) {
	user := entity.User{ID: "u-1", KeycloakID: "kc-1", Email: "maria@isa.local"}

	tests := []struct {
		name  string
		idemp bool
		call  func(uc *Usecase) error
	}{
		{
			name:  "create with rate limit",
			idemp: true,
			call: func(uc *Usecase) error {
				return uc.SessionCreate(context.Background(), SessionCreateInput{Email: user.Email})
			},
		},
		{
			name: "create without rate limit",
			call: func(uc *Usecase) error {
				return uc.SessionCreate(context.Background(), SessionCreateInput{Email: user.Email})
			},
		},
		{
			name: "reset",
			call: func(uc *Usecase) error {
				return uc.SessionReset(context.Background(), SessionResetInput{Token: "t", Password: "p", ConfirmPassword: "p"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var ide idempotency.Idempotency
			if tt.idemp {
				mr := miniredis.RunT(t)
				client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				t.Cleanup(func() { _ = client.Close() })
				ide = idempotency.New(client)
			}
			f := newFixture(t, nil, ide)
			f.uc.hmac = brokenHash{}
			f.db.users[user.ID] = user
			f.mailer.Store(settings.Mailer{Active: true, Origin: "no-reply@isa.local"})

			// Act
			err := tt.call(f.uc)

			// Assert
			require.Error(t, err)
			kind, _ := goerror.Classify(err)
			assert.Equal(t, goerror.KindUnclassified, kind)
			assert.Empty(t, f.db.tokens)
			assert.Empty(t, f.jobs.mails)
		})
	}
}

func TestSessionReset(t *testing.T) {
	const plain = "6650f1c2a1b2c3d4e5f60718"

	seed := func(t *testing.T, expiresAt time.Time) *fixture {
		t.Helper()
		f := newFixture(t, nil, nil)
		f.db.users["u-1"] = entity.User{ID: "u-1", KeycloakID: "kc-1", Email: "maria@isa.local"}
		tokenHash, err := f.uc.digest(plain)
		require.NoError(t, err)
		f.db.tokens[7] = entity.ResetToken{ID: 7, UserID: "u-1", TokenHash: tokenHash, ExpiresAt: expiresAt}
		return f
	}

	t.Run("password mismatch", func(t *testing.T) {
		f := seed(t, now.Add(time.Hour))

		err := f.uc.SessionReset(context.Background(), SessionResetInput{Token: plain, Password: "a", ConfirmPassword: "b"})

		assertStatus(t, err, http.StatusBadRequest, "Passwords do not match")
		assert.Len(t, f.db.tokens, 1)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := seed(t, now.Add(time.Hour))

		err := f.uc.SessionReset(context.Background(), SessionResetInput{Token: "nope", Password: "a", ConfirmPassword: "a"})

		assertStatus(t, err, http.StatusUnauthorized, "Invalid or expired token")
	})

	t.Run("expired token is dropped", func(t *testing.T) {
		f := seed(t, now)

		err := f.uc.SessionReset(context.Background(), SessionResetInput{Token: plain, Password: "a", ConfirmPassword: "a"})

		assertStatus(t, err, http.StatusUnauthorized, "Invalid or expired token")
		assert.Empty(t, f.db.tokens)
		assert.Empty(t, f.idp.resets)
	})

	t.Run("resets password once", func(t *testing.T) {
		f := seed(t, now.Add(time.Hour))
		in := SessionResetInput{Token: plain, Password: "n3w!", ConfirmPassword: "n3w!"}

		require.NoError(t, f.uc.SessionReset(context.Background(), in))
		err := f.uc.SessionReset(context.Background(), in)

		assert.Equal(t, map[string]string{"kc-1": "n3w!"}, f.idp.resets)
		assert.Empty(t, f.db.tokens)
		assertStatus(t, err, http.StatusUnauthorized, "Invalid or expired token")
	})
}

func TestPurgeExpiredResetTokens(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.db.tokens[1] = entity.ResetToken{ID: 1, ExpiresAt: now.Add(-time.Minute)}
	f.db.tokens[2] = entity.ResetToken{ID: 2, ExpiresAt: now.Add(time.Minute)}

	n, err := f.uc.PurgeExpiredResetTokens(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, f.db.tokens, int64(2))
}
