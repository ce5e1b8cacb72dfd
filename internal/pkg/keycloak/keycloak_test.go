package keycloak

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRealm struct {
	key        *rsa.PrivateKey
	realmCalls atomic.Int32
	lastUser   User
	lastCred   Credential
	deleted    []string
}

func (f *fakeRealm) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /realms/isa", func(w http.ResponseWriter, _ *http.Request) {
		if f.realmCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		der, err := x509.MarshalPKIXPublicKey(&f.key.PublicKey)
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"realm":      "isa",
			"public_key": base64.StdEncoding.EncodeToString(der),
		})
	})
	mux.HandleFunc("POST /realms/isa/protocol/openid-connect/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"admin-token","token_type":"bearer","expires_in":300}`))
	})

	admin := http.NewServeMux()
	admin.HandleFunc("POST /admin/realms/isa/users", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastUser))
		if f.lastUser.Username == "taken" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.Header().Set("Location", "http://"+r.Host+"/admin/realms/isa/users/kc-1")
		w.WriteHeader(http.StatusCreated)
	})
	admin.HandleFunc("PUT /admin/realms/isa/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "kc-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastUser))
		w.WriteHeader(http.StatusNoContent)
	})
	admin.HandleFunc("PUT /admin/realms/isa/users/{id}/reset-password", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastCred))
		w.WriteHeader(http.StatusNoContent)
	})
	admin.HandleFunc("DELETE /admin/realms/isa/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "kc-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.deleted = append(f.deleted, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("/admin/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer admin-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		admin.ServeHTTP(w, r)
	}))

	return mux
}

func newTestClient(t *testing.T) (*Client, *fakeRealm) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	realm := &fakeRealm{key: key}
	srv := httptest.NewServer(realm.handler(t))
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL + "/", Realm: "isa", ClientID: "isaback", ClientSecret: "s3cr3t"})
	require.NoError(t, err)

	return c, realm
}

func TestNew_RequiresURLAndRealm(t *testing.T) {
	_, err := New(Config{Realm: "isa"})
	assert.ErrorIs(t, err, ErrConfigRequired)
}

func TestClient_RealmPublicKey(t *testing.T) {
	c, realm := newTestClient(t)

	got, err := c.RealmPublicKey(context.Background())

	require.NoError(t, err)
	assert.True(t, realm.key.PublicKey.Equal(got))
	assert.Equal(t, int32(2), realm.realmCalls.Load())
	assert.Equal(t, c.cfg.URL+"/realms/isa", c.Issuer())
}

func TestClient_CreateUser(t *testing.T) {
	c, realm := newTestClient(t)

	id, err := c.CreateUser(context.Background(), User{
		Username:    "jdoe",
		Email:       "jdoe@isa.local",
		Enabled:     true,
		Credentials: []Credential{{Type: "password", Value: "pw"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "kc-1", id)
	assert.Equal(t, "jdoe@isa.local", realm.lastUser.Email)

	_, err = c.CreateUser(context.Background(), User{Username: "taken"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestClient_UpdateUserAndResetPassword(t *testing.T) {
	c, realm := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.UpdateUser(ctx, "kc-1", User{Email: "new@isa.local", Enabled: true}))
	assert.Equal(t, "new@isa.local", realm.lastUser.Email)

	assert.ErrorIs(t, c.UpdateUser(ctx, "missing", User{}), ErrUserNotFound)

	require.NoError(t, c.ResetPassword(ctx, "kc-1", "n3w-pass"))
	assert.Equal(t, Credential{Type: "password", Value: "n3w-pass"}, realm.lastCred)
}

func TestClient_DeleteUser(t *testing.T) {
	c, realm := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.DeleteUser(ctx, "kc-1"))
	assert.Equal(t, []string{"kc-1"}, realm.deleted)

	assert.ErrorIs(t, c.DeleteUser(ctx, "missing"), ErrUserNotFound)
}
