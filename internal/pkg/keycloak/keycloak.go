// Package keycloak talks to a Keycloak realm: it fetches the realm signing
// key used to verify bearer tokens and manages users through the admin API
// with a client-credentials service account.
package keycloak

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/isaback/internal/pkg/jwt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	// ErrConfigRequired is returned when URL or Realm are missing.
	ErrConfigRequired = errors.New("keycloak: url and realm are required")
	// ErrUserExists is returned when the username or email is taken in the realm.
	ErrUserExists = errors.New("keycloak: user already exists")
	// ErrUserNotFound is returned when the realm has no such user.
	ErrUserNotFound = errors.New("keycloak: user not found")
	// ErrNoLocation is returned when user creation answers without a Location header.
	ErrNoLocation = errors.New("keycloak: created user without location")
)

// Config configures the realm client.
type Config struct {
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
	// Timeout bounds each HTTP call. Defaults to 10s.
	Timeout time.Duration
	// MaxRetries bounds retries of the realm key fetch. Defaults to 5.
	MaxRetries uint64
	// HTTPClient is the base transport, mostly for tests.
	HTTPClient *http.Client
}

// User is the subset of the Keycloak UserRepresentation the service manages.
type User struct {
	ID            string              `json:"id,omitempty"`
	Username      string              `json:"username,omitempty"`
	Email         string              `json:"email,omitempty"`
	FirstName     string              `json:"firstName,omitempty"`
	LastName      string              `json:"lastName,omitempty"`
	Enabled       bool                `json:"enabled"`
	EmailVerified bool                `json:"emailVerified"`
	Attributes    map[string][]string `json:"attributes,omitempty"`
	Credentials   []Credential        `json:"credentials,omitempty"`
}

// Credential is a Keycloak CredentialRepresentation.
type Credential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

// Client is a Keycloak realm client.
type Client struct {
	cfg    Config
	public *http.Client
	admin  *http.Client
}

// New creates a realm client. Admin calls authenticate lazily.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.Realm == "" {
		return nil, ErrConfigRequired
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: cfg.Timeout}
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.URL + "/realms/" + url.PathEscape(cfg.Realm) + "/protocol/openid-connect/token",
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	admin := cc.Client(ctx)
	admin.Timeout = cfg.Timeout

	return &Client{cfg: cfg, public: base, admin: admin}, nil
}

// Issuer returns the token issuer of the realm.
func (c *Client) Issuer() string {
	return c.cfg.URL + "/realms/" + c.cfg.Realm
}

// RealmPublicKey fetches the realm signing key, retrying while Keycloak is unreachable.
func (c *Client) RealmPublicKey(ctx context.Context) (*rsa.PublicKey, error) {
	b := retry.NewExponential(500 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(c.cfg.MaxRetries, b)

	var encoded string
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Issuer(), nil)
		if err != nil {
			return err
		}

		resp, err := c.public.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("keycloak: realm endpoint returned %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("keycloak: realm endpoint returned %d", resp.StatusCode)
		}

		var realm struct {
			PublicKey string `json:"public_key"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&realm); err != nil {
			return err
		}
		encoded = realm.PublicKey
		return nil
	})
	if err != nil {
		return nil, err
	}

	return jwt.ParseRSAPublicKey(encoded)
}

// CreateUser creates a realm user and returns its id.
func (c *Client) CreateUser(ctx context.Context, u User) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, c.adminURL("users"), u)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", ErrNoLocation
	}

	return path.Base(loc), nil
}

// UpdateUser replaces the attributes of user id present in u.
func (c *Client) UpdateUser(ctx context.Context, id string, u User) error {
	resp, err := c.do(ctx, http.MethodPut, c.adminURL("users", id), u)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// ResetPassword sets a permanent password on user id.
func (c *Client) ResetPassword(ctx context.Context, id, password string) error {
	resp, err := c.do(ctx, http.MethodPut, c.adminURL("users", id, "reset-password"), Credential{
		Type:  "password",
		Value: password,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// DeleteUser removes user id from the realm.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, c.adminURL("users", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func (c *Client) adminURL(parts ...string) string {
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return c.cfg.URL + "/admin/realms/" + url.PathEscape(c.cfg.Realm) + "/" + strings.Join(parts, "/")
}

func (c *Client) do(ctx context.Context, method, target string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.admin.Do(req)
	if err != nil {
		return nil, fmt.Errorf("keycloak: %s %s: %w", method, target, err)
	}

	return resp, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return ErrUserExists
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("keycloak: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}
