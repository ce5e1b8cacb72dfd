package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  env: production
  maintenance:
    endpoints: " /api/v1/users , ,/api/v1/sessions"
authz:
  policies:
    - admin:users:create
    - admin:users:update
jobs:
  timeout: 30s
  lock_seconds: 90
keycloak:
  public_key: aGVsbG8=
sms:
  headers: "X-Api-Key:abc, X-Tenant:isa"
`

func TestViper(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.GetString("app.env"))
	assert.Equal(t, []string{"/api/v1/users", "/api/v1/sessions"}, cfg.GetArray("app.maintenance.endpoints"))
	assert.Equal(t, []string{"admin:users:create", "admin:users:update"}, cfg.GetArray("authz.policies"))
	assert.Nil(t, cfg.GetArray("missing.key"))
	assert.Equal(t, 30*time.Second, cfg.GetDuration("jobs.timeout"))
	assert.Equal(t, 90*time.Second, cfg.GetSecond("jobs.lock_seconds"))
	assert.Equal(t, []byte("hello"), cfg.GetBinary("keycloak.public_key"))
	assert.Equal(t, map[string]string{"X-Api-Key": "abc", "X-Tenant": "isa"}, cfg.GetMap("sms.headers"))
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("ISA_APP_ENV", "development")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.GetString("app.env"))
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	_, err := NewViperFromBytes(" ", nil)

	assert.ErrorIs(t, err, ErrConfigTypeRequired)
}
