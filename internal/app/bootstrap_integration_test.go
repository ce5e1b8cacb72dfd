//go:build integration

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const configTemplate = `
app:
  env: test
  server:
    max_goroutine: 8
    http:
      address: 127.0.0.1:0
instrument:
  enabled: false
  service_name: isaback
  log_level: error
database:
  url: %q
redis:
  url: %q
messaging:
  driver: memory
jobqueue:
  prefix: isa.jobs
hash:
  hmac:
    secret: integration
modules:
  identity:
    enabled: false
`

func startDependencies(t *testing.T) (dbURL, redisURL string) {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("isa"),
		postgres.WithUsername("isa"),
		postgres.WithPassword("isa"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, pg)
	require.NoError(t, err)

	dbURL, err = pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rd, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, rd)
	require.NoError(t, err)

	redisURL, err = rd.ConnectionString(ctx)
	require.NoError(t, err)

	return dbURL, redisURL
}

// newIntegrationApp runs the synchronous startup without the identity
// provider, which the test does not need.
func newIntegrationApp(t *testing.T) *App {
	t.Helper()

	dbURL, redisURL := startDependencies(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(configTemplate, dbURL, redisURL)), 0o600))
	t.Setenv("CONFIG_PATH", path)

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel}
	a.initConfig()
	a.initInstrument()
	a.initLibraries()
	a.initDatabase()
	a.initCache()
	a.initMail()
	a.initMessaging()
	a.initJobQueue()
	a.initAuthz()
	a.initSettings()
	a.initHTTPServer()
	a.initModules()
	a.initJobs()
	a.initClosers()

	t.Cleanup(func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		a.Stop(stopCtx)
	})

	return a
}

func TestBootstrap(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}

	// Arrange
	a := newIntegrationApp(t)
	require.False(t, a.Ready())

	// Act
	err := a.bootstrap(a.ctx)

	// Assert
	require.NoError(t, err)
	assert.True(t, a.Ready())
	for _, table := range []string{
		"mailer_configs",
		"mailer_destinataries",
		"sms_configs",
		"notification_templates",
		"notification_delivery_logs",
	} {
		assert.True(t, a.db.Migrator().HasTable(table), table)
	}
	assert.True(t, a.settings.Mailer.Loaded())
	assert.True(t, a.settings.SMS.Loaded())
	assert.False(t, a.settings.Mailer.Load().Active)
}
