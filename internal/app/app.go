package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/isaback/internal/identity"
	"github.com/shandysiswandi/isaback/internal/notification"
	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/clock"
	"github.com/shandysiswandi/isaback/internal/pkg/config"
	"github.com/shandysiswandi/isaback/internal/pkg/goroutine"
	"github.com/shandysiswandi/isaback/internal/pkg/hash"
	"github.com/shandysiswandi/isaback/internal/pkg/idempotency"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/jobqueue"
	"github.com/shandysiswandi/isaback/internal/pkg/jwt"
	"github.com/shandysiswandi/isaback/internal/pkg/keycloak"
	"github.com/shandysiswandi/isaback/internal/pkg/mail"
	"github.com/shandysiswandi/isaback/internal/pkg/messaging"
	"github.com/shandysiswandi/isaback/internal/pkg/router"
	"github.com/shandysiswandi/isaback/internal/pkg/uid"
	"github.com/shandysiswandi/isaback/internal/pkg/validator"
	"github.com/shandysiswandi/isaback/internal/settings"
	"go.uber.org/atomic"
	"gorm.io/gorm"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// ready turns true once the background bootstrap finished.
	ready atomic.Bool

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator *validator.V10Validator
	clock     clock.Clocker
	hmac      hash.Hash
	uid       uid.NumberID
	oid       uid.StringID
	uuid      uid.StringID

	// resources
	keycloak  *keycloak.Client
	verifier  jwt.Verifier
	dbPool    *pgxpool.Pool
	db        *gorm.DB
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	messaging messaging.Messaging
	queue     *jobqueue.Queue
	authz     *authz.Authorizer
	settings  *settings.Loader

	// modules
	identity     *identity.Module
	notification *notification.Module

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New runs the synchronous part of the startup and returns an App instance.
//
// Stateless middleware is mounted before the identity provider check, then
// every route is registered. Connecting the database and loading the tenant
// settings happen later, in the background, see Start.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initKeycloak()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initJobQueue()
	app.initAuthz()
	app.initSettings()
	app.initHTTPServer()
	app.initModules()
	app.initJobs()
	app.initClosers()

	return app
}

// Ready reports whether the background bootstrap finished.
func (a *App) Ready() bool {
	return a.ready.Load()
}
