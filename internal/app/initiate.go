package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/segmentio/kafka-go"
	"github.com/shandysiswandi/isaback/internal/identity"
	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/clock"
	"github.com/shandysiswandi/isaback/internal/pkg/config"
	"github.com/shandysiswandi/isaback/internal/pkg/database"
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
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(a.ctx, &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("app.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(a.config.GetString("hash.hmac.secret"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow

	objID, err := uid.NewObjectIDGenerator()
	if err != nil {
		slog.Error("failed to init uid string object_id", "error", err)
		os.Exit(1)
	}
	a.oid = objID
}

// initKeycloak builds the realm client and the bearer verifier from the realm key.
func (a *App) initKeycloak() {
	kc, err := keycloak.New(keycloak.Config{
		URL:          strings.TrimRight(a.config.GetString("keycloak.url"), "/"),
		Realm:        a.config.GetString("keycloak.realm"),
		ClientID:     a.config.GetString("keycloak.client_id"),
		ClientSecret: a.config.GetString("keycloak.client_secret"),
		Timeout:      a.config.GetSecond("keycloak.timeout_seconds"),
		MaxRetries:   uint64(a.config.GetUint("keycloak.max_retries")),
	})
	if err != nil {
		slog.Error("failed to init keycloak client", "error", err)
		os.Exit(1)
	}

	key, err := kc.RealmPublicKey(a.ctx)
	if err != nil {
		slog.Error("failed to fetch keycloak realm public key", "error", err)
		os.Exit(1)
	}

	verifier, err := jwt.NewRS256(jwt.Config{
		PublicKey: key,
		Issuer:    kc.Issuer(),
		Audiences: a.config.GetArray("keycloak.audiences"),
		Clock:     a.clock,
	})
	if err != nil {
		slog.Error("failed to init jwt verifier", "error", err)
		os.Exit(1)
	}

	a.keycloak = kc
	a.verifier = verifier
}

// initDatabase creates the pool and the gorm handle without connecting.
// The first round trip happens in bootstrap.
func (a *App) initDatabase() {
	pool, err := database.NewPool(a.ctx, database.Config{
		URL:               a.config.GetString("database.url"),
		MaxConns:          a.config.GetInt32("database.pool.max_conns"),
		MinConns:          a.config.GetInt32("database.pool.min_conns"),
		MaxConnLifetime:   a.config.GetSecond("database.pool.max_conn_lifetime_seconds"),
		MaxConnIdleTime:   a.config.GetSecond("database.pool.max_conn_idle_seconds"),
		HealthCheckPeriod: a.config.GetSecond("database.pool.health_check_period_seconds"),
	})
	if err != nil {
		slog.Error("failed to create DB connection pool", "error", err)
		os.Exit(1)
	}

	db, err := database.NewGorm(pool, database.NewLogger(slog.Default(), a.config.GetDuration("database.slow_query")))
	if err != nil {
		slog.Error("failed to open gorm", "error", err)
		os.Exit(1)
	}

	a.dbPool = pool
	a.db = db
}

func (a *App) initCache() {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	a.cacheConn = redis.NewClient(opt)
	a.idemp = idempotency.New(a.cacheConn)
}

// initMail builds the SMTP fallback used while the tenant mailer settings
// carry no host. Without mail.host the fallback refuses to send.
func (a *App) initMail() {
	smtp, err := mail.NewSMTP(mail.SMTPConfig{
		Host:     a.config.GetString("mail.host"),
		Port:     a.config.GetInt("mail.port"),
		Username: a.config.GetString("mail.username"),
		Password: a.config.GetString("mail.password"),
		From:     a.config.GetString("mail.from"),
	})
	if errors.Is(err, mail.ErrSMTPHostPortRequired) {
		slog.Warn("no fallback smtp configured, mail relies on tenant settings")
		a.mail = mail.Disabled{}
		return
	}
	if err != nil {
		slog.Error("failed to init mail", "error", err)
		os.Exit(1)
	}

	a.mail = smtp
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("messaging.nats.name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.PingInterval(a.config.GetSecond("messaging.nats.ping_interval_seconds")),
				nats.MaxPingsOutstanding(a.config.GetInt("messaging.nats.max_pings_outstanding")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
			Dialer: &kafka.Dialer{
				ClientID:  a.config.GetString("messaging.kafka.client_id"),
				Timeout:   a.config.GetSecond("messaging.kafka.dial_timeout_seconds"),
				DualStack: true,
			},
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initJobQueue() {
	a.queue = jobqueue.New(jobqueue.Config{
		Prefix:      a.config.GetString("jobqueue.prefix"),
		Group:       a.config.GetString("jobqueue.group"),
		Concurrency: a.config.GetInt("jobqueue.concurrency"),
		Timeout:     a.config.GetSecond("jobqueue.timeout_seconds"),
	}, jobqueue.Dependency{
		Messaging:   a.messaging,
		Idempotency: a.idemp,
		ID:          a.uid,
		Clock:       a.clock,
	})
}

func (a *App) initAuthz() {
	az, err := authz.New(a.config.GetArray("authz.policies"))
	if err != nil {
		slog.Error("failed to init authz", "error", err)
		os.Exit(1)
	}

	a.authz = az
}

// initSettings creates the empty holders; bootstrap fills them.
func (a *App) initSettings() {
	a.settings = settings.NewLoader(settings.NewStore(a.db, a.ins))
}

func (a *App) initHTTPServer() {
	public := map[string][]string{http.MethodGet: {"/health"}}
	for method, paths := range identity.PublicEndpoints {
		public[method] = append(public[method], paths...)
	}

	a.router = router.NewRouter(router.Config{
		Config:          a.config,
		UUID:            a.uuid,
		Verifier:        a.verifier,
		Instrument:      a.ins,
		Goroutine:       a.goroutine,
		Production:      a.config.GetString("app.env") == "production",
		BodyLimit:       a.config.GetInt64("app.server.body_limit_bytes"),
		PublicEndpoints: public,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}

	a.router.GET("/health", a.health)
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "JobQueue",
			fn: func(context.Context) error {
				return a.queue.Close()
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Mail",
			fn: func(context.Context) error {
				return a.mail.Close()
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				return a.cacheConn.Close()
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				sqlDB, err := a.db.DB()
				if err == nil {
					err = sqlDB.Close()
				}
				a.dbPool.Close()

				return err
			},
		},
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
