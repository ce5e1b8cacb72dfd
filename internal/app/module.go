package app

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/shandysiswandi/isaback/internal/identity"
	"github.com/shandysiswandi/isaback/internal/notification"
	"github.com/shandysiswandi/isaback/internal/pkg/jobqueue"
	"github.com/shandysiswandi/isaback/internal/settings"
	"github.com/shandysiswandi/isaback/internal/shared/job"
)

// scheduleCadence is how often ScheduleJobsAt runs.
const scheduleCadence = "1 days"

func (a *App) initModules() {
	settings.RegisterHTTPEndpoint(a.router, a.settings, a.authz)

	// notification goes first: it defines the processors the other modules enqueue to.
	notif, err := notification.New(notification.Dependency{
		DB:            a.db,
		Router:        a.router,
		Queue:         a.queue,
		Mail:          a.mail,
		Authz:         a.authz,
		Config:        a.config,
		Instrument:    a.ins,
		UID:           a.uid,
		Clock:         a.clock,
		Validator:     a.validator,
		Mailer:        a.settings.Mailer,
		Destinataries: a.settings.Destinataries,
		SMS:           a.settings.SMS,
	})
	if err != nil {
		slog.Error("failed to init module notification", "error", err)
		os.Exit(1)
	}
	a.notification = notif
	a.router.SetFailureNotifier(notif)

	if a.config.GetBool("modules.identity.enabled") {
		ident, err := identity.New(identity.Dependency{
			DB:          a.db,
			Router:      a.router,
			Queue:       a.queue,
			Keycloak:    a.keycloak,
			Authz:       a.authz,
			Idempotency: a.idemp,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			OID:         a.oid,
			HMAC:        a.hmac,
			Clock:       a.clock,
			Validator:   a.validator,
			Mailer:      a.settings.Mailer,
			SMS:         a.settings.SMS,
		})
		if err != nil {
			slog.Error("failed to init module identity", "error", err)
			os.Exit(1)
		}
		a.identity = ident
	}
}

// initJobs defines the daily schedule. Consuming starts in bootstrap.
func (a *App) initJobs() {
	a.queue.Define(job.ScheduleJobsAt, a.scheduleJobsAt)
}

// scheduleJobsAt is the daily maintenance run: it purges expired reset
// tokens and reloads the tenant settings.
func (a *App) scheduleJobsAt(ctx context.Context, _ jobqueue.Job) error {
	var errs []error
	if a.identity != nil {
		errs = append(errs, a.identity.PurgeExpiredResetTokens(ctx))
	}
	errs = append(errs, a.settings.Reload(ctx))

	return errors.Join(errs...)
}

// models lists every table migrated at bootstrap.
func (a *App) models() []any {
	models := settings.Models()
	models = append(models, notification.Models()...)
	if a.identity != nil {
		models = append(models, identity.Models()...)
	}

	return models
}
