package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shandysiswandi/isaback/internal/pkg/database"
	"github.com/shandysiswandi/isaback/internal/shared/job"
	"golang.org/x/sync/errgroup"
)

// Start launches the HTTP server and the background bootstrap, and returns
// a channel closed on shutdown.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		if err := a.bootstrap(a.ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("failed to bootstrap application", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigint)

		<-sigint

		if a.cancel != nil {
			a.cancel()
		}

		close(terminateChan)

		slog.Info("application gracefully shutdown")
	}()

	return terminateChan
}

// bootstrap connects and migrates the database, then loads the mail and
// SMS settings and starts the job queue concurrently.
//
// Settings that fail to load leave their holder empty, so the matching
// channel stays inactive until the next daily reload.
func (a *App) bootstrap(ctx context.Context) error {
	if err := database.Ping(ctx, a.dbPool, a.config.GetSecond("database.ping_timeout_seconds")); err != nil {
		return err
	}
	if err := database.Migrate(ctx, a.db, a.models()...); err != nil {
		return err
	}
	slog.InfoContext(ctx, "database ready")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.settings.LoadMail(gctx); err != nil {
			slog.WarnContext(gctx, "notifications by mail stay disabled", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.settings.LoadSMS(gctx); err != nil {
			slog.WarnContext(gctx, "notifications by sms stay disabled", "error", err)
		}
		return nil
	})
	// the recurring tick outlives the group, so it is bound to ctx
	g.Go(func() error {
		return a.startJobs(ctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	a.ready.Store(true)
	slog.InfoContext(ctx, "application ready")

	return nil
}

// startJobs attaches the failure listener, starts consuming and schedules
// the daily run.
func (a *App) startJobs(ctx context.Context) error {
	a.queue.OnFail(a.notification.NotifyJobFailure)

	if err := a.queue.Listen(ctx); err != nil {
		return err
	}

	return a.queue.Every(ctx, job.ScheduleJobsAt, scheduleCadence)
}

// Serve runs the HTTP server on the provided listener for tests.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// Stop gracefully shuts down the server and closes resources.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
	}

	slog.InfoContext(ctx, "waiting for all goroutine to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}
	slog.InfoContext(ctx, "all goroutines have finished successfully")

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}
