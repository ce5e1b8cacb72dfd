package router

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"github.com/shandysiswandi/isaback/internal/pkg/goroutine"
	"github.com/shandysiswandi/isaback/internal/pkg/stacktrace"
)

const internalServerErrorMessage = "Internal server error"

// FailureNotifier reports unexpected production failures to operators.
type FailureNotifier interface {
	NotifyFailure(ctx context.Context, name, message string) error
}

// ErrorHandler maps errors to the JSON error envelope.
//
// Application errors keep their status and message, validation errors answer
// 400 with every violation, and anything else answers 500. In production the
// raw message of an unclassified error is replaced by a generic one and the
// failure is handed to the FailureNotifier without delaying the response.
type ErrorHandler struct {
	production bool
	routine    *goroutine.Manager

	mu       sync.RWMutex
	notifier FailureNotifier
}

// NewErrorHandler creates an ErrorHandler. A nil routine gets its own manager.
func NewErrorHandler(production bool, routine *goroutine.Manager) *ErrorHandler {
	if routine == nil {
		routine = goroutine.NewManager(0)
	}

	return &ErrorHandler{production: production, routine: routine}
}

// SetNotifier sets the notifier used for unclassified production errors.
func (h *ErrorHandler) SetNotifier(n FailureNotifier) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.notifier = n
}

// Handle writes the error response for err.
func (h *ErrorHandler) Handle(ctx context.Context, w http.ResponseWriter, err error) {
	kind, gerr := goerror.Classify(err)

	switch kind {
	case goerror.KindApplication:
		msg := gerr.Msg()
		if msg == "" {
			msg = gerr.Error()
		}
		writeError(w, gerr.StatusCode(), msg)

	case goerror.KindValidation:
		msgs := gerr.Messages()
		if msgs == nil {
			msgs = []string{}
		}
		writeError(w, http.StatusBadRequest, msgs)

	case goerror.KindUnclassified:
		slog.ErrorContext(ctx, "unhandled error on request", "error", err, "production", h.production)

		if !h.production {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		h.notify(ctx, goerror.Name(err), err.Error())
		writeError(w, http.StatusInternalServerError, internalServerErrorMessage)
	}
}

func (h *ErrorHandler) notify(ctx context.Context, name, message string) {
	h.mu.RLock()
	n := h.notifier
	h.mu.RUnlock()

	if n == nil {
		return
	}

	h.routine.Go(context.WithoutCancel(ctx), func(c context.Context) error {
		if err := n.NotifyFailure(c, name, message); err != nil {
			slog.ErrorContext(c, "failed to notify failure", "name", name, "error", err)
		}
		return nil
	})
}

// middlewareRecoverer turns a handler panic into an unclassified error.
//
//nolint:contextcheck // the request context is the right one here
func middlewareRecoverer(h *ErrorHandler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				//nolint:err113,errorlint // this must compare directly
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				slog.ErrorContext(r.Context(), "panic on the server", "because", rvr, stacktrace.Attr())

				h.Handle(r.Context(), w, panicError{value: rvr})
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return err.Error()
	}
	if s, ok := p.value.(string); ok {
		return s
	}
	return "panic"
}

func (panicError) Name() string { return "Panic" }
