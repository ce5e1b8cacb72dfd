package router

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/isaback/internal/pkg/config"
	"github.com/shandysiswandi/isaback/internal/pkg/goroutine"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/jwt"
	"github.com/shandysiswandi/isaback/internal/pkg/uid"
)

const (
	statusError   = "error"
	statusSuccess = "success"
)

type errorResponse struct {
	Status  string `json:"status" example:"error"`
	Message any    `json:"message" swaggertype:"string" example:"example string message"`
}

type successResponse struct {
	Status  string         `json:"status" example:"success"`
	Message string         `json:"message" example:"example string message"`
	Data    any            `json:"data" swaggertype:"object"`
	Meta    map[string]any `json:"meta,omitempty" swaggertype:"object"`
}

// Handler is the application-style handler used by this router.
//
// It returns a response payload (that will be JSON encoded) or an error.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	// Config provides runtime configuration values.
	Config config.Config
	// UUID generates request correlation IDs.
	UUID uid.StringID
	// Verifier validates identity provider bearer tokens.
	Verifier jwt.Verifier
	// Instrument provides tracing and metrics helpers.
	Instrument instrument.Instrumentation
	// Goroutine runs failure notifications in the background.
	Goroutine *goroutine.Manager
	// Production hides unclassified error details from clients.
	Production bool
	// BodyLimit caps request bodies in bytes; zero means 1MB.
	BodyLimit int64
	// PublicEndpoints maps a method to route patterns that skip authentication.
	PublicEndpoints map[string][]string
}

// Router is an http.Handler that wraps httprouter and a middleware chain.
type Router struct {
	hr      *httprouter.Router
	errors  *ErrorHandler
	encoder func(w http.ResponseWriter, resp any)
	mws     []Middleware
}

// NewRouter builds the default application router with standard middleware.
//
// Stateless middleware (recovery, client ip, correlation id, observability,
// maintenance, body limit) runs before the identity provider check.
func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, "endpoint not found")
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}),
	}

	public := map[string]map[string]struct{}{}
	for method, paths := range cfg.PublicEndpoints {
		if public[method] == nil {
			public[method] = map[string]struct{}{}
		}
		for _, p := range paths {
			public[method][p] = struct{}{}
		}
	}

	errHandler := NewErrorHandler(cfg.Production, cfg.Goroutine)

	ro := &Router{
		hr:      hr,
		errors:  errHandler,
		encoder: okCodec,
		mws: []Middleware{
			middlewareRecoverer(errHandler),
			middlewareIP,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, cfg.Instrument),
			middlewareMaintenance(cfg.Config),
			middlewareBodyLimit(cfg.BodyLimit),
			middlewareAuthentication(cfg.Verifier, public),
		},
	}

	return ro
}

// SetFailureNotifier plugs the production failure notifier into the error handler.
// It must be called before the server starts.
func (r *Router) SetFailureNotifier(n FailureNotifier) {
	r.errors.SetNotifier(n)
}

// Errors returns the centralized error handler.
func (r *Router) Errors() *ErrorHandler {
	return r.errors
}

// GET registers a GET endpoint using the application Handler signature.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodGet, path, h, mws...)
}

// POST registers a POST endpoint using the application Handler signature.
func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPost, path, h, mws...)
}

// PUT registers a PUT endpoint using the application Handler signature.
func (r *Router) PUT(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPut, path, h, mws...)
}

// PATCH registers a PATCH endpoint using the application Handler signature.
func (r *Router) PATCH(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodPatch, path, h, mws...)
}

// DELETE registers a DELETE endpoint using the application Handler signature.
func (r *Router) DELETE(path string, h Handler, mws ...Middleware) {
	r.endpoint(http.MethodDelete, path, h, mws...)
}

func (r *Router) endpoint(method, path string, h Handler, mws ...Middleware) {
	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, re *http.Request) {
		resp, err := h(&Request{Request: re})
		if err != nil {
			if setter, ok := w.(interface{ SetError(error) }); ok {
				setter.SetError(err)
			}
			r.errors.Handle(re.Context(), w, err)
			return
		}
		r.encoder(w, resp)
	}), append(r.mws, mws...)...))
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}

func okCodec(w http.ResponseWriter, resp any) {
	code := http.StatusOK
	if sc, ok := resp.(interface {
		StatusCode() int
	}); ok {
		code = sc.StatusCode()
	}

	if code == http.StatusNoContent || resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	msg := "request has been successfully"
	if m, ok := resp.(interface {
		Message() string
	}); ok {
		msg = m.Message()
	}

	var meta map[string]any
	if m, ok := resp.(interface {
		Meta() map[string]any
	}); ok {
		meta = m.Meta()
	}

	writeJSON(w, successResponse{
		Status:  statusSuccess,
		Message: msg,
		Data:    resp,
		Meta:    meta,
	}, code)
}

func writeError(w http.ResponseWriter, code int, message any) {
	writeJSON(w, errorResponse{Status: statusError, Message: message}, code)
}

func writeJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("server: failed to encode data to json", "error", err)
	}
}
