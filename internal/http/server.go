// Package http serves the grouping routine and the configured jobs as a JSON
// API.
package http

import (
	"context"
	"net/http"
	"time"

	"monthgroup/internal/core"
	"monthgroup/internal/jobs"
	"monthgroup/internal/log"
	"monthgroup/internal/middleware/ratelimit"
	"monthgroup/internal/middleware/security"
	"monthgroup/internal/middleware/trace"
	"monthgroup/internal/services"
	"monthgroup/internal/storage"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 10 << 20

// GroupingService is what the handlers need from services.GroupingService.
type GroupingService interface {
	Evaluate(ctx context.Context, in services.Input) (core.Result, error)
	Run(ctx context.Context, job jobs.Job, trigger string) (storage.Run, core.Result, error)
	Enqueue(ctx context.Context, job, trigger string) (string, error)
	ListRuns(ctx context.Context, job string, limit int) ([]storage.Run, error)
	GetRun(ctx context.Context, id string) (storage.Run, error)
}

// Options configures NewServer.
type Options struct {
	Service            GroupingService
	Jobs               *jobs.Set
	Logger             *log.Logger
	RateLimitPerMinute int
	// Ready reports whether dependencies are usable; nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	service GroupingService
	jobs    *jobs.Set
	ready   func(ctx context.Context) error
	logger  *log.Logger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
}

// NewServer wires routes and middleware and returns a server ready to
// ListenAndServe on addr.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		service: opts.Service,
		jobs:    opts.Jobs,
		ready:   opts.Ready,
		logger:  logger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:  trace.NewMiddleware(logger, detector.ExtractClientIP),
	}

	router := mux.NewRouter()
	router.Use(s.tracer.Handler)
	router.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found", Kind: kindNotFound})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Kind: kindValidation})
	})

	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded", Kind: "rate_limited"})
	}))
	api.HandleFunc("/group", s.handleGroup).Methods(http.MethodPost)
	api.HandleFunc("/jobs", s.handleListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{name}/run", s.handleRunJob).Methods(http.MethodPost)
	api.HandleFunc("/runs", s.handleListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Shutdown stops accepting requests, waits for in-flight ones and releases
// the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// Metrics returns the request counters collected by the tracing middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}
