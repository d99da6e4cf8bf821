// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/swinglab/internal/app"
	"github.com/okian/swinglab/internal/adapters/repository"
	"github.com/okian/swinglab/internal/domain/pose"
	"github.com/okian/swinglab/internal/domain/report"
	"github.com/okian/swinglab/pkg/logger"
)

const (
	defaultMaxObservations = 1000
	defaultMaxBodyBytes    = 8 << 20
	defaultRecentLimit     = 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit queues a swing for asynchronous analysis.
	Submit(ctx context.Context, id string, seq pose.Sequence) (service.Submission, error)
	// Analyze runs the pipeline synchronously.
	Analyze(ctx context.Context, seq pose.Sequence) (report.Report, error)

	Get(ctx context.Context, id string) (repository.Record, error)
	Recent(ctx context.Context, n int) ([]repository.Record, error)
}

// StatsProvider exposes service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) service.Stats
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	analysisHandler *AnalysisHandler
}

// Option configures the Server.
type Option func(*AnalysisHandler)

// WithMaxObservations limits the number of observations per request.
func WithMaxObservations(n int) Option {
	return func(h *AnalysisHandler) {
		if n > 0 {
			h.maxObservations = n
		}
	}
}

// WithMaxBodyBytes limits the request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(h *AnalysisHandler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *AnalysisHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		analysisHandler: NewAnalysisHandler(deps, opts...),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /v1/analyses", MetricsMiddleware(s.analysisHandler.HandleSubmit, "submit"))
	mux.HandleFunc("GET /v1/analyses", MetricsMiddleware(s.analysisHandler.HandleList, "list"))
	mux.HandleFunc("GET /v1/analyses/{id}", MetricsMiddleware(s.analysisHandler.HandleGet, "get"))
	mux.HandleFunc("POST /v1/analyze", MetricsMiddleware(s.analysisHandler.HandleAnalyze, "analyze"))
}

// writeJSON encodes v before writing the header so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal_error", Message: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
