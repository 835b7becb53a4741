// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/tpi/internal/domain/table"
	"github.com/okian/tpi/pkg/logger"
	"golang.org/x/time/rate"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	StatsProvider

	// ScoreTable augments t with the pillar scores and TPI.
	ScoreTable(ctx context.Context, t *table.Table) (*table.Table, error)
	// Sample scores the built-in sample player.
	Sample(ctx context.Context) (*table.Table, error)
	// MaxBatchRows reports the largest table ScoreTable accepts.
	MaxBatchRows() int
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	scoreHandler  *ScoreHandler
	limiter       *rate.Limiter
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit throttles the scoring endpoints to rps requests per second
// with the given burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		scoreHandler:  NewScoreHandler(deps, logger.GetOrNop().Named("api")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", s.route(s.healthHandler.HandleHealth, "healthz", false))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", s.route(s.statsHandler.HandleStats, "stats", false))
	mux.HandleFunc("/v1/score", s.route(s.scoreHandler.HandleScore, "score", true))
	mux.HandleFunc("/v1/sample", s.route(s.scoreHandler.HandleSample, "sample", true))
	mux.HandleFunc("/v1/weights", s.route(s.scoreHandler.HandleWeights, "weights", false))
}

// route applies the middleware chain shared by every API endpoint.
// Metrics are outermost so throttled requests are counted too.
func (s *Server) route(h http.HandlerFunc, endpoint string, limited bool) http.HandlerFunc {
	if limited {
		h = RateLimitMiddleware(h, endpoint, s.limiter)
	}
	return RequestIDMiddleware(MetricsMiddleware(h, endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Row     *int   `json:"row,omitempty"`
	Field   string `json:"field,omitempty"`
}

// marshalJSON encodes v the way json.Encoder does, trailing newline included.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeJSON encodes v before the status line goes out. A value that cannot
// be encoded becomes a 500 envelope.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := marshalJSON(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = marshalJSON(errorResponse{Code: "internal_error", Message: err.Error()})
	}
	writeBody(w, status, body)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
