package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/tpi/internal/app"
	"github.com/okian/tpi/internal/domain/model"
	"github.com/okian/tpi/internal/domain/scoring"
	"github.com/okian/tpi/internal/domain/table"
	"github.com/okian/tpi/pkg/logger"
	"github.com/okian/tpi/pkg/metrics"
)

const (
	// maxBodyBytes bounds a POST /v1/score body.
	maxBodyBytes = 8 << 20

	codeNonFinite = "non_finite_score"
)

// ScoringDependencies defines the operations the scoring handlers need.
type ScoringDependencies interface {
	ScoreTable(ctx context.Context, t *table.Table) (*table.Table, error)
	Sample(ctx context.Context) (*table.Table, error)
}

// ScoreHandler serves the scoring endpoints.
type ScoreHandler struct {
	deps ScoringDependencies
	log  logger.Logger
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoringDependencies, log logger.Logger) *ScoreHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ScoreHandler{deps: deps, log: log}
}

// scoreRequest mirrors the OpenAPI schema for POST /v1/score.
type scoreRequest struct {
	Players []table.Row `json:"players"`
}

type scoreResponse struct {
	Columns []string    `json:"columns"`
	Players []table.Row `json:"players"`
}

type weightsResponse struct {
	Weights    map[scoring.Pillar]float64 `json:"weights"`
	WeightSum  float64                    `json:"weight_sum"`
	Benchmarks scoring.Benchmarks         `json:"benchmarks"`
}

// HandleScore handles POST /v1/score requests.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	var req scoreRequest
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Players) == 0 {
		writeError(w, http.StatusBadRequest, "empty_batch", NewKind(op, ErrEmptyBatch))
		return
	}

	in := table.New(requestColumns(req.Players), req.Players...)
	out, err := h.deps.ScoreTable(r.Context(), in)
	if err != nil {
		h.writeScoringError(w, r, op, err)
		return
	}
	h.writeScored(w, r, op, out)
}

// HandleSample handles GET /v1/sample requests. With ?format=text the
// player and TPI projection is returned in the driver's text rendering.
func (h *ScoreHandler) HandleSample(w http.ResponseWriter, r *http.Request) {
	const op = "api.sample"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	out, err := h.deps.Sample(r.Context())
	if err != nil {
		h.writeScoringError(w, r, op, err)
		return
	}

	if r.URL.Query().Get("format") != "text" {
		h.writeScored(w, r, op, out)
		return
	}
	proj, err := out.Select(model.ColPlayer, model.ColTPI)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintln(w, proj.String())
}

// HandleWeights handles GET /v1/weights requests.
func (h *ScoreHandler) HandleWeights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, weightsResponse{
		Weights:    scoring.Weights(),
		WeightSum:  scoring.WeightSum(),
		Benchmarks: scoring.DefaultBenchmarks(),
	})
}

// writeScored encodes the scored table before any header is sent. Inputs
// large enough to overflow a pillar score yield an infinite TPI, which has
// no JSON form; those are reported as 422 non_finite_score.
func (h *ScoreHandler) writeScored(w http.ResponseWriter, r *http.Request, op string, out *table.Table) {
	body, err := marshalJSON(scoreResponse{Columns: out.Columns(), Players: out.Rows()})
	if err == nil {
		writeBody(w, http.StatusOK, body)
		return
	}

	var unsupported *json.UnsupportedValueError
	if errors.As(err, &unsupported) {
		h.log.Warn(r.Context(), "scored table has a non-finite value",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Int("rows", out.Len()),
			logger.Error(err),
		)
		metrics.RecordErrorByComponent("api", codeNonFinite)
		writeError(w, http.StatusUnprocessableEntity, codeNonFinite, WrapKind(op, ErrNonFinite, err))
		return
	}
	h.log.Error(r.Context(), "encoding scored table failed",
		logger.String("request_id", RequestIDFrom(r.Context())),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}

// writeScoringError maps service and scoring failures onto status codes.
func (h *ScoreHandler) writeScoringError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var fe *scoring.FieldError
	switch {
	case errors.As(err, &fe):
		row := fe.Row
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    scoring.ErrorKind(err),
			Message: Wrap(op, err).Error(),
			Row:     &row,
			Field:   fe.Field,
		})
	case errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, scoring.KindCanceled, Wrap(op, err))
	default:
		h.log.Error(r.Context(), "scoring failed",
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// requestColumns orders the known schema columns first. Other keys are
// appended by table.New in sorted order.
func requestColumns(rows []table.Row) []string {
	known := append([]string{model.ColPlayer}, model.InputColumns()...)
	known = append(known, model.DerivedColumns()...)
	cols := make([]string, 0, len(known))
	for _, c := range known {
		for _, row := range rows {
			if _, ok := row[c]; ok {
				cols = append(cols, c)
				break
			}
		}
	}
	return cols
}
