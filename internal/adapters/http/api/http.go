// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/attriwatch/attriwatch/internal/domain/employee"
	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/internal/domain/retention"
	"github.com/attriwatch/attriwatch/internal/domain/types"
	"github.com/attriwatch/attriwatch/pkg/logger"
)

const defaultMaxUploadBytes = 10 << 20

// Scorer runs the scoring pipeline.
type Scorer interface {
	ScoreRecord(ctx context.Context, rec employee.Record, th retention.Thresholds) (types.Prediction, error)
	ScoreBatch(ctx context.Context, t employee.Table, th retention.Thresholds) (types.BatchReport, error)
	// Thresholds returns the defaults applied when a request omits them.
	Thresholds() retention.Thresholds
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Scorer
	StatsProvider
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxUploadBytes caps request bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(logger logger.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	maxUploadBytes int64
	logger         logger.Logger

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	batchHandler     *BatchHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.predictHandler = NewPredictHandler(deps, s.maxUploadBytes, s.logger)
	s.batchHandler = NewBatchHandler(deps, s.maxUploadBytes, s.logger)
	s.dashboardHandler = newDashboardHandler()
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/batch", MetricsMiddleware(s.batchHandler.HandleBatch, "batch"))
	mux.HandleFunc("/batch/priority.csv", MetricsMiddleware(s.batchHandler.HandleExport, "batch_export"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Field: features.Field(err), Message: msg})
}

// classify maps a handler error to its HTTP status and machine code.
func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, features.ErrMissingField),
		errors.Is(err, features.ErrInvalidField),
		errors.Is(err, features.ErrEncoding),
		errors.Is(err, features.ErrFeatureMismatch):
		return http.StatusUnprocessableEntity, features.Code(err)
	case errors.Is(err, retention.ErrInvalidThreshold):
		return http.StatusBadRequest, "invalid_threshold"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "model_error"
	}
}

// thresholdsFromQuery overrides defaults with attrition_threshold and
// performance_threshold query parameters when present.
func thresholdsFromQuery(r *http.Request, defaults retention.Thresholds) (retention.Thresholds, error) {
	th := defaults
	q := r.URL.Query()
	for name, dst := range map[string]*float64{
		"attrition_threshold":   &th.Attrition,
		"performance_threshold": &th.Performance,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return th, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, name, raw)
		}
		*dst = v
	}
	return th, th.Validate()
}
