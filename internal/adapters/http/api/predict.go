package api

import (
	"encoding/json"
	"net/http"

	"github.com/attriwatch/attriwatch/internal/domain/employee"
	"github.com/attriwatch/attriwatch/pkg/logger"
)

// predictRequest is the body of POST /predict.
type predictRequest struct {
	Record               employee.Record `json:"record"`
	AttritionThreshold   *float64        `json:"attrition_threshold,omitempty"`
	PerformanceThreshold *float64        `json:"performance_threshold,omitempty"`
	// Explain set to false suppresses attributions and advice.
	Explain *bool `json:"explain,omitempty"`
}

// PredictHandler scores one manually entered record.
type PredictHandler struct {
	scorer   Scorer
	maxBytes int64
	logger   logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(scorer Scorer, maxBytes int64, log logger.Logger) *PredictHandler {
	return &PredictHandler{scorer: scorer, maxBytes: maxBytes, logger: log}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status, code := classify(err)
		if status == http.StatusInternalServerError {
			status, code = http.StatusBadRequest, "bad_request"
		}
		writeError(w, status, code, WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Record) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errEmptyRecord))
		return
	}

	th := h.scorer.Thresholds()
	if req.AttritionThreshold != nil {
		th.Attrition = *req.AttritionThreshold
	}
	if req.PerformanceThreshold != nil {
		th.Performance = *req.PerformanceThreshold
	}

	pred, err := h.scorer.ScoreRecord(r.Context(), req.Record, th)
	if err != nil {
		status, code := classify(err)
		if status >= statusInternalError {
			h.logger.Error(r.Context(), "predict failed",
				logger.String("requestID", r.Header.Get(RequestIDHeader)),
				logger.Error(err),
			)
			err = WrapKind(op, ErrScoring, err)
		} else {
			err = Wrap(op, err)
		}
		writeError(w, status, code, err)
		return
	}
	if req.Explain != nil && !*req.Explain {
		pred.Attributions = nil
		pred.Advice = nil
	}
	writeJSON(w, http.StatusOK, pred)
}
