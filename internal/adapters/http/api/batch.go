package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/attriwatch/attriwatch/internal/adapters/csvio"
	"github.com/attriwatch/attriwatch/internal/domain/employee"
	"github.com/attriwatch/attriwatch/internal/domain/types"
	"github.com/attriwatch/attriwatch/pkg/logger"
)

// uploadField is the multipart form field carrying the CSV file.
const uploadField = "file"

// BatchHandler scores uploaded CSV tables.
type BatchHandler struct {
	scorer   Scorer
	maxBytes int64
	logger   logger.Logger
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(scorer Scorer, maxBytes int64, log logger.Logger) *BatchHandler {
	return &BatchHandler{scorer: scorer, maxBytes: maxBytes, logger: log}
}

// HandleBatch handles POST /batch requests and returns the JSON report.
func (h *BatchHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	report, ok := h.score(w, r, "api.batch")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleExport handles POST /batch/priority.csv requests and returns only
// the priority rows as a CSV attachment.
func (h *BatchHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	const op = "api.batch_export"
	report, ok := h.score(w, r, op)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := csvio.WritePriority(&buf, report.Results); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": csvio.ExportFilename}))
	w.Header().Set("X-Batch-ID", report.BatchID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *BatchHandler) score(w http.ResponseWriter, r *http.Request, op string) (types.BatchReport, bool) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return types.BatchReport{}, false
	}
	th, err := thresholdsFromQuery(r, h.scorer.Thresholds())
	if err != nil {
		status, code := classify(err)
		writeError(w, status, code, Wrap(op, err))
		return types.BatchReport{}, false
	}
	table, err := h.readUpload(w, r)
	if err != nil {
		status, code := classify(err)
		if status == http.StatusInternalServerError {
			status, code = http.StatusBadRequest, "bad_request"
		}
		writeError(w, status, code, WrapKind(op, ErrBadRequest, err))
		return types.BatchReport{}, false
	}

	report, err := h.scorer.ScoreBatch(r.Context(), table, th)
	if err != nil {
		status, code := classify(err)
		h.logger.Warn(r.Context(), "batch aborted",
			logger.String("requestID", r.Header.Get(RequestIDHeader)),
			logger.Int("rows", table.Len()),
			logger.Error(err),
		)
		writeError(w, status, code, Wrap(op, err))
		return types.BatchReport{}, false
	}
	return report, true
}

// readUpload accepts a raw CSV body or a multipart form with a "file" field.
func (h *BatchHandler) readUpload(w http.ResponseWriter, r *http.Request) (employee.Table, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	var body io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			return employee.Table{}, fmt.Errorf("parse form: %w", err)
		}
		file, _, err := r.FormFile(uploadField)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return employee.Table{}, fmt.Errorf("missing form field %q", uploadField)
			}
			return employee.Table{}, fmt.Errorf("read form file: %w", err)
		}
		defer func() { _ = file.Close() }()
		body = file
	}
	return csvio.ReadTable(body)
}
