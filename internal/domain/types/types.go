// Package types contains the request and response shapes shared by the
// service, the HTTP API and the CLI.
package types

import (
	"github.com/attriwatch/attriwatch/internal/domain/employee"
	"github.com/attriwatch/attriwatch/internal/domain/explain"
	"github.com/attriwatch/attriwatch/internal/domain/scoring"
)

// Prediction is the scored outcome for one employee.
type Prediction struct {
	AttritionProbability   float64         `json:"attrition_probability"`
	PerformanceProbability float64         `json:"performance_probability"`
	AttritionThreshold     float64         `json:"attrition_threshold"`
	PerformanceThreshold   float64         `json:"performance_threshold"`
	IsPriority             bool            `json:"is_priority"`
	Verdict                string          `json:"verdict"`
	Attributions           []explain.Entry `json:"attributions,omitempty"`
	Advice                 []string        `json:"advice,omitempty"`
}

// RowResult is a scored table row. Row is 1-based, counting data rows only.
type RowResult struct {
	Row int `json:"row"`
	Prediction
	// Record is the raw input, kept for the priority export.
	Record employee.Record `json:"-"`
}

// RowError reports why one row could not be scored.
type RowError struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// BatchReport summarizes one batch.
type BatchReport struct {
	BatchID  string      `json:"batch_id"`
	Encoding string      `json:"encoding"`
	Total    int         `json:"total"`
	Scored   int         `json:"scored"`
	Failed   int         `json:"failed"`
	Priority int         `json:"priority"`
	Results  []RowResult `json:"results"`
	Errors   []RowError  `json:"errors"`
}

// Stats describes the running service.
type Stats struct {
	AttritionModel       scoring.Info `json:"attrition_model"`
	PerformanceModel     scoring.Info `json:"performance_model"`
	AttritionThreshold   float64      `json:"attrition_threshold"`
	PerformanceThreshold float64      `json:"performance_threshold"`
	Encoding             string       `json:"encoding"`
	VocabularyVersion    string       `json:"vocabulary_version,omitempty"`
	AdvisoryEnabled      bool         `json:"advisory_enabled"`
	BatchWorkers         int          `json:"batch_workers"`
	RecordsScored        int64        `json:"records_scored"`
	PriorityFlagged      int64        `json:"priority_flagged"`
	RowErrors            int64        `json:"row_errors"`
	BatchesProcessed     int64        `json:"batches_processed"`
	Uptime               string       `json:"uptime"`
}
