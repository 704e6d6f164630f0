// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/attriwatch/attriwatch/internal/adapters/worker"
	"github.com/attriwatch/attriwatch/internal/config"
	"github.com/attriwatch/attriwatch/internal/domain/advice"
	"github.com/attriwatch/attriwatch/internal/domain/employee"
	"github.com/attriwatch/attriwatch/internal/domain/explain"
	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/internal/domain/retention"
	"github.com/attriwatch/attriwatch/internal/domain/scoring"
	"github.com/attriwatch/attriwatch/internal/domain/types"
	"github.com/attriwatch/attriwatch/pkg/logger"
	"github.com/attriwatch/attriwatch/pkg/metrics"
	"github.com/google/uuid"
)

// Row error codes beyond the derivation codes of package features.
const (
	CodeModelError = "model_error"
	CodeCancelled  = "cancelled"
)

// Service scores employees with two injected, read-only models.
type Service struct {
	mu sync.RWMutex

	// Models
	attrition   scoring.Model
	performance scoring.Model

	// Configuration
	thresholds  retention.Thresholds
	encoding    string
	vocabulary  *features.Vocabulary
	advisory    bool
	topK        int
	workerCount int

	// State
	closers   []func() error
	pool      *worker.Pool
	started   bool
	startedAt time.Time

	recordsScored   atomic.Int64
	priorityFlagged atomic.Int64
	rowErrors       atomic.Int64
	batches         atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a Service around the attrition and performance models.
func New(attrition, performance scoring.Model, opts ...Option) *Service {
	s := &Service{
		attrition:   attrition,
		performance: performance,
		thresholds:  retention.Defaults(),
		encoding:    config.EncodingVocabulary,
		advisory:    true,
		topK:        5,
		workerCount: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start prepares the worker pool. Calling it twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.pool = worker.NewPool(s.workerCount, worker.WithName("batch"), worker.WithLogger(s.logger))
	s.started = true
	s.startedAt = time.Now()

	vocab := ""
	if s.vocabulary != nil {
		vocab = s.vocabulary.Version
	}
	s.logger.Info(ctx, "scoring service started",
		logger.String("attritionModel", s.attrition.Name()),
		logger.String("performanceModel", s.performance.Name()),
		logger.String("encoding", s.encoding),
		logger.String("vocabulary", vocab),
		logger.Bool("advisory", s.advisory),
		logger.Int("workers", s.pool.Size()),
	)
	return nil
}

// Stop marks the service stopped and releases models it owns, whether or
// not it was started. Callers drain in-flight requests first.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.logger.Warn(context.Background(), "model close failed", logger.Error(err))
		}
	}
	s.closers = nil
	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped",
		logger.Int("recordsScored", int(s.recordsScored.Load())),
	)
}

// Thresholds returns the default thresholds.
func (s *Service) Thresholds() retention.Thresholds { return s.thresholds }

// ScoreRecord scores one manually entered record. Text categories go
// through the frozen vocabulary in every encoding mode; without one, only
// numeric codes are accepted.
func (s *Service) ScoreRecord(ctx context.Context, rec employee.Record, th retention.Thresholds) (types.Prediction, error) {
	if err := s.ready(th); err != nil {
		return types.Prediction{}, err
	}
	// Manual entries are pre-mapped; factorize mode never applies to one record.
	aug, err := features.Derive(rec, s.vocabulary)
	if err != nil {
		s.recordRowError(ctx, metrics.ModeSingle, 1, err)
		return types.Prediction{}, err
	}
	pred, err := s.scoreAugmented(ctx, aug, th, metrics.ModeSingle)
	if err != nil {
		s.recordRowError(ctx, metrics.ModeSingle, 1, err)
		return types.Prediction{}, err
	}
	return pred, nil
}

// ScoreBatch scores every row of t. Rows fan out over the worker pool;
// results and errors keep input order and a failing row never affects the
// others. The error is non-nil only for invalid thresholds, an unstarted
// service, or a cancelled context; the partial report is still returned.
func (s *Service) ScoreBatch(ctx context.Context, t employee.Table, th retention.Thresholds) (types.BatchReport, error) {
	if err := s.ready(th); err != nil {
		return types.BatchReport{}, err
	}
	report := types.BatchReport{
		BatchID:  uuid.NewString(),
		Encoding: s.encoding,
		Total:    t.Len(),
		Results:  []types.RowResult{},
		Errors:   []types.RowError{},
	}
	start := time.Now()
	derived := features.DeriveBatch(t, s.encoderFor(t))

	results := make([]*types.RowResult, t.Len())
	rowErrs := make([]*types.RowError, t.Len())
	runErr := s.pool.Run(ctx, t.Len(), func(ctx context.Context, i int) {
		err := derived[i].Err
		var pred types.Prediction
		if err == nil {
			pred, err = s.scoreAugmented(ctx, derived[i].Features, th, metrics.ModeBatch)
		}
		if err != nil {
			rowErrs[i] = s.recordRowError(ctx, metrics.ModeBatch, i+1, err)
			return
		}
		results[i] = &types.RowResult{Row: i + 1, Prediction: pred, Record: t.Rows[i]}
	})

	for i := range results {
		switch {
		case results[i] != nil:
			report.Results = append(report.Results, *results[i])
			if results[i].IsPriority {
				report.Priority++
			}
		case rowErrs[i] != nil:
			report.Errors = append(report.Errors, *rowErrs[i])
		default:
			report.Errors = append(report.Errors, types.RowError{
				Row: i + 1, Code: CodeCancelled, Message: "not scored: request cancelled",
			})
		}
	}
	report.Scored = len(report.Results)
	report.Failed = len(report.Errors)

	s.batches.Add(1)
	metrics.RecordBatchRows(t.Len())
	s.logger.Info(ctx, "batch scored",
		logger.String("batchID", report.BatchID),
		logger.Int("rows", report.Total),
		logger.Int("scored", report.Scored),
		logger.Int("failed", report.Failed),
		logger.Int("priority", report.Priority),
		logger.Duration("elapsed", time.Since(start)),
	)
	return report, runErr
}

// PriorityRows returns the report rows flagged as retention priorities.
func PriorityRows(report types.BatchReport) []types.RowResult {
	out := make([]types.RowResult, 0, report.Priority)
	for _, r := range report.Results {
		if r.IsPriority {
			out = append(out, r)
		}
	}
	return out
}

// GetStats returns service configuration and counters.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		AttritionModel:       scoring.Describe(s.attrition),
		PerformanceModel:     scoring.Describe(s.performance),
		AttritionThreshold:   s.thresholds.Attrition,
		PerformanceThreshold: s.thresholds.Performance,
		Encoding:             s.encoding,
		AdvisoryEnabled:      s.advisory,
		BatchWorkers:         s.workerCount,
		RecordsScored:        s.recordsScored.Load(),
		PriorityFlagged:      s.priorityFlagged.Load(),
		RowErrors:            s.rowErrors.Load(),
		BatchesProcessed:     s.batches.Load(),
	}
	if s.vocabulary != nil {
		stats.VocabularyVersion = s.vocabulary.Version
	}
	if s.started {
		stats.Uptime = time.Since(s.startedAt).Round(time.Second).String()
	}
	return stats
}

// ErrorCode maps a scoring failure to its stable code.
func ErrorCode(err error) string {
	if code := features.Code(err); code != "internal" {
		return code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancelled
	}
	return CodeModelError
}

func (s *Service) ready(th retention.Thresholds) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	return th.Validate()
}

func (s *Service) encoderFor(t employee.Table) features.Encoder {
	if s.encoding == config.EncodingFactorize {
		return features.NewFactorizer(t)
	}
	return s.vocabulary
}

func (s *Service) scoreAugmented(ctx context.Context, aug features.Augmented, th retention.Thresholds, mode string) (types.Prediction, error) {
	attrVec, err := s.attrition.Schema().Project(aug)
	if err != nil {
		return types.Prediction{}, err
	}
	perfVec, err := s.performance.Schema().Project(aug)
	if err != nil {
		return types.Prediction{}, err
	}
	pa, err := s.run(ctx, s.attrition, attrVec)
	if err != nil {
		return types.Prediction{}, err
	}
	pp, err := s.run(ctx, s.performance, perfVec)
	if err != nil {
		return types.Prediction{}, err
	}

	res := retention.Classify(pa, pp, th)
	pred := types.Prediction{
		AttritionProbability:   res.AttritionProbability,
		PerformanceProbability: res.PerformanceProbability,
		AttritionThreshold:     th.Attrition,
		PerformanceThreshold:   th.Performance,
		IsPriority:             res.IsPriority,
		Verdict:                res.Verdict,
	}
	s.recordsScored.Add(1)
	metrics.RecordScored(mode)
	if !res.IsPriority {
		return pred, nil
	}
	s.priorityFlagged.Add(1)
	metrics.RecordPriority(mode)

	if s.advisory {
		entries, err := explain.Explain(ctx, s.attrition, attrVec, s.topK)
		if err != nil {
			s.logger.Warn(ctx, "attribution failed", logger.Error(err))
			return pred, nil
		}
		pred.Attributions = entries
		pred.Advice = slices.Collect(advice.Advise(entries))
		metrics.RecordAdviceLines(len(pred.Advice))
	}
	return pred, nil
}

func (s *Service) run(ctx context.Context, m scoring.Model, v features.Vector) (float64, error) {
	start := time.Now()
	p, err := scoring.Score(ctx, m, v)
	metrics.RecordModelLatency(m.Name(), float64(time.Since(start).Microseconds())/1000)
	if err != nil && !errors.Is(err, features.ErrFeatureMismatch) {
		metrics.RecordModelError(m.Name())
	}
	return p, err
}

func (s *Service) recordRowError(ctx context.Context, mode string, row int, err error) *types.RowError {
	code := ErrorCode(err)
	s.rowErrors.Add(1)
	metrics.RecordRecordError(mode, code)
	s.logger.Debug(ctx, "record rejected",
		logger.String("mode", mode),
		logger.Int("row", row),
		logger.String("code", code),
		logger.Error(err),
	)
	return &types.RowError{Row: row, Code: code, Field: features.Field(err), Message: err.Error()}
}
