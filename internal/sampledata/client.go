package sampledata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/attriwatch/attriwatch/internal/adapters/csvio"
	"github.com/attriwatch/attriwatch/internal/domain/retention"
	"github.com/attriwatch/attriwatch/internal/domain/types"
	"github.com/attriwatch/attriwatch/pkg/logger"
	"github.com/google/uuid"
)

const defaultTimeout = 60 * time.Second

// Client submits generated tables to a running server.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logger.Logger
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{baseURL: baseURL, http: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("sampledata")
	}
	return c
}

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Submit uploads g as a multipart CSV to POST /batch and decodes the report.
func (c *Client) Submit(ctx context.Context, g Generated, th retention.Thresholds) (types.BatchReport, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "employees.csv")
	if err != nil {
		return types.BatchReport{}, fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	if err := csvio.WriteTable(part, g.Table); err != nil {
		return types.BatchReport{}, fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	if err := form.Close(); err != nil {
		return types.BatchReport{}, fmt.Errorf("%w: %w", ErrSubmit, err)
	}

	q := url.Values{}
	q.Set("attrition_threshold", strconv.FormatFloat(th.Attrition, 'f', -1, 64))
	q.Set("performance_threshold", strconv.FormatFloat(th.Performance, 'f', -1, 64))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/batch?"+q.Encode(), &body)
	if err != nil {
		return types.BatchReport{}, fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return types.BatchReport{}, fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.BatchReport{}, fmt.Errorf("%w: read response: %w", ErrSubmit, err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.BatchReport{}, fmt.Errorf("%w: status %d: %s", ErrSubmit, resp.StatusCode, bytes.TrimSpace(data))
	}
	var report types.BatchReport
	if err := json.Unmarshal(data, &report); err != nil {
		return types.BatchReport{}, fmt.Errorf("%w: decode report: %w", ErrSubmit, err)
	}
	c.logger.Info(ctx, "batch submitted",
		logger.String("requestID", requestID),
		logger.String("batchID", report.BatchID),
		logger.Int("rows", report.Total),
		logger.Int("priority", report.Priority),
		logger.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// Verify checks a report against the table that produced it: every row is
// accounted for once, exactly the malformed rows failed with missing_field,
// and results keep input order.
func Verify(g Generated, report types.BatchReport) error {
	rows := g.Table.Len()
	switch {
	case report.Total != rows:
		return fmt.Errorf("%w: total %d, generated %d", ErrVerify, report.Total, rows)
	case report.Scored+report.Failed != rows:
		return fmt.Errorf("%w: scored %d + failed %d != %d", ErrVerify, report.Scored, report.Failed, rows)
	case len(report.Results) != report.Scored || len(report.Errors) != report.Failed:
		return fmt.Errorf("%w: report lists disagree with its counts", ErrVerify)
	}

	failed := make([]int, 0, len(report.Errors))
	for _, e := range report.Errors {
		if e.Code != "missing_field" {
			return fmt.Errorf("%w: row %d failed with %s: %s", ErrVerify, e.Row, e.Code, e.Message)
		}
		failed = append(failed, e.Row)
	}
	if !slices.Equal(failed, g.MalformedRows) {
		return fmt.Errorf("%w: failed rows %v, malformed rows %v", ErrVerify, failed, g.MalformedRows)
	}

	priority := 0
	for i, r := range report.Results {
		if i > 0 && r.Row <= report.Results[i-1].Row {
			return fmt.Errorf("%w: results out of order at row %d", ErrVerify, r.Row)
		}
		if r.IsPriority {
			priority++
		}
	}
	if priority != report.Priority {
		return fmt.Errorf("%w: priority count %d, flagged rows %d", ErrVerify, report.Priority, priority)
	}
	return nil
}

// Summary counts generated rows by profile.
func Summary(g Generated) map[string]int {
	out := make(map[string]int, int(profileCount))
	for _, p := range g.Profiles {
		out[p.String()]++
	}
	return out
}
