package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/attriwatch/attriwatch/internal/adapters/csvio"
	service "github.com/attriwatch/attriwatch/internal/app"
	"github.com/attriwatch/attriwatch/internal/config"
	"github.com/spf13/cobra"
)

type scoreOptions struct {
	input                string
	output               string
	report               string
	attritionThreshold   float64
	performanceThreshold float64
	attritionModel       string
	performanceModel     string
	encoding             string
	workers              int
}

func newScoreCommand() *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an employee CSV and export retention priorities",
		Long: `Score every row of an employee CSV with both models.

Priority rows (attrition and performance probabilities both above their
thresholds) are written to --output as retention_priority.csv. Rows that
cannot be scored are reported on stderr and make the command exit with
status 1 after the export is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "Employee CSV to score, - for stdin")
	f.StringVarP(&opts.output, "output", "o", csvio.ExportFilename, "Priority CSV destination, - for stdout")
	f.StringVar(&opts.report, "report", "", "Also write the full JSON batch report to this path")
	f.Float64Var(&opts.attritionThreshold, "attrition-threshold", 0, "Attrition threshold in [0,1] (default from config)")
	f.Float64Var(&opts.performanceThreshold, "performance-threshold", 0, "Performance threshold in [0,1] (default from config)")
	f.StringVar(&opts.attritionModel, "attrition-model", "", "Attrition model manifest (default from config)")
	f.StringVar(&opts.performanceModel, "performance-model", "", "Performance model manifest (default from config)")
	f.StringVar(&opts.encoding, "encoding", "", "Categorical encoding: vocabulary or factorize (default from config)")
	f.IntVar(&opts.workers, "workers", 0, "Parallel row scorers (default from config)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runScore(cmd *cobra.Command, opts *scoreOptions) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	svc, err := service.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()
	if err := svc.Start(ctx); err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, opts.input)
	if err != nil {
		return err
	}
	table, err := csvio.ReadTable(in)
	closeIn()
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.input, err)
	}

	report, err := svc.ScoreBatch(ctx, table, svc.Thresholds())
	if err != nil {
		return fmt.Errorf("scoring %s: %w", opts.input, err)
	}

	if err := writeOutput(cmd, opts.output, func(w io.Writer) error {
		return csvio.WritePriority(w, report.Results)
	}); err != nil {
		return err
	}
	if opts.report != "" {
		if err := writeOutput(cmd, opts.report, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}); err != nil {
			return err
		}
	}

	summary := cmd.OutOrStdout()
	if opts.output == "-" {
		summary = cmd.ErrOrStderr()
	}
	fmt.Fprintf(summary, "Scored %d of %d rows: %d retention priorities (attrition > %.2f, performance > %.2f)\n",
		report.Scored, report.Total, report.Priority, svc.Thresholds().Attrition, svc.Thresholds().Performance)
	if opts.output != "-" {
		fmt.Fprintf(summary, "Priority export: %s\n", opts.output)
	}
	for _, e := range report.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "row %d: %s: %s\n", e.Row, e.Code, e.Message)
	}
	if report.Failed > 0 {
		return &RowErrorsError{Failed: report.Failed, Total: report.Total}
	}
	return nil
}

// loadConfig layers explicitly set flags over the loaded configuration.
func loadConfig(cmd *cobra.Command, opts *scoreOptions) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cmd.Context(), config.WithFile(path))
	if err != nil {
		return nil, err
	}
	f := cmd.Flags()
	if f.Changed("attrition-threshold") {
		cfg.AttritionThreshold = opts.attritionThreshold
	}
	if f.Changed("performance-threshold") {
		cfg.PerformanceThreshold = opts.performanceThreshold
	}
	if f.Changed("attrition-model") {
		cfg.AttritionModel = opts.attritionModel
	}
	if f.Changed("performance-model") {
		cfg.PerformanceModel = opts.performanceModel
	}
	if f.Changed("encoding") {
		cfg.CategoricalEncoding = opts.encoding
	}
	if f.Changed("workers") {
		cfg.BatchWorkers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
