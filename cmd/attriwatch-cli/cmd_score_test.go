package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/attriwatch/attriwatch/internal/config"
	"github.com/attriwatch/attriwatch/internal/domain/types"
	"github.com/attriwatch/attriwatch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	attritionManifest   = "../../models/attrition.yaml"
	performanceManifest = "../../models/performance.yaml"
)

const employeesCSV = "Age,MonthlyIncome,TotalWorkingYears,YearsAtCompany,JobSatisfaction,EnvironmentSatisfaction," +
	"RelationshipSatisfaction,OverTime,YearsSinceLastPromotion,YearsWithCurrManager,PercentSalaryHike," +
	"WorkLifeBalance,YearsInCurrentRole,JobRole,Department\n" +
	"26,2100,4,3,1,1,1,Yes,3,1,11,1,2,Sales Representative,Sales\n" +
	"48,16500,25,20,4,4,4,No,0,12,22,4,10,Manager,Research & Development\n"

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// runCLI executes the root command and captures both streams.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("ATTRIWATCH_CONFIG", "")
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "employees.csv")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func scoreArgs(input string, extra ...string) []string {
	args := []string{"score", "--input", input,
		"--attrition-model", attritionManifest,
		"--performance-model", performanceManifest}
	return append(args, extra...)
}

func TestScoreCommand_WritesPriorityExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "retention_priority.csv")

	stdout, stderr, err := runCLI(t, "", scoreArgs(writeCSV(t, employeesCSV), "--output", out)...)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "Scored 2 of 2 rows")
	assert.Contains(t, stdout, "attrition > 0.56, performance > 0.50")
	assert.Contains(t, stdout, "Priority export: "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "Age,JobRole,Department,MonthlyIncome,AttritionProb,PerformanceProb", lines[0])
}

func TestScoreCommand_StdinToStdout(t *testing.T) {
	stdout, stderr, err := runCLI(t, employeesCSV, scoreArgs("-", "--output", "-")...)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stdout, "Age,JobRole,Department,MonthlyIncome,AttritionProb,PerformanceProb\n"))
	assert.Contains(t, stderr, "Scored 2 of 2 rows")
}

func TestScoreCommand_ThresholdFlags(t *testing.T) {
	report := filepath.Join(t.TempDir(), "report.json")

	_, _, err := runCLI(t, "", scoreArgs(writeCSV(t, employeesCSV),
		"--output", filepath.Join(t.TempDir(), "out.csv"),
		"--report", report,
		"--attrition-threshold", "0", "--performance-threshold", "0")...)
	require.NoError(t, err)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var batch types.BatchReport
	require.NoError(t, json.Unmarshal(data, &batch))
	assert.Equal(t, 2, batch.Scored)
	assert.Equal(t, 2, batch.Priority, "every positive probability exceeds a zero threshold")
	for _, r := range batch.Results {
		assert.Equal(t, 0.0, r.AttritionThreshold)
		assert.True(t, r.IsPriority)
	}
}

func TestScoreCommand_RowErrorsExitPartial(t *testing.T) {
	body := employeesCSV + "35,5200,9,5,3,2,3,Yes,2,3,13,3,3,Unknown Role,Sales\n"

	stdout, stderr, err := runCLI(t, "", scoreArgs(writeCSV(t, body), "--output", filepath.Join(t.TempDir(), "out.csv"))...)
	require.Error(t, err)

	var rowErrs *RowErrorsError
	require.True(t, errors.As(err, &rowErrs))
	assert.Equal(t, 1, rowErrs.Failed)
	assert.Equal(t, 3, rowErrs.Total)
	assert.Equal(t, ExitPartial, exitCode(err))
	assert.Contains(t, stdout, "Scored 2 of 3 rows")
	assert.Contains(t, stderr, "row 3: encoding_error")
}

func TestScoreCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing input flag", []string{"score"}, `required flag(s) "input" not set`},
		{"input file absent", scoreArgs("/nonexistent/employees.csv"), "opening input"},
		{"threshold out of range", scoreArgs("-", "--attrition-threshold", "1.5"), "attrition_threshold"},
		{"unknown encoding", scoreArgs("-", "--encoding", "onehot"), "categorical_encoding"},
		{"model manifest absent", []string{"score", "--input", "-", "--attrition-model", "/nonexistent.yaml"}, "attrition model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, employeesCSV, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitError, exitCode(err))
		})
	}
}

func TestScoreCommand_ConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "attriwatch.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("attrition_threshold: 2\n"), 0o644))

	_, _, err := runCLI(t, employeesCSV, append([]string{"--config", cfgPath}, scoreArgs("-")...)...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}
