// Package retention decides whether an employee is a retention priority:
// likely to leave and a high performer at the same time.
package retention

import (
	"errors"
	"fmt"
)

// Default thresholds.
const (
	DefaultAttritionThreshold   = 0.56
	DefaultPerformanceThreshold = 0.50
)

// Verdicts shown for a classified employee.
const (
	VerdictPriority    = "High performer at risk of leaving"
	VerdictNotPriority = "This employee is not a retention risk"
)

// ErrInvalidThreshold is returned by Thresholds.Validate.
var ErrInvalidThreshold = errors.New("invalid threshold")

// Thresholds are the two strict cutoffs.
type Thresholds struct {
	Attrition   float64 `json:"attrition_threshold"`
	Performance float64 `json:"performance_threshold"`
}

// Defaults returns the default thresholds.
func Defaults() Thresholds {
	return Thresholds{Attrition: DefaultAttritionThreshold, Performance: DefaultPerformanceThreshold}
}

// Validate requires both thresholds within [0,1].
func (t Thresholds) Validate() error {
	if t.Attrition < 0 || t.Attrition > 1 {
		return fmt.Errorf("%w: attrition threshold %v outside [0,1]", ErrInvalidThreshold, t.Attrition)
	}
	if t.Performance < 0 || t.Performance > 1 {
		return fmt.Errorf("%w: performance threshold %v outside [0,1]", ErrInvalidThreshold, t.Performance)
	}
	return nil
}

// Result is the classification of one employee.
type Result struct {
	AttritionProbability   float64    `json:"attrition_probability"`
	PerformanceProbability float64    `json:"performance_probability"`
	Thresholds             Thresholds `json:"thresholds"`
	IsPriority             bool       `json:"is_priority"`
	Verdict                string     `json:"verdict"`
}

// Classify flags a priority when both probabilities strictly exceed their
// thresholds. A probability equal to its threshold is not a priority.
func Classify(attr, perf float64, t Thresholds) Result {
	priority := attr > t.Attrition && perf > t.Performance
	verdict := VerdictNotPriority
	if priority {
		verdict = VerdictPriority
	}
	return Result{
		AttritionProbability:   attr,
		PerformanceProbability: perf,
		Thresholds:             t,
		IsPriority:             priority,
		Verdict:                verdict,
	}
}
