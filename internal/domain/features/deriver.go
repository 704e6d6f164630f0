// Package features turns raw employee records into the numeric feature
// records the scoring models consume.
//
// Derivation is a pure function of the record and the encoder: ignored
// columns are dropped, text is encoded, required inputs are checked and six
// derived ratios and flags are added. Absent or invalid inputs are reported,
// never defaulted.
package features

import (
	"fmt"
	"math"
	"slices"

	"github.com/attriwatch/attriwatch/internal/domain/employee"
)

const (
	minSatisfaction = 1
	maxSatisfaction = 4
	// promotedWithinYears is the exclusive bound for RecentlyPromoted.
	promotedWithinYears = 2
)

// Augmented is an encoded record: kept raw fields plus derived fields.
type Augmented map[string]float64

// RowResult is the outcome of deriving one table row. Row is 1-based.
type RowResult struct {
	Row      int
	Features Augmented
	Err      error
}

// Derive encodes rec and appends the derived features. A nil encoder
// accepts numeric values only.
func Derive(rec employee.Record, enc Encoder) (Augmented, error) {
	if enc == nil {
		enc = (*Vocabulary)(nil)
	}
	for _, name := range Required {
		if _, ok := rec[name]; !ok {
			return nil, &MissingFieldError{Field: name}
		}
	}

	cols := make([]string, 0, len(rec))
	for col := range rec {
		if !Ignored(col) {
			cols = append(cols, col)
		}
	}
	slices.Sort(cols)

	out := make(Augmented, len(cols)+len(Derived))
	for _, col := range cols {
		f, err := enc.Encode(col, rec[col])
		if err != nil {
			return nil, err
		}
		out[col] = f
	}
	if err := validate(out); err != nil {
		return nil, err
	}

	out[TenureAgeRatio] = out[YearsAtCompany] / (out[Age] + 1)
	out[IncomeTenureRatio] = out[MonthlyIncome] / (out[TotalWorkingYears] + 1)
	out[OvertimeSatisfactionProduct] = out[OverTime] * out[JobSatisfaction]
	out[AvgSatisfaction] = (out[EnvironmentSatisfaction] + out[JobSatisfaction] + out[RelationshipSatisfaction]) / 3
	out[RecentlyPromoted] = 0
	if out[YearsSinceLastPromotion] < promotedWithinYears {
		out[RecentlyPromoted] = 1
	}
	out[ManagerTenureRatio] = out[YearsWithCurrManager] / (out[YearsAtCompany] + 1)
	return out, nil
}

// DeriveBatch derives every row of t. A failing row, including one rejected
// while parsing, carries its error in its own slot; other rows are unaffected.
func DeriveBatch(t employee.Table, enc Encoder) []RowResult {
	out := make([]RowResult, len(t.Rows))
	for i, rec := range t.Rows {
		if err := t.RowErr(i); err != nil {
			out[i] = RowResult{Row: i + 1, Err: err}
			continue
		}
		aug, err := Derive(rec, enc)
		out[i] = RowResult{Row: i + 1, Features: aug, Err: err}
	}
	return out
}

func validate(a Augmented) error {
	for _, name := range Required {
		v := a[name]
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return &InvalidFieldError{Field: name, Reason: "must be finite"}
		case v < 0:
			return &InvalidFieldError{Field: name, Reason: fmt.Sprintf("must be non-negative, got %v", v)}
		}
	}
	for _, name := range satisfactionFields {
		if v := a[name]; v < minSatisfaction || v > maxSatisfaction {
			return &InvalidFieldError{
				Field:  name,
				Reason: fmt.Sprintf("must be within [%d,%d], got %v", minSatisfaction, maxSatisfaction, v),
			}
		}
	}
	if v := a[OverTime]; v != 0 && v != 1 {
		return &InvalidFieldError{Field: OverTime, Reason: fmt.Sprintf("must encode to 0 or 1, got %v", v)}
	}
	return nil
}
