package features

import (
	"maps"
	"slices"

	"github.com/attriwatch/attriwatch/internal/domain/employee"
)

// Encoder maps a raw cell to the numeric value a model consumes.
type Encoder interface {
	Encode(column string, v employee.Value) (float64, error)
}

// Vocabulary is a frozen, versioned category-to-code mapping. Numeric values
// pass through unchanged; text must appear in the column's mapping.
// A nil *Vocabulary accepts numbers only.
type Vocabulary struct {
	Version string                    `yaml:"version" json:"version"`
	Columns map[string]map[string]int `yaml:"columns" json:"columns"`
}

// Encode implements Encoder.
func (v *Vocabulary) Encode(column string, val employee.Value) (float64, error) {
	if f, ok := val.Float(); ok {
		return f, nil
	}
	if v != nil {
		if code, ok := v.Columns[column][val.String()]; ok {
			return float64(code), nil
		}
	}
	return 0, &EncodingError{Field: column, Value: val.String()}
}

// Factorizer assigns codes by first occurrence within one table. Any column
// holding at least one text value is factorized as a whole, numbers included.
// Codes are only meaningful within the table they were built from.
type Factorizer struct {
	codes map[string]map[string]int
}

// NewFactorizer scans t and assigns first-occurrence codes.
func NewFactorizer(t employee.Table) *Factorizer {
	codes := make(map[string]map[string]int)
	for _, col := range textColumns(t) {
		m := make(map[string]int)
		for _, row := range t.Rows {
			v, ok := row[col]
			if !ok {
				continue
			}
			if _, seen := m[v.String()]; !seen {
				m[v.String()] = len(m)
			}
		}
		codes[col] = m
	}
	return &Factorizer{codes: codes}
}

// Encode implements Encoder.
func (f *Factorizer) Encode(column string, val employee.Value) (float64, error) {
	if m, ok := f.codes[column]; ok {
		if code, ok := m[val.String()]; ok {
			return float64(code), nil
		}
		return 0, &EncodingError{Field: column, Value: val.String()}
	}
	if n, ok := val.Float(); ok {
		return n, nil
	}
	return 0, &EncodingError{Field: column, Value: val.String()}
}

// Vocabulary freezes the factorized codes. When columns is empty every
// factorized column is kept.
func (f *Factorizer) Vocabulary(version string, columns ...string) *Vocabulary {
	out := &Vocabulary{Version: version, Columns: make(map[string]map[string]int)}
	for col, m := range f.codes {
		if len(columns) > 0 && !slices.Contains(columns, col) {
			continue
		}
		out.Columns[col] = m
	}
	return out
}

// textColumns returns kept columns with any text value, in header order.
// Without a header the row keys are used, sorted.
func textColumns(t employee.Table) []string {
	header := t.Columns
	if len(header) == 0 {
		keys := make(map[string]struct{})
		for _, row := range t.Rows {
			for k := range row {
				keys[k] = struct{}{}
			}
		}
		header = slices.Sorted(maps.Keys(keys))
	}
	var cols []string
	for _, col := range header {
		if Ignored(col) {
			continue
		}
		for _, row := range t.Rows {
			if v, ok := row[col]; ok && v.IsText() {
				cols = append(cols, col)
				break
			}
		}
	}
	return cols
}
