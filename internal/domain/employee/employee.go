// Package employee holds raw HR records as they arrive from a CSV upload or
// the manual entry form, before any encoding or feature derivation.
package employee

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a scalar cell: either numeric or free text.
type Value struct {
	num    float64
	text   string
	isText bool
}

// Number returns a numeric Value.
func Number(f float64) Value { return Value{num: f} }

// Text returns a textual Value.
func Text(s string) Value { return Value{text: s, isText: true} }

// Parse interprets a CSV cell. Cells that parse as a finite float are numeric,
// everything else is text. Surrounding whitespace is ignored.
func Parse(s string) Value {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Number(f)
	}
	return Text(s)
}

// IsText reports whether v holds text.
func (v Value) IsText() bool { return v.isText }

// Float returns the numeric value; ok is false for text.
func (v Value) Float() (f float64, ok bool) {
	if v.isText {
		return 0, false
	}
	return v.num, true
}

// String renders v the way it would appear in a CSV cell.
func (v Value) String() string {
	if v.isText {
		return v.text
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

// MarshalJSON encodes numbers as JSON numbers and text as JSON strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isText {
		return json.Marshal(v.text)
	}
	return json.Marshal(v.num)
}

// UnmarshalJSON accepts a JSON number or string. Booleans map to 1 and 0.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case float64:
		*v = Number(t)
	case string:
		*v = Text(t)
	case bool:
		if t {
			*v = Number(1)
		} else {
			*v = Number(0)
		}
	default:
		return fmt.Errorf("unsupported value %s", string(data))
	}
	return nil
}

// Record maps column name to value. A missing key is an absent field.
type Record map[string]Value

// Get returns the named value.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r[name]
	return v, ok
}

// Table is an ordered set of records sharing one header.
type Table struct {
	Columns []string
	Rows    []Record
	// Rejected holds row-level parse errors keyed by row index. A rejected
	// row keeps its slot in Rows so positions stay aligned with the input.
	Rejected map[int]error
}

// RowErr returns the parse error recorded for row i, if any.
func (t Table) RowErr(i int) error { return t.Rejected[i] }

// Reject records err for row i.
func (t *Table) Reject(i int, err error) {
	if t.Rejected == nil {
		t.Rejected = make(map[int]error)
	}
	t.Rejected[i] = err
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }
