// Package advice turns attributed feature names into retention advice.
package advice

import (
	"fmt"
	"iter"
	"strings"

	"github.com/attriwatch/attriwatch/internal/domain/explain"
)

type rule struct {
	match string
	text  func(feature string) string
}

// rules are checked in order; the first case-sensitive substring match wins.
var rules = []rule{
	{"Satisfaction", func(f string) string {
		return fmt.Sprintf("Improve %s: schedule a one-on-one to address satisfaction drivers.", f)
	}},
	{"Promotion", func(string) string {
		return "Review promotion eligibility and internal mobility options."
	}},
	{"OverTime", func(string) string {
		return "Reduce overtime: rebalance workload or revisit the overtime policy."
	}},
	{"WorkLifeBalance", func(string) string {
		return "Offer flexible working arrangements to improve work-life balance."
	}},
}

// Advise yields one line per entry whose feature matches a rule. Unmatched
// features yield nothing.
func Advise(entries []explain.Entry) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range entries {
			for _, r := range rules {
				if !strings.Contains(e.Feature, r.match) {
					continue
				}
				if !yield(r.text(e.Feature)) {
					return
				}
				break
			}
		}
	}
}
