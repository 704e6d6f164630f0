// Package explain attributes a model score to its input features.
//
// Models implementing scoring.Attributor are explained exactly. Any other
// model is explained by occlusion: each feature in turn is reset to its
// baseline and the drop in probability is its contribution.
package explain

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/internal/domain/scoring"
)

// Entry is one feature's signed contribution.
type Entry struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
}

// Explain returns the k entries with the largest absolute contribution,
// ties broken by feature name. k <= 0 keeps every entry.
func Explain(ctx context.Context, m scoring.Model, v features.Vector, k int) ([]Entry, error) {
	contrib, err := contributions(ctx, m, v)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(contrib))
	for i, c := range contrib {
		entries[i] = Entry{Feature: v.Names[i], Contribution: c}
	}
	Rank(entries)
	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}
	return entries, nil
}

// Rank sorts entries by descending absolute contribution, then by name.
func Rank(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(math.Abs(b.Contribution), math.Abs(a.Contribution)); c != 0 {
			return c
		}
		return cmp.Compare(a.Feature, b.Feature)
	})
}

func contributions(ctx context.Context, m scoring.Model, v features.Vector) ([]float64, error) {
	if len(v.Names) != v.Len() {
		return nil, &features.FeatureMismatchError{Model: m.Name(), Want: len(v.Names), Got: v.Len()}
	}
	if a, ok := m.(scoring.Attributor); ok {
		return a.Attributions(v)
	}

	baseline := make([]float64, v.Len())
	if b, ok := m.(scoring.Baseliner); ok {
		if got := b.Baseline(); len(got) == v.Len() {
			baseline = got
		}
	}

	full, err := scoring.Score(ctx, m, v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, v.Len())
	for i := range v.Values {
		p, err := scoring.Score(ctx, m, v.With(i, baseline[i]))
		if err != nil {
			return nil, fmt.Errorf("occlude %s: %w", v.Names[i], err)
		}
		out[i] = full - p
	}
	return out, nil
}
