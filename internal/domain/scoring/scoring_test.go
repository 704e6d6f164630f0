package scoring

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/attriwatch/attriwatch/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

type fixedModel struct {
	p      float64
	schema features.Schema
}

func (m fixedModel) Name() string            { return "fixed" }
func (m fixedModel) Schema() features.Schema { return m.schema }
func (m fixedModel) ScoreProbability(context.Context, features.Vector) (float64, error) {
	return m.p, nil
}

func twoFeatureSchema() features.Schema {
	return features.Schema{Features: []features.Feature{{Name: "a"}, {Name: "b"}}}
}

func TestLinear(t *testing.T) {
	Convey("Given a linear model", t, func() {
		ctx := context.Background()
		m, err := NewLinear("attrition", twoFeatureSchema(), -1,
			map[string]float64{"a": 2, "b": -0.5},
			WithVersion("v3"),
			WithBaseline(map[string]float64{"a": 1}),
		)
		So(err, ShouldBeNil)

		Convey("Then it scores sigmoid of the logit", func() {
			p, err := m.ScoreProbability(ctx, features.Vector{Names: []string{"a", "b"}, Values: []float64{1, 2}})
			So(err, ShouldBeNil)
			So(p, ShouldAlmostEqual, Sigmoid(-1+2-1), 1e-12)
			So(p, ShouldEqual, 0.5)
		})

		Convey("Then exact attributions are relative to the baseline", func() {
			attr, err := m.Attributions(features.Vector{Names: []string{"a", "b"}, Values: []float64{3, 2}})
			So(err, ShouldBeNil)
			So(attr, ShouldResemble, []float64{4, -1})
		})

		Convey("Then metadata is reported", func() {
			So(Describe(m), ShouldResemble, Info{Name: "attrition", Version: "v3", Format: FormatLinear})
			So(m.Schema().Model, ShouldEqual, "attrition")
			So(m.Baseline(), ShouldResemble, []float64{1, 0})
		})

		Convey("Then a short vector is a feature mismatch", func() {
			_, err := m.ScoreProbability(ctx, features.Vector{Values: []float64{1}})
			So(errors.Is(err, features.ErrFeatureMismatch), ShouldBeTrue)
		})

		Convey("Then a cancelled context stops scoring", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := m.ScoreProbability(cctx, features.Vector{Values: []float64{1, 2}})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given inconsistent coefficients", t, func() {
		_, err := NewLinear("x", twoFeatureSchema(), 0, map[string]float64{"a": 1, "c": 1})
		So(errors.Is(err, ErrInvalidModel), ShouldBeTrue)
		_, err = NewLinear("x", twoFeatureSchema(), 0, map[string]float64{"a": 1})
		So(errors.Is(err, ErrInvalidModel), ShouldBeTrue)
		_, err = NewLinear("x", features.Schema{}, 0, nil)
		So(errors.Is(err, ErrInvalidModel), ShouldBeTrue)
	})
}

func TestScore(t *testing.T) {
	Convey("Given the scoring wrapper", t, func() {
		ctx := context.Background()
		vec := features.Vector{Names: []string{"a", "b"}, Values: []float64{0, 0}}

		Convey("Then probabilities are clamped", func() {
			p, err := Score(ctx, fixedModel{p: 1.2, schema: twoFeatureSchema()}, vec)
			So(err, ShouldBeNil)
			So(p, ShouldEqual, 1)
			p, _ = Score(ctx, fixedModel{p: -0.1, schema: twoFeatureSchema()}, vec)
			So(p, ShouldEqual, 0)
		})

		Convey("Then NaN is rejected", func() {
			_, err := Score(ctx, fixedModel{p: math.NaN(), schema: twoFeatureSchema()}, vec)
			So(errors.Is(err, ErrInvalidProbability), ShouldBeTrue)
		})

		Convey("Then a vector in the wrong order is rejected", func() {
			_, err := Score(ctx, fixedModel{schema: twoFeatureSchema()}, features.Vector{Names: []string{"b", "a"}, Values: []float64{0, 0}})
			So(errors.Is(err, features.ErrFeatureMismatch), ShouldBeTrue)
		})

		Convey("Then models without metadata are described by name", func() {
			So(Describe(fixedModel{}).Name, ShouldEqual, "fixed")
		})
	})
}
