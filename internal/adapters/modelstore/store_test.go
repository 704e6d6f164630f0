package modelstore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/attriwatch/attriwatch/internal/domain/employee"
	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/internal/domain/scoring"
	"github.com/attriwatch/attriwatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const linearManifest = `
name: toy
version: "1"
format: linear
features:
  - name: a
  - name: renamed
    sources: [b]
baseline:
  a: 1
linear:
  intercept: 0
  coefficients:
    a: 1
    renamed: -1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestLoad(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	ctx := context.Background()

	Convey("Given a linear manifest on disk", t, func() {
		dir := t.TempDir()
		path := writeFile(t, dir, "toy.yaml", linearManifest)

		Convey("When it is loaded", func() {
			loaded, err := Load(ctx, path)
			So(err, ShouldBeNil)
			defer func() { _ = loaded.Close() }()

			Convey("Then the model scores projected vectors", func() {
				vec, err := loaded.Model.Schema().Project(features.Augmented{"a": 2, "b": 2})
				So(err, ShouldBeNil)
				p, err := scoring.Score(ctx, loaded.Model, vec)
				So(err, ShouldBeNil)
				So(p, ShouldEqual, 0.5)
				So(scoring.Describe(loaded.Model), ShouldResemble, scoring.Info{Name: "toy", Version: "1", Format: "linear"})
				So(loaded.Vocabulary, ShouldBeNil)
			})
		})
	})

	Convey("Given the shipped sample models", t, func() {
		attr, err := Load(ctx, filepath.Join("..", "..", "..", "models", "attrition.yaml"))
		So(err, ShouldBeNil)
		perf, err := Load(ctx, filepath.Join("..", "..", "..", "models", "performance.yaml"))
		So(err, ShouldBeNil)

		Convey("Then a CSV-style record scores through both", func() {
			So(attr.Vocabulary, ShouldNotBeNil)
			rec := employee.Record{
				"Age": employee.Number(30), "MonthlyIncome": employee.Number(5000),
				"TotalWorkingYears": employee.Number(5), "YearsAtCompany": employee.Number(3),
				"JobSatisfaction": employee.Number(4), "EnvironmentSatisfaction": employee.Number(3),
				"RelationshipSatisfaction": employee.Number(2), "OverTime": employee.Text("Yes"),
				"YearsSinceLastPromotion": employee.Number(1), "YearsWithCurrManager": employee.Number(2),
				"PercentSalaryHike": employee.Number(10), "WorkLifeBalance": employee.Number(2),
				"YearsInCurrentRole": employee.Number(3), "Department": employee.Text("Sales"),
			}
			aug, err := features.Derive(rec, attr.Vocabulary)
			So(err, ShouldBeNil)
			So(aug["OverTime"], ShouldEqual, 1)

			for _, m := range []scoring.Model{attr.Model, perf.Model} {
				vec, err := m.Schema().Project(aug)
				So(err, ShouldBeNil)
				p, err := scoring.Score(ctx, m, vec)
				So(err, ShouldBeNil)
				So(p, ShouldBeBetween, 0, 1)
			}
		})
	})

	Convey("Given broken inputs", t, func() {
		dir := t.TempDir()

		Convey("A missing file is a ModelLoadError", func() {
			_, err := Load(ctx, filepath.Join(dir, "nope.yaml"))
			var loadErr *ModelLoadError
			So(errors.As(err, &loadErr), ShouldBeTrue)
			So(errors.Is(err, ErrModelLoad), ShouldBeTrue)
			So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
		})

		Convey("An unknown key is rejected", func() {
			path := writeFile(t, dir, "typo.yaml", linearManifest+"\nfeaturez: []\n")
			_, err := Load(ctx, path)
			So(errors.Is(err, ErrModelLoad), ShouldBeTrue)
		})

		Convey("An unknown format is rejected", func() {
			path := writeFile(t, dir, "fmt.yaml", "name: x\nformat: xgboost\nfeatures: [{name: a}]\n")
			_, err := Load(ctx, path)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "unknown format")
		})

		Convey("A coefficient mismatch names the model", func() {
			path := writeFile(t, dir, "coef.yaml", "name: x\nformat: linear\nfeatures: [{name: a}]\nlinear: {intercept: 0, coefficients: {b: 1}}\n")
			_, err := Load(ctx, path)
			var loadErr *ModelLoadError
			So(errors.As(err, &loadErr), ShouldBeTrue)
			So(loadErr.Model, ShouldEqual, "x")
			So(errors.Is(err, scoring.ErrInvalidModel), ShouldBeTrue)
		})

		Convey("A missing onnx artifact fails before touching the runtime", func() {
			path := writeFile(t, dir, "onnx.yaml", "name: x\nformat: onnx\nartifact: missing.onnx\nfeatures: [{name: a}]\n")
			_, err := Load(ctx, path)
			So(errors.Is(err, ErrModelLoad), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "artifact missing")
		})

		Convey("A missing vocabulary file fails", func() {
			path := writeFile(t, dir, "voc.yaml", linearManifest+"vocabulary: absent.yaml\n")
			_, err := Load(ctx, path)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "read vocabulary")
		})
	})
}

func TestManifest(t *testing.T) {
	Convey("Given an onnx manifest without output settings", t, func() {
		m, err := ParseManifest([]byte("name: x\nformat: onnx\nartifact: m.onnx\nfeatures: [{name: a}, {name: b}]\nbaseline: {b: 2}\n"))
		So(err, ShouldBeNil)

		Convey("Then defaults apply", func() {
			So(m.Input, ShouldEqual, "float_input")
			So(m.Output, ShouldEqual, "probabilities")
			So(m.OutputTransform, ShouldEqual, TransformProbabilities)
			So(m.Positive(), ShouldEqual, 1)
			So(m.BaselineVector(), ShouldResemble, []float64{0, 2})
		})
	})

	Convey("Given an explicit negative-first positive class", t, func() {
		m, err := ParseManifest([]byte("name: x\nformat: onnx\nartifact: m.onnx\npositive_class: 0\nfeatures: [{name: a}]\n"))
		So(err, ShouldBeNil)
		So(m.Positive(), ShouldEqual, 0)
	})

	Convey("Given duplicate features", t, func() {
		_, err := ParseManifest([]byte("name: x\nformat: linear\nfeatures: [{name: a}, {name: a}]\nlinear: {intercept: 0}\n"))
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "duplicate feature")
	})
}

func TestVocabularyFiles(t *testing.T) {
	Convey("Given a frozen vocabulary", t, func() {
		v := &features.Vocabulary{Version: "v7", Columns: map[string]map[string]int{"OverTime": {"Yes": 0, "No": 1}}}
		var buf bytes.Buffer
		So(WriteVocabulary(&buf, v), ShouldBeNil)

		Convey("Then it reads back from disk", func() {
			path := writeFile(t, t.TempDir(), "v.yaml", buf.String())
			got, err := LoadVocabulary(path)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, v)
		})

		Convey("Then a versionless file is rejected", func() {
			path := writeFile(t, t.TempDir(), "v.yaml", "columns: {}\n")
			_, err := LoadVocabulary(path)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestResolveSharedLibraryPath(t *testing.T) {
	Convey("Given library path settings", t, func() {
		Convey("The environment variable wins", func() {
			t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "/env/libonnxruntime.so")
			So(resolveSharedLibraryPath("/cfg/lib.so", ""), ShouldEqual, "/env/libonnxruntime.so")
		})

		Convey("The configured path is used next", func() {
			t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "")
			So(resolveSharedLibraryPath("/cfg/lib.so", ""), ShouldEqual, "/cfg/lib.so")
		})

		Convey("A library beside the artifact is found", func() {
			t.Setenv("ONNXRUNTIME_SHARED_LIBRARY_PATH", "")
			dir := t.TempDir()
			lib := writeFile(t, dir, "libonnxruntime.so", "")
			So(resolveSharedLibraryPath("", dir), ShouldEqual, lib)
		})
	})
}
