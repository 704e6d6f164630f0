package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/attriwatch/attriwatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.AttritionThreshold, convey.ShouldEqual, 0.56)
				convey.So(cfg.PerformanceThreshold, convey.ShouldEqual, 0.50)
				convey.So(cfg.AttritionModel, convey.ShouldEqual, "models/attrition.yaml")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ATTRIWATCH_ADDR", ":8080")
			_ = os.Setenv("ATTRIWATCH_ATTRITION_THRESHOLD", "0.7")
			_ = os.Setenv("ATTRIWATCH_ADVISORY_ENABLED", "false")
			_ = os.Setenv("ATTRIWATCH_CATEGORICAL_ENCODING", "factorize")
			_ = os.Setenv("ATTRIWATCH_BATCH_WORKERS", "3")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.AttritionThreshold, convey.ShouldEqual, 0.7)
				convey.So(cfg.AdvisoryEnabled, convey.ShouldBeFalse)
				convey.So(cfg.CategoricalEncoding, convey.ShouldEqual, config.EncodingFactorize)
				convey.So(cfg.BatchWorkers, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
performance_threshold: 0.6
attrition_model: /srv/models/attrition.yaml
explain_top_k: 3
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("ATTRIWATCH_CONFIG", tmpFile)
			_ = os.Setenv("ATTRIWATCH_ADDR", ":7070")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins over the file and the file wins over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.PerformanceThreshold, convey.ShouldEqual, 0.6)
				convey.So(cfg.AttritionModel, convey.ShouldEqual, "/srv/models/attrition.yaml")
				convey.So(cfg.PerformanceModel, convey.ShouldEqual, "models/performance.yaml")
				convey.So(cfg.ExplainTopK, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the file is named explicitly", func() {
			explicit := createTempConfigFile(`explain_top_k: 2`)
			ignored := createTempConfigFile(`explain_top_k: 9`)
			defer func() {
				_ = os.Remove(explicit)
				_ = os.Remove(ignored)
			}()
			_ = os.Setenv("ATTRIWATCH_CONFIG", ignored)

			cfg, err := config.Load(ctx, config.WithFile(explicit))

			convey.Convey("Then it takes precedence over ATTRIWATCH_CONFIG", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ExplainTopK, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("ATTRIWATCH_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ATTRIWATCH_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a threshold is out of range", func() {
			_ = os.Setenv("ATTRIWATCH_PERFORMANCE_THRESHOLD", "1.5")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "performance_threshold")
			})
		})

		convey.Convey("When the encoding mode is unknown", func() {
			_ = os.Setenv("ATTRIWATCH_CATEGORICAL_ENCODING", "onehot")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "categorical_encoding")
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ATTRIWATCH_EXPLAIN_TOP_K", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr in the file", func() {
			tmpFile := createTempConfigFile(`addr: ""`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("ATTRIWATCH_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"ATTRIWATCH_CONFIG",
		"ATTRIWATCH_ADDR",
		"ATTRIWATCH_ATTRITION_THRESHOLD",
		"ATTRIWATCH_PERFORMANCE_THRESHOLD",
		"ATTRIWATCH_ADVISORY_ENABLED",
		"ATTRIWATCH_CATEGORICAL_ENCODING",
		"ATTRIWATCH_BATCH_WORKERS",
		"ATTRIWATCH_EXPLAIN_TOP_K",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "attriwatch-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
