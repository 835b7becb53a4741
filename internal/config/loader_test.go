package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/tpi/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"TPI_CONFIG",
	"TPI_LOG_LEVEL",
	"TPI_LOG_FORMAT",
	"TPI_ADDR",
	"TPI_SCORE_WORKERS",
	"TPI_MAX_BATCH_ROWS",
	"TPI_RATE_LIMIT_RPS",
	"TPI_RATE_LIMIT_BURST",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tpi.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TPI_ADDR", ":8080")
			_ = os.Setenv("TPI_SCORE_WORKERS", "8")
			_ = os.Setenv("TPI_MAX_BATCH_ROWS", "500")
			_ = os.Setenv("TPI_RATE_LIMIT_RPS", "2.5")
			_ = os.Setenv("TPI_LOG_FORMAT", "json")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ScoreWorkers, convey.ShouldEqual, 8)
				convey.So(cfg.MaxBatchRows, convey.ShouldEqual, 500)
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.RateLimitBurst, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := createTempConfigFile(t, `
# scoring service
addr: ":9090"   # inline comment
log_level: debug
score_workers: 4
max_batch_rows: 2000
`)
			_ = os.Setenv("TPI_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML and keep defaults for the rest", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.ScoreWorkers, convey.ShouldEqual, 4)
				convey.So(cfg.MaxBatchRows, convey.ShouldEqual, 2000)
				convey.So(cfg.RateLimitBurst, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := createTempConfigFile(t, "addr: \":9090\"\nscore_workers: 4\n")
			_ = os.Setenv("TPI_CONFIG", path)
			_ = os.Setenv("TPI_SCORE_WORKERS", "16")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ScoreWorkers, convey.ShouldEqual, 16)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			path := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("TPI_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TPI_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("TPI_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("TPI_SCORE_WORKERS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with zero workers", func() {
			_ = os.Setenv("TPI_SCORE_WORKERS", "0")

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation should reject it", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
