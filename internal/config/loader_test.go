package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/swinglab/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

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
			_ = os.Setenv("SWING_ADDR", ":8080")
			_ = os.Setenv("SWING_QUEUE_SIZE", "64")
			_ = os.Setenv("SWING_WORKER_COUNT", "3")
			_ = os.Setenv("SWING_STORE_DRIVER", "sqlite")
			_ = os.Setenv("SWING_STORE_PATH", "/tmp/swings.db")
			_ = os.Setenv("SWING_CLASSIFIER_LATENCY_MIN_MS", "5")
			_ = os.Setenv("SWING_CLASSIFIER_LATENCY_MAX_MS", "15")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 3)
				convey.So(cfg.StoreDriver, convey.ShouldEqual, config.StoreSQLite)
				convey.So(cfg.StorePath, convey.ShouldEqual, "/tmp/swings.db")
				convey.So(cfg.ClassifierLatencyMinMS, convey.ShouldEqual, 5)
				convey.So(cfg.ClassifierLatencyMaxMS, convey.ShouldEqual, 15)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := writeConfig(t, `
# service settings
addr: ":9090"
log_format: json
queue_size: 300
worker_count: 6
max_observations: 240  # frames
store_capacity: 500
`)
			_ = os.Setenv("SWING_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 6)
				convey.So(cfg.MaxObservations, convey.ShouldEqual, 240)
				convey.So(cfg.StoreCapacity, convey.ShouldEqual, 500)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			})

			convey.Convey("And env vars override the file", func() {
				_ = os.Setenv("SWING_ADDR", ":8081")
				_ = os.Setenv("SWING_WORKER_COUNT", "12")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 12)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			_ = os.Setenv("SWING_CONFIG", writeConfig(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("SWING_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a value cannot be parsed", func() {
			_ = os.Setenv("SWING_QUEUE_SIZE", "lots")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the merged config is invalid", func() {
			_ = os.Setenv("SWING_CONFIG", writeConfig(t, "addr: \"\"\n"))

			cfg, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When sqlite is selected without a path", func() {
			_ = os.Setenv("SWING_STORE_DRIVER", "sqlite")
			_ = os.Setenv("SWING_STORE_PATH", "")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, config.EnvPrefix) {
			_ = os.Unsetenv(name)
		}
	}
}

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "swinglab.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
