package config_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/okian/prioritise/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.SourceKind, convey.ShouldEqual, config.SourceSQLite)
			convey.So(cfg.SourceTable, convey.ShouldEqual, "clients")
			convey.So(cfg.ScoreWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.MaxListLimit, convey.ShouldEqual, 500)
			convey.So(cfg.ReloadInterval(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
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
			_ = os.Setenv("PRIO_ADDR", ":8080")
			_ = os.Setenv("PRIO_SOURCE_KIND", "csv")
			_ = os.Setenv("PRIO_SOURCE_PATH", "/data/clients.csv")
			_ = os.Setenv("PRIO_SCORE_WORKERS", "3")
			_ = os.Setenv("PRIO_RELOAD_INTERVAL_MS", "1500")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SourceKind, convey.ShouldEqual, config.SourceCSV)
				convey.So(cfg.SourcePath, convey.ShouldEqual, "/data/clients.csv")
				convey.So(cfg.ScoreWorkers, convey.ShouldEqual, 3)
				convey.So(cfg.ReloadInterval(), convey.ShouldEqual, 1500*time.Millisecond)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
# client source
addr: ":9090"
source_kind: sqlite
source_path: /var/lib/prio/clients.db
source_table: book
max_list_limit: 50
log_format: json
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PRIO_CONFIG", tmpFile)
			_ = os.Setenv("PRIO_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")                          // env
				convey.So(cfg.SourcePath, convey.ShouldEqual, "/var/lib/prio/clients.db") // file
				convey.So(cfg.SourceTable, convey.ShouldEqual, "book")                    // file
				convey.So(cfg.MaxListLimit, convey.ShouldEqual, 50)                       // file
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")                      // file
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")                       // default
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("PRIO_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PRIO_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("PRIO_SCORE_WORKERS", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file blanks the listen address", func() {
			tmpFile := createTempConfigFile(`addr: ""`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("PRIO_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the source kind is unknown", func() {
			_ = os.Setenv("PRIO_SOURCE_KIND", "postgres")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "source_kind")
			})
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		cases := map[string]func(*config.Config){
			"source_path":        func(c *config.Config) { c.SourcePath = " " },
			"source_table":       func(c *config.Config) { c.SourceTable = "" },
			"reload_interval_ms": func(c *config.Config) { c.ReloadIntervalMS = -1 },
			"max_list_limit":     func(c *config.Config) { c.MaxListLimit = 0 },
		}
		for field, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, field)
		}
	})

	convey.Convey("Given a csv source without a table", t, func() {
		cfg := config.New()
		cfg.SourceKind = config.SourceCSV
		cfg.SourceTable = ""
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"PRIO_CONFIG",
		"PRIO_ADDR",
		"PRIO_LOG_LEVEL",
		"PRIO_LOG_FORMAT",
		"PRIO_SOURCE_KIND",
		"PRIO_SOURCE_PATH",
		"PRIO_SOURCE_TABLE",
		"PRIO_RELOAD_INTERVAL_MS",
		"PRIO_SCORE_WORKERS",
		"PRIO_MAX_LIST_LIMIT",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "prio-config-*.yaml")
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
