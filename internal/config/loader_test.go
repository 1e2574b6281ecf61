package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/folio/internal/config"
	"github.com/okian/folio/internal/domain/excerpt"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			t.Setenv("FOLIO_ADDR", ":8080")
			t.Setenv("FOLIO_QUEUE_SIZE", "64")
			t.Setenv("FOLIO_WORKER_COUNT", "16")
			t.Setenv("FOLIO_CMS__PROJECT_ID", "abc123")
			t.Setenv("FOLIO_CMS__USE_CDN", "false")
			t.Setenv("FOLIO_WORKS__PER_PAGE", "9")
			t.Setenv("FOLIO_WORKS__EXPANSION_KEY", "item")
			t.Setenv("FOLIO_EFFECTS__CARD__DELAY", "0.25")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults, nested keys included", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.CMS.ProjectID, convey.ShouldEqual, "abc123")
				convey.So(cfg.CMS.UseCDN, convey.ShouldBeFalse)
				convey.So(cfg.CMS.Dataset, convey.ShouldEqual, "production")
				convey.So(cfg.Works.PerPage, convey.ShouldEqual, 9)
				convey.So(cfg.Works.DescriptionMax, convey.ShouldEqual, 250)
				convey.So(cfg.KeyMode(), convey.ShouldEqual, excerpt.KeyByItem)
				convey.So(cfg.Effects.Card.Delay, convey.ShouldEqual, 0.25)
				convey.So(cfg.Effects.Card.Duration, convey.ShouldEqual, 0.75)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			path := createTempConfigFile(t, `
# local content
addr: ":9090"  # inline comment
content_source: sqlite
sqlite_path: /tmp/folio-test.db
cms:
  dataset: staging
works:
  per_page: 3
effects:
  tilt:
    max: 10
`)
			t.Setenv("FOLIO_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.ContentSource, convey.ShouldEqual, config.SourceSQLite)
				convey.So(cfg.ValidateSource(), convey.ShouldBeNil)
				convey.So(cfg.CMS.Dataset, convey.ShouldEqual, "staging")
				convey.So(cfg.CMS.APIVersion, convey.ShouldEqual, "2022-02-01")
				convey.So(cfg.Works.PerPage, convey.ShouldEqual, 3)
				convey.So(cfg.Effects.Tilt.Max, convey.ShouldEqual, 10)
				convey.So(cfg.Effects.Tilt.Speed, convey.ShouldEqual, 450)
			})

			convey.Convey("And environment variables are set too", func() {
				t.Setenv("FOLIO_ADDR", ":7070")
				cfg, err := config.Load(ctx)

				convey.Convey("Then environment variables win", func() {
					convey.So(err, convey.ShouldBeNil)
					convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
					convey.So(cfg.Works.PerPage, convey.ShouldEqual, 3)
				})
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			t.Setenv("FOLIO_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			t.Setenv("FOLIO_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			t.Setenv("FOLIO_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr (required)")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			t.Setenv("FOLIO_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown content source", func() {
			t.Setenv("FOLIO_CONTENT_SOURCE", "ftp")

			_, err := config.Load(ctx)

			convey.Convey("Then it should name the field", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "contentsource (oneof)")
			})
		})
	})
}

func TestLoadDotEnv(t *testing.T) {
	convey.Convey("Given a .env file", t, func() {
		clearConfigEnvVars()
		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		convey.So(os.WriteFile(path, []byte("FOLIO_DOTENV_PROBE=from-file\n"), 0o600), convey.ShouldBeNil)
		defer func() { _ = os.Unsetenv("FOLIO_DOTENV_PROBE") }()

		convey.Convey("Then its variables are exported", func() {
			convey.So(config.LoadDotEnv(path), convey.ShouldBeNil)
			convey.So(os.Getenv("FOLIO_DOTENV_PROBE"), convey.ShouldEqual, "from-file")
		})

		convey.Convey("Then missing files are ignored", func() {
			convey.So(config.LoadDotEnv(filepath.Join(dir, "absent.env")), convey.ShouldBeNil)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				if name := kv[:i]; len(name) > len(config.EnvPrefix) && name[:len(config.EnvPrefix)] == config.EnvPrefix {
					_ = os.Unsetenv(name)
				}
				break
			}
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folio-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
