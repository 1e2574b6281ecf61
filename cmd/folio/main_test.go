package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/folio/internal/adapters/cms"
	"github.com/okian/folio/internal/adapters/http/site"
	"github.com/okian/folio/internal/adapters/repository"
	service "github.com/okian/folio/internal/app"
	"github.com/okian/folio/internal/config"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

const portfolioYAML = `
experiences:
  - _id: e1
    date: "2021 - now"
    works:
      - name: Engineer
        company: Acme
skills:
  - {_id: s1, name: Go}
  - {_id: s2, name: SQL}
works:
  - _id: w1
    title: folio
    description: Portfolio server
    tags: [go, sqlite]
`

// execute runs the root command with args and returns what it printed.
func execute(args ...string) (string, error) {
	configPath, envFiles = "", nil
	importDB, importMerge, snapshotOut = "", false, ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestImportAndSnapshot(t *testing.T) {
	convey.Convey("Given an empty SQLite store", t, func() {
		db := filepath.Join(t.TempDir(), "folio.db")
		t.Setenv("FOLIO_SQLITE_PATH", db)
		t.Setenv("FOLIO_CONTENT_SOURCE", config.SourceSQLite)
		file := writeFile(t, "portfolio.yaml", portfolioYAML)

		convey.Convey("When a document file is imported", func() {
			out, err := execute("import", file)

			convey.Convey("Then every type is stored", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "experiences")
				convey.So(out, convey.ShouldContainSubstring, "2 imported, 2 stored")

				store, err := repository.Open(context.Background(), db, repository.WithMetricsUpdateInterval(0))
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = store.Close() }()
				n, err := store.Count(context.Background(), model.TagWorks)
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 1)
			})

			convey.Convey("And importing again replaces instead of duplicating", func() {
				out, err := execute("import", file)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "2 imported, 2 stored")
			})

			convey.Convey("And a snapshot reads it back", func() {
				dump := filepath.Join(t.TempDir(), "snapshot.json")
				out, err := execute("snapshot", "--out", dump)
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "skills")
				convey.So(strings.Count(out, " ok"), convey.ShouldEqual, 3)

				f, err := os.Open(dump)
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = f.Close() }()
				docs, err := repository.ReadDocuments(f)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(docs[model.TagSkills]), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a merge import adds a document", func() {
			_, err := execute("import", file)
			convey.So(err, convey.ShouldBeNil)
			extra := writeFile(t, "extra.yaml", "- {_id: s3, _type: skills, name: Docker}\n")
			out, err := execute("import", "--merge", extra)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "1 imported, 3 stored")
		})

		convey.Convey("When a file without ids is merged twice", func() {
			idless := writeFile(t, "idless.yaml", "works:\n  - {title: a}\n  - {title: b}\n")
			_, err := execute("import", "--merge", idless)
			convey.So(err, convey.ShouldBeNil)
			out, err := execute("import", "--merge", idless)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "2 imported, 2 stored")
		})

		convey.Convey("When the file is malformed", func() {
			bad := writeFile(t, "bad.yaml", "projects: []\n")
			_, err := execute("import", bad)
			convey.So(errors.Is(err, repository.ErrInvalidDocument), convey.ShouldBeTrue)
		})

		convey.Convey("When a document has the wrong shape", func() {
			bad := writeFile(t, "shape.yaml", "skills:\n  - {_id: s1, name: [Go]}\n")
			_, err := execute("import", bad)
			var serr *repository.SchemaError
			convey.So(errors.As(err, &serr), convey.ShouldBeTrue)
			convey.So(serr.ID, convey.ShouldEqual, "s1")
		})

		convey.Convey("When the file is missing", func() {
			_, err := execute("import", filepath.Join(t.TempDir(), "nope.yaml"))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestConfigErrors(t *testing.T) {
	convey.Convey("Given an invalid environment", t, func() {
		t.Setenv("FOLIO_QUEUE_SIZE", "0")

		convey.Convey("Then every command fails before running", func() {
			_, err := execute("snapshot")
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given the sanity source without a project", t, func() {
		t.Setenv("FOLIO_CONTENT_SOURCE", config.SourceSanity)
		t.Setenv("FOLIO_CMS__PROJECT_ID", "")

		convey.Convey("Then the source cannot be opened", func() {
			_, err := execute("snapshot")
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestOpenSource(t *testing.T) {
	convey.Convey("Given a default configuration", t, func() {
		ctx := context.Background()
		c := config.New(ctx)

		convey.Convey("When the sanity source has a project", func() {
			c.CMS.ProjectID = "abc123"
			src, images, closer, err := openSource(ctx, c)
			convey.So(err, convey.ShouldBeNil)
			convey.So(closer.Close(), convey.ShouldBeNil)
			_, ok := src.(*cms.Client)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(images.URL(model.ImageRef{Ref: "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg"}),
				convey.ShouldEqual, "https://cdn.sanity.io/images/abc123/production/Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000.jpg")
		})

		convey.Convey("When the sqlite source is selected", func() {
			c.ContentSource = config.SourceSQLite
			c.SQLitePath = filepath.Join(t.TempDir(), "folio.db")
			src, _, closer, err := openSource(ctx, c)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = closer.Close() }()
			_, ok := src.(*repository.SQLiteStore)
			convey.So(ok, convey.ShouldBeTrue)
		})
	})
}

func TestServeHandler(t *testing.T) {
	convey.Convey("Given a started service behind the full handler", t, func() {
		ctx := context.Background()
		c := config.New(ctx)
		c.RenderWaitMS = 500

		store := repository.NewMemoryStore(ctx, repository.WithMetricsUpdateInterval(0))
		docs, err := repository.ReadDocuments(strings.NewReader(portfolioYAML))
		convey.So(err, convey.ShouldBeNil)
		for tag, list := range docs {
			convey.So(store.Replace(ctx, tag, list...), convey.ShouldBeNil)
		}

		svc := newService(c, store, cms.NewImages("", "abc123", "production"), logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()
		h := newHandler(ctx, c, svc)

		get := func(method, path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(method, path, http.NoBody))
			return w
		}

		convey.Convey("Then the page renders and mounts a view", func() {
			w := get(http.MethodGet, "/")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			convey.So(w.Header().Get("Set-Cookie"), convey.ShouldContainSubstring, site.CookieName+"=")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "folio")
			convey.So(svc.Stats().Views, convey.ShouldEqual, 1)
		})

		convey.Convey("Then the API, docs and metrics are routed", func() {
			convey.So(get(http.MethodPost, "/api/views").Code, convey.ShouldEqual, http.StatusCreated)
			convey.So(get(http.MethodGet, "/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodGet, "/openapi.json").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodGet, "/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodGet, "/stats").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get(http.MethodGet, "/static/site.css").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the service gauges can be refreshed", func() {
			convey.So(func() { updateServiceMetrics(svc.Stats()) }, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(service.Stats{}) }, convey.ShouldNotPanic)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metrics updaters", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then they return when the context ends", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, service.New()) }, convey.ShouldNotPanic)
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
