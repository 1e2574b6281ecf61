// Package config defines service configuration structures and loading hooks.
//
// Configuration is layered: defaults from New, then an optional YAML file,
// then FOLIO_ environment variables. Nested keys use a double underscore in
// the environment, e.g. FOLIO_CMS__PROJECT_ID.
package config

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/folio/internal/domain/effects"
	"github.com/okian/folio/internal/domain/excerpt"
	"github.com/okian/folio/internal/domain/paging"
)

// Content sources.
const (
	SourceSanity = "sanity"
	SourceSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// ContentSource selects where records come from: sanity or sqlite.
	ContentSource string `koanf:"content_source" validate:"oneof=sanity sqlite"`

	CMS CMS `koanf:"cms"`

	// SQLitePath is the local document database, used by the sqlite source
	// and by the import command.
	SQLitePath string `koanf:"sqlite_path"`

	// QueueSize bounds the pending section loads.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`

	// WorkerCount sets the number of loader workers; 0 scales with CPUs.
	WorkerCount int `koanf:"worker_count" validate:"gte=0"`

	// MaxViews caps the mounted views; the least recently used is evicted.
	MaxViews int `koanf:"max_views" validate:"gte=0"`

	// ViewTTLSec expires views idle for longer; 0 disables expiry.
	ViewTTLSec int `koanf:"view_ttl_sec" validate:"gte=0"`

	// SweepIntervalSec is how often expired views are collected.
	SweepIntervalSec int `koanf:"sweep_interval_sec" validate:"gt=0"`

	// RenderWaitMS is how long the HTML page waits for pending sections.
	RenderWaitMS int `koanf:"render_wait_ms" validate:"gte=0"`

	// SecureCookie marks the view cookie Secure; enable behind TLS.
	SecureCookie bool `koanf:"secure_cookie"`

	// ShutdownTimeoutSec bounds graceful shutdown.
	ShutdownTimeoutSec int `koanf:"shutdown_timeout_sec" validate:"gt=0"`

	Works Works `koanf:"works"`

	Effects effects.Config `koanf:"effects"`
}

// CMS configures the Sanity query client.
type CMS struct {
	ProjectID  string `koanf:"project_id"`
	Dataset    string `koanf:"dataset" validate:"required"`
	APIVersion string `koanf:"api_version" validate:"required"`
	Token      string `koanf:"token"`
	UseCDN     bool   `koanf:"use_cdn"`
	TimeoutMS  int    `koanf:"timeout_ms" validate:"gt=0"`
	// BaseURL overrides the API host.
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
	// ImageBaseURL overrides the asset CDN host.
	ImageBaseURL string `koanf:"image_base_url" validate:"omitempty,url"`
}

// Works configures the project list.
type Works struct {
	PerPage        int    `koanf:"per_page" validate:"gt=0"`
	DescriptionMax int    `koanf:"description_max" validate:"gt=0"`
	ExpansionKey   string `koanf:"expansion_key" validate:"oneof=slot item"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Addr:          ":9080",
		ContentSource: SourceSanity,
		CMS: CMS{
			Dataset:    "production",
			APIVersion: "2022-02-01",
			UseCDN:     true,
			TimeoutMS:  10_000,
		},
		SQLitePath:         "folio.db",
		QueueSize:          1024,
		WorkerCount:        runtime.NumCPU() * 4,
		MaxViews:           10_000,
		ViewTTLSec:         1800,
		SweepIntervalSec:   60,
		RenderWaitMS:       1500,
		ShutdownTimeoutSec: 10,
		Works: Works{
			PerPage:        paging.DefaultPerPage,
			DescriptionMax: excerpt.DefaultMaxLength,
			ExpansionKey:   string(excerpt.KeyBySlot),
		},
		Effects: effects.Defaults(),
	}
}

// ViewTTL returns the idle expiry of views.
func (c *Config) ViewTTL() time.Duration { return time.Duration(c.ViewTTLSec) * time.Second }

// SweepInterval returns how often expired views are collected.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSec) * time.Second
}

// RenderWait returns how long a page render waits for loads.
func (c *Config) RenderWait() time.Duration {
	return time.Duration(c.RenderWaitMS) * time.Millisecond
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// CMSTimeout returns the per-query timeout.
func (c *Config) CMSTimeout() time.Duration {
	return time.Duration(c.CMS.TimeoutMS) * time.Millisecond
}

// KeyMode returns the parsed expansion key mode. Load has validated it.
func (c *Config) KeyMode() excerpt.KeyMode {
	m, err := excerpt.ParseKeyMode(c.Works.ExpansionKey)
	if err != nil {
		return excerpt.KeyBySlot
	}
	return m
}
