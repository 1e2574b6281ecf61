// Package loadtest drives a running folio server through its JSON API: it
// mounts many views concurrently, waits for their sections, walks every
// works page and checks that all views agree on what they saw.
package loadtest

import (
	"runtime"
	"time"
)

// Defaults used when a Config field is zero.
const (
	DefaultBaseURL      = "http://localhost:9080"
	DefaultViews        = 200
	DefaultTimeout      = 30 * time.Second
	DefaultLoadWait     = 10 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
)

// Config holds configuration for a load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Views        int           // Number of views to mount
	Workers      int           // Number of concurrent visitors
	Timeout      time.Duration // HTTP request timeout
	LoadWait     time.Duration // How long a view may stay pending
	PollInterval time.Duration // Delay between section polls
	Keep         bool          // Leave views mounted at the end
	Verbose      bool          // Log every visit
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	if out.Views <= 0 {
		out.Views = DefaultViews
	}
	if out.Workers <= 0 {
		out.Workers = runtime.NumCPU() * 2
	}
	if out.Workers > out.Views {
		out.Workers = out.Views
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.LoadWait <= 0 {
		out.LoadWait = DefaultLoadWait
	}
	if out.PollInterval <= 0 {
		out.PollInterval = DefaultPollInterval
	}
	return out
}

// Stats holds test statistics.
type Stats struct {
	ViewsMounted   int
	ViewsLoaded    int
	ViewsFailed    int
	ViewsRejected  int
	PagesVisited   int
	Toggles        int
	Requests       int64
	SectionsFailed map[string]int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

// Visit is what one visitor observed.
type Visit struct {
	ViewID  string
	Works   int   // Project count reported by the works page
	Pages   int   // Total pages reported
	Visited []int // Page numbers in the order they were seen
	Counts  []int // Cards per visited page
	PerPage int
	Toggles int
	Failed  []string // Sections that ended failed
	Err     error
}
