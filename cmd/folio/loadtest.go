package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/folio/internal/loadtest"
)

const defaultTestTimeout = 10 * time.Minute

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Drive a running server with many concurrent views",
	Long: `Mounts views through the JSON API of a running folio server, waits for
their sections, walks every works page, expands a long description and
unmounts the view. Fails when views disagree on what they saw.`,
	Args: cobra.NoArgs,
	RunE: runLoadtest,
}

var ltConfig loadtest.Config

func init() {
	f := loadtestCmd.Flags()
	f.StringVar(&ltConfig.BaseURL, "url", loadtest.DefaultBaseURL, "base URL of the service")
	f.IntVar(&ltConfig.Views, "views", loadtest.DefaultViews, "number of views to mount")
	f.IntVar(&ltConfig.Workers, "workers", runtime.NumCPU()*2, "number of concurrent visitors")
	f.DurationVar(&ltConfig.Timeout, "timeout", loadtest.DefaultTimeout, "HTTP request timeout")
	f.DurationVar(&ltConfig.LoadWait, "load-wait", loadtest.DefaultLoadWait, "how long a view may stay pending")
	f.DurationVar(&ltConfig.PollInterval, "poll", loadtest.DefaultPollInterval, "delay between section polls")
	f.BoolVar(&ltConfig.Keep, "keep", false, "leave views mounted")
	f.BoolVar(&ltConfig.Verbose, "verbose", false, "log every visit")
	rootCmd.AddCommand(loadtestCmd)
}

func runLoadtest(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), defaultTestTimeout)
	defer cancel()

	stats, err := loadtest.Run(ctx, &ltConfig)
	if stats != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "views %d mounted, %d loaded, %d failed, %d rejected; %d pages, %d toggles, %d requests in %s\n",
			stats.ViewsMounted, stats.ViewsLoaded, stats.ViewsFailed, stats.ViewsRejected,
			stats.PagesVisited, stats.Toggles, stats.Requests, stats.Duration.Round(time.Millisecond))
	}
	return err
}
