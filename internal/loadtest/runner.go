package loadtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/folio/pkg/logger"
)

// PercentageMultiplier converts ratios for reporting.
const PercentageMultiplier = 100

// Run executes the complete load test and returns its statistics. The
// returned error is non-nil when the service is unreachable or the views
// disagree with each other.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	cfg := config.withDefaults()
	log := logger.Get().Named("loadtest")
	stats := &Stats{StartTime: time.Now(), SectionsFailed: map[string]int{}}

	log.Info(ctx, "starting folio load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("views", cfg.Views),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Duration("loadWait", cfg.LoadWait),
		logger.Bool("keep", cfg.Keep))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	// Step 2: Visit views concurrently
	visits := visitAll(ctx, client, &cfg)

	// Step 3: Verify results
	summarize(visits, stats)
	stats.Requests = client.Requests()
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	err := Verify(visits)
	displayFinalStats(ctx, log, stats)
	if err != nil {
		return stats, err
	}
	log.Info(ctx, "load test completed successfully")
	return stats, nil
}

// visitAll runs cfg.Views visits on a pool of cfg.Workers goroutines.
func visitAll(ctx context.Context, client *Client, cfg *Config) []Visit {
	visits := make([]Visit, cfg.Views)
	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				visits[idx] = visit(ctx, client, cfg)
				if cfg.Verbose {
					v := visits[idx]
					logger.Get().Info(ctx, "visit finished",
						logger.Int("index", idx),
						logger.String("view", v.ViewID),
						logger.Int("pages", len(v.Visited)),
						logger.Error(v.Err))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < cfg.Views; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	for i := range visits {
		if visits[i].ViewID == "" && visits[i].Err == nil {
			visits[i].Err = ctx.Err()
		}
	}
	return visits
}

// visit plays one visitor: mount, wait for the sections, walk every works
// page, expand a long description, and unmount.
func visit(ctx context.Context, client *Client, cfg *Config) Visit {
	var out Visit

	id, err := client.Mount(ctx)
	if err != nil {
		out.Err = err
		return out
	}
	out.ViewID = id
	if !cfg.Keep {
		defer func() {
			if err := client.Unmount(context.WithoutCancel(ctx), id); err != nil && out.Err == nil {
				out.Err = err
			}
		}()
	}

	state, err := waitLoaded(ctx, client, id, cfg)
	if err != nil {
		out.Err = err
		return out
	}
	for name, s := range state.sections() {
		if s.Status == "failed" {
			out.Failed = append(out.Failed, name)
		}
	}
	if state.Works.Status != "loaded" {
		return out
	}

	p := state.Works.Page
	if p.Current != 1 {
		if p, err = client.Paginate(ctx, id, 1); err != nil {
			out.Err = err
			return out
		}
	}
	out.Works, out.Pages, out.PerPage = p.Count, p.Total, p.PerPage

	for {
		out.Visited = append(out.Visited, p.Current)
		out.Counts = append(out.Counts, len(p.Cards))
		n, err := toggleFirst(ctx, client, id, p)
		out.Toggles += n
		if err != nil {
			out.Err = err
			return out
		}
		if !p.HasNext {
			return out
		}
		if p, err = client.Next(ctx, id); err != nil {
			out.Err = err
			return out
		}
	}
}

// waitLoaded polls the view until no section is pending.
func waitLoaded(ctx context.Context, client *Client, id string, cfg *Config) (*viewState, error) {
	deadline := time.Now().Add(cfg.LoadWait)
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		state, err := client.view(ctx, id)
		if err != nil {
			return nil, err
		}
		if !state.pending() {
			return state, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: view %s after %s", ErrLoadTimeout, id, cfg.LoadWait)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// toggleFirst expands the first truncated card on p and collapses it again.
// It returns the number of toggles sent.
func toggleFirst(ctx context.Context, client *Client, id string, p Page) (int, error) {
	sent := 0
	for _, c := range p.Cards {
		if !c.HasMore {
			continue
		}
		for _, want := range []bool{!c.Expanded, c.Expanded} {
			got, err := client.Toggle(ctx, id, c.Key)
			if err != nil {
				return sent, err
			}
			sent++
			if expanded, ok := cardExpanded(got, c.Key); !ok || expanded != want {
				return sent, fmt.Errorf("%w: card %s of view %s is not expanded=%t after toggle",
					ErrInconsistent, c.Key, id, want)
			}
		}
		return sent, nil
	}
	return sent, nil
}

func cardExpanded(p Page, key string) (expanded, ok bool) {
	for _, c := range p.Cards {
		if c.Key == key {
			return c.Expanded, true
		}
	}
	return false, false
}

func summarize(visits []Visit, stats *Stats) {
	for _, v := range visits {
		if v.ViewID != "" {
			stats.ViewsMounted++
		}
		var se *StatusError
		switch {
		case v.Err == nil:
			stats.ViewsLoaded++
		case errors.As(v.Err, &se) && se.Rejected():
			stats.ViewsRejected++
		default:
			stats.ViewsFailed++
		}
		stats.PagesVisited += len(v.Visited)
		for _, name := range v.Failed {
			stats.SectionsFailed[name]++
		}
		stats.Toggles += v.Toggles
	}
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.ViewsMounted > 0 {
		successRate = float64(stats.ViewsLoaded) / float64(stats.ViewsMounted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Requests) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("viewsMounted", stats.ViewsMounted),
		logger.Int("viewsLoaded", stats.ViewsLoaded),
		logger.Int("viewsFailed", stats.ViewsFailed),
		logger.Int("viewsRejected", stats.ViewsRejected),
		logger.Int("pagesVisited", stats.PagesVisited),
		logger.Int("toggles", stats.Toggles),
		logger.Any("requests", stats.Requests),
		logger.Any("sectionsFailed", stats.SectionsFailed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
