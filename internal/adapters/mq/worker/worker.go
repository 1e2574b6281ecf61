// Package worker runs queued section loads against the content source.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/folio/internal/adapters/mq/queue"
	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/section"
	"github.com/okian/folio/pkg/logger"
	"github.com/okian/folio/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan queue.Job
}

// Worker executes load jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker loads sections from a content source.
type InMemoryWorker struct {
	queue  Queue
	source content.Source
	name   string

	processed atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, source content.Source, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		source:   source,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			// failures are recorded on the section and logged in processJob
			_ = w.processJob(ctx, j)
		}
	}
}

// Processed returns the number of jobs this worker finished.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob loads one section. The load is bound to both the worker and
// the owning view.
func (w *InMemoryWorker) processJob(ctx context.Context, j queue.Job) error {
	defer w.processed.Add(1)
	defer func() {
		if !j.Enqueued.IsZero() {
			metrics.RecordJobLatency(float64(time.Since(j.Enqueued).Milliseconds()))
		}
	}()

	if j.Section == nil {
		metrics.RecordWorkerError()
		return errors.New("job without section")
	}
	tag := j.Section.Tag()

	viewCtx := j.Ctx
	if viewCtx == nil {
		viewCtx = context.Background()
	}
	loadCtx, cancel := context.WithCancel(viewCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := loadCtx.Err(); err != nil {
		_ = metrics.RecordFetch(tag.String(), metrics.OutcomeCanceled, 0)
		w.logger.Debug(ctx, "skipping load for unmounted view",
			logger.String("view", j.ViewID),
			logger.String("tag", tag.String()),
		)
		return err
	}

	start := time.Now()
	out := j.Section.Load(loadCtx, w.source)
	latency := float64(time.Since(start).Milliseconds())

	return w.record(ctx, j, out, latency)
}

func (w *InMemoryWorker) record(ctx context.Context, j queue.Job, out section.Outcome, latencyMs float64) error {
	tag := out.Tag.String()
	if out.Err == nil {
		_ = metrics.RecordFetch(tag, metrics.OutcomeLoaded, latencyMs)
		metrics.UpdateRecords(tag, out.Records)
		w.logger.Debug(ctx, "section loaded",
			logger.String("view", j.ViewID),
			logger.String("tag", tag),
			logger.Int("records", out.Records),
			logger.Float64("latency_ms", latencyMs),
		)
		return nil
	}

	outcome := metrics.OutcomeFailed
	if errors.Is(out.Err, content.ErrCanceled) {
		outcome = metrics.OutcomeCanceled
	} else {
		metrics.RecordWorkerError()
		metrics.RecordErrorByType("fetch_"+out.Err.KindName(), "medium")
	}
	_ = metrics.RecordFetch(tag, outcome, latencyMs)

	w.logger.Warn(ctx, "section load failed",
		logger.String("view", j.ViewID),
		logger.String("tag", tag),
		logger.String("kind", out.Err.KindName()),
		logger.Error(out.Err),
	)
	return out.Err
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. Non-positive counts scale
// with the number of CPUs.
func NewPool(workerCount int, q Queue, source content.Source) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, source, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of jobs finished by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for the workers to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var failed int
	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			failed++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	if failed > 0 {
		return fmt.Errorf("%d workers did not stop: %w", failed, shutdownCtx.Err())
	}
	return nil
}
