// Package service mounts portfolio views and drives their section loads.
// It implements the dependencies required by the HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	loadqueue "github.com/okian/folio/internal/adapters/mq/queue"
	workerpool "github.com/okian/folio/internal/adapters/mq/worker"
	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/section"
	"github.com/okian/folio/internal/domain/view"
	"github.com/okian/folio/pkg/logger"
	"github.com/okian/folio/pkg/metrics"
)

// Works actions, as counted in metrics.
const (
	ActionNext     = "next"
	ActionPrev     = "prev"
	ActionPaginate = "paginate"
	ActionToggle   = "toggle"
)

// Stats is a point-in-time summary of the service.
type Stats struct {
	Started       bool  `json:"started"`
	Workers       int   `json:"workers"`
	QueueLength   int   `json:"queueLength"`
	QueueCapacity int   `json:"queueCapacity"`
	Views         int   `json:"views"`
	MaxViews      int   `json:"maxViews"`
	LoadsDone     int64 `json:"loadsDone"`
}

// Service owns the mounted views, the load queue and the worker pool.
type Service struct {
	mu sync.RWMutex

	source content.Source
	images content.ImageResolver

	views view.Store
	queue *loadqueue.InMemoryQueue
	pool  *workerpool.Pool

	workerCount   int
	queueSize     int
	maxViews      int
	viewTTL       time.Duration
	sweepInterval time.Duration
	worksOpts     []section.WorksOption

	started bool
	rootCtx context.Context //nolint:containedctx // parent of every view context
	cancel  context.CancelFunc
	stopCh  chan struct{}

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		images:        content.ImageResolverFunc(func(r model.ImageRef) string { return r.URL }),
		workerCount:   runtime.NumCPU() * 4,
		queueSize:     1024,
		maxViews:      10_000,
		viewTTL:       30 * time.Minute,
		sweepInterval: time.Minute,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start creates the view store, queue and workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.source == nil {
		return ErrNoSource
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting portfolio service...")

	// views outlive the start request but not Stop
	s.rootCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.stopCh = make(chan struct{})
	s.views = view.NewInMemoryStore(
		view.WithMaxViews(s.maxViews),
		view.WithTTL(s.viewTTL),
		view.WithOnRemove(s.onUnmount),
	)
	s.queue = loadqueue.NewInMemoryQueue(loadqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.source)
	s.pool.Start(s.rootCtx)

	go s.sweepLoop(s.rootCtx, s.views, s.stopCh)

	s.started = true
	s.logger.Info(ctx, "portfolio service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxViews", s.maxViews),
		logger.Duration("viewTTL", s.viewTTL),
	)

	return nil
}

// Stop unmounts every view and shuts the workers down.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping portfolio service...")

	close(s.stopCh)
	n := s.views.Clear(ctx)
	err := s.pool.Shutdown(ctx)
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "portfolio service stopped", logger.Int("unmounted", n))
	return err
}

func (s *Service) sweepLoop(ctx context.Context, store view.Store, stop <-chan struct{}) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if n := store.Sweep(ctx); n > 0 {
				s.logger.Debug(ctx, "expired idle views", logger.Int("count", n))
			}
		}
	}
}

func (s *Service) onUnmount(v *view.View, reason view.Reason) {
	metrics.RecordViewUnmounted(string(reason))
	s.logger.Debug(context.Background(), "view unmounted",
		logger.String("view", v.ID),
		logger.String("reason", string(reason)),
	)
}

// running returns the live components or ErrNotStarted.
func (s *Service) running() (view.Store, *loadqueue.InMemoryQueue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.views, s.queue, nil
}

// Mount creates a view and schedules one load per section.
func (s *Service) Mount(ctx context.Context) (*view.View, error) {
	store, q, err := s.running()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	v := view.New(s.rootCtx, uuid.NewString(), s.worksOpts...)
	s.mu.RUnlock()

	store.Add(ctx, v)
	metrics.RecordViewMounted()

	for _, l := range v.Loaders() {
		job := loadqueue.Job{ViewID: v.ID, Section: l, Ctx: v.Context()}
		if err := q.Enqueue(ctx, job); err != nil {
			store.Remove(ctx, v.ID)
			if errors.Is(err, loadqueue.ErrFull) {
				return nil, fmt.Errorf("%w: %w", ErrBusy, err)
			}
			return nil, fmt.Errorf("schedule %s: %w", l.Tag(), err)
		}
	}

	s.logger.Debug(ctx, "view mounted", logger.String("view", v.ID))
	return v, nil
}

// View returns a mounted view.
func (s *Service) View(ctx context.Context, id string) (*view.View, error) {
	store, _, err := s.running()
	if err != nil {
		return nil, err
	}
	v, ok := store.Get(ctx, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return v, nil
}

// Unmount discards a view and cancels its pending loads.
func (s *Service) Unmount(ctx context.Context, id string) error {
	store, _, err := s.running()
	if err != nil {
		return err
	}
	if !store.Remove(ctx, id) {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	return nil
}

// Next advances the project list of view id.
func (s *Service) Next(ctx context.Context, id string) (section.Page, error) {
	v, err := s.View(ctx, id)
	if err != nil {
		return section.Page{}, err
	}
	v.Works.Next()
	metrics.RecordWorksAction(ActionNext)
	return v.Works.Page(), nil
}

// Prev retreats the project list of view id.
func (s *Service) Prev(ctx context.Context, id string) (section.Page, error) {
	v, err := s.View(ctx, id)
	if err != nil {
		return section.Page{}, err
	}
	v.Works.Prev()
	metrics.RecordWorksAction(ActionPrev)
	return v.Works.Page(), nil
}

// Paginate jumps to page n, which must be one of the rendered page numbers.
func (s *Service) Paginate(ctx context.Context, id string, n int) (section.Page, error) {
	v, err := s.View(ctx, id)
	if err != nil {
		return section.Page{}, err
	}
	if total, ok := v.Works.PaginateWithin(n); !ok {
		return section.Page{}, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidPage, n, total)
	}
	metrics.RecordWorksAction(ActionPaginate)
	return v.Works.Page(), nil
}

// Toggle flips the expansion flag of key.
func (s *Service) Toggle(ctx context.Context, id, key string) (section.Page, error) {
	v, err := s.View(ctx, id)
	if err != nil {
		return section.Page{}, err
	}
	if !v.Works.ValidKey(key) {
		return section.Page{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	v.Works.Toggle(key)
	metrics.RecordWorksAction(ActionToggle)
	return v.Works.Page(), nil
}

// Images returns the image resolver.
func (s *Service) Images() content.ImageResolver {
	return s.images
}

// Stats returns service statistics for monitoring.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Started:  s.started,
		Workers:  s.workerCount,
		MaxViews: s.maxViews,
	}
	if s.started {
		st.Workers = s.pool.Size()
		st.QueueLength = s.queue.Len()
		st.QueueCapacity = s.queue.Cap()
		st.Views = s.views.Len()
		st.LoadsDone = s.pool.Processed()
	}
	return st
}
