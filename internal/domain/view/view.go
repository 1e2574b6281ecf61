// Package view owns the per-visitor section state and the bounded store of
// mounted views.
package view

import (
	"context"
	"time"

	"github.com/okian/folio/internal/domain/section"
)

// View is one mounted page: the three sections plus the context that bounds
// their loads. Unmounting cancels the context.
type View struct {
	ID      string
	Created time.Time

	Experience *section.Experience
	Tech       *section.Tech
	Works      *section.Works

	ctx    context.Context //nolint:containedctx // lifetime of the mounted view
	cancel context.CancelFunc
}

// New creates a view with pending sections. parent bounds the view's
// lifetime in addition to Close.
func New(parent context.Context, id string, worksOpts ...section.WorksOption) *View {
	ctx, cancel := context.WithCancel(parent)
	return &View{
		ID:         id,
		Created:    time.Now(),
		Experience: section.NewExperience(),
		Tech:       section.NewTech(),
		Works:      section.NewWorks(worksOpts...),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Context is done once the view is unmounted.
func (v *View) Context() context.Context { return v.ctx }

// Loaders returns the sections in page order.
func (v *View) Loaders() []section.Loader {
	return []section.Loader{v.Experience, v.Tech, v.Works}
}

// Close cancels in-flight loads. It is safe to call more than once.
func (v *View) Close() { v.cancel() }

// Closed reports whether the view was unmounted.
func (v *View) Closed() bool { return v.ctx.Err() != nil }

// Wait blocks until every section settled or ctx is done, and reports
// whether all sections settled.
func (v *View) Wait(ctx context.Context) bool {
	for _, l := range v.Loaders() {
		select {
		case <-l.Settled():
		case <-ctx.Done():
			return false
		}
	}
	return true
}
