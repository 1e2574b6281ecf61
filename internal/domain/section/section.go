// Package section holds the per-view state of the three portfolio sections.
//
// Each section is loaded once per mount from a content.Source and then read
// by renderers. All methods are safe for concurrent use.
package section

import (
	"context"
	"sync"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/model"
)

// Loader is a section that can be filled from a content store.
type Loader interface {
	Tag() model.TypeTag
	Load(ctx context.Context, src content.Source) Outcome
	Status() (content.Status, *content.FetchError)
	Settled() <-chan struct{}
}

// Outcome summarizes one Load for logging and metrics.
type Outcome struct {
	Tag     model.TypeTag
	Status  content.Status
	Records int
	Err     *content.FetchError
}

type state struct {
	mu      sync.RWMutex
	status  content.Status
	err     *content.FetchError
	settled chan struct{}
	once    sync.Once
}

func newState() state {
	return state{settled: make(chan struct{})}
}

// Status returns the fetch status and the last failure, if any.
func (s *state) Status() (content.Status, *content.FetchError) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.err
}

// Settled is closed once the first load has finished, successfully or not.
func (s *state) Settled() <-chan struct{} {
	return s.settled
}

// apply stores a fetch result into dst. A failed fetch leaves dst untouched.
func apply[T any](s *state, tag model.TypeTag, dst *[]T, res content.Result[T]) Outcome {
	s.mu.Lock()
	if res.OK() {
		*dst = res.Items
		s.err = nil
	} else {
		s.err = res.Err
	}
	s.status = res.Status()
	n := len(*dst)
	s.mu.Unlock()
	s.once.Do(func() { close(s.settled) })

	return Outcome{Tag: tag, Status: res.Status(), Records: n, Err: res.Err}
}
