package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/okian/folio/internal/domain/model"
)

// MemoryStore keeps documents in process memory, ordered by insertion.
type MemoryStore struct {
	mu     sync.RWMutex
	byType map[model.TypeTag][]Document
	closed bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store. Record count metrics are published
// until ctx is done.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	o := newOptions(opts)
	s := &MemoryStore{byType: make(map[model.TypeTag][]Document)}
	reportCounts(ctx, s, o.metricsUpdateInterval)
	return s
}

// FetchAll returns the bodies of every document of tag in insertion order.
func (s *MemoryStore) FetchAll(ctx context.Context, tag model.TypeTag) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	docs := s.byType[tag]
	out := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		out[i] = append(json.RawMessage(nil), d.Body...)
	}
	return out, nil
}

// Put inserts or replaces documents by id.
func (s *MemoryStore) Put(ctx context.Context, docs ...Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateAll(docs); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, d := range docs {
		s.upsert(d)
	}
	return nil
}

// Replace swaps every document of tag for docs.
func (s *MemoryStore) Replace(ctx context.Context, tag model.TypeTag, docs ...Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateAll(docs); err != nil {
		return err
	}
	for _, d := range docs {
		if d.Type != tag {
			return fmt.Errorf("%w: %s is %q, not %q", ErrTypeMismatch, d.ID, d.Type, tag)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.removeType(tag)
	for _, d := range docs {
		s.upsert(d)
	}
	return nil
}

// Count returns the number of documents of tag.
func (s *MemoryStore) Count(_ context.Context, tag model.TypeTag) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.byType[tag]), nil
}

// Close releases the documents. Later calls fail with ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.byType = nil
	return nil
}

// upsert places d, removing any document with the same id under another
// type. Callers hold the write lock.
func (s *MemoryStore) upsert(d Document) {
	d.Body = append(json.RawMessage(nil), d.Body...)
	for tag, docs := range s.byType {
		for i := range docs {
			if docs[i].ID != d.ID {
				continue
			}
			if tag == d.Type {
				docs[i] = d
				return
			}
			s.byType[tag] = append(docs[:i:i], docs[i+1:]...)
			break
		}
	}
	s.byType[d.Type] = append(s.byType[d.Type], d)
}

func (s *MemoryStore) removeType(tag model.TypeTag) {
	delete(s.byType, tag)
}
