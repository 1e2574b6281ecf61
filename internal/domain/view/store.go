package view

import (
	"context"
	"sync"
	"time"
)

// Reason says why a view left the store.
type Reason string

// Removal reasons.
const (
	ReasonDeleted  Reason = "deleted"
	ReasonExpired  Reason = "expired"
	ReasonEvicted  Reason = "evicted"
	ReasonShutdown Reason = "shutdown"
)

const (
	defaultMaxViews = 10000
	defaultTTL      = 30 * time.Minute
)

// Store tracks mounted views.
type Store interface {
	// Add mounts v, evicting the least recently used view when full.
	Add(ctx context.Context, v *View)

	// Get returns a live view and marks it used. Expired views are removed
	// and reported as missing.
	Get(ctx context.Context, id string) (*View, bool)

	// Remove unmounts the view with id and reports whether it existed.
	Remove(ctx context.Context, id string) bool

	// Sweep removes every expired view and returns how many it removed.
	Sweep(ctx context.Context) int

	// Clear unmounts every view.
	Clear(ctx context.Context) int

	Len() int
}

// node is an entry of the recency list, most recently used at head.
type node struct {
	view     *View
	lastSeen time.Time
	prev     *node
	next     *node
}

func (n *node) reset() {
	n.view = nil
	n.lastSeen = time.Time{}
	n.prev = nil
	n.next = nil
}

type removal struct {
	view   *View
	reason Reason
}

// inMemoryStore implements Store with a map plus a doubly linked recency
// list. Removed views are closed before onRemove runs.
type inMemoryStore struct {
	mu       sync.Mutex
	byID     map[string]*node
	head     *node
	tail     *node
	maxSize  int
	ttl      time.Duration
	now      func() time.Time
	onRemove func(*View, Reason)
	nodePool sync.Pool
}

// NewInMemoryStore creates a new view store with configuration options.
func NewInMemoryStore(opts ...Option) Store {
	s := &inMemoryStore{
		maxSize: defaultMaxViews,
		ttl:     defaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[string]*node)
	s.nodePool = sync.Pool{
		New: func() any {
			return &node{}
		},
	}
	return s
}

func (s *inMemoryStore) Add(_ context.Context, v *View) {
	var removed []removal

	s.mu.Lock()
	if old, ok := s.byID[v.ID]; ok {
		if old.view != v {
			removed = append(removed, removal{old.view, ReasonDeleted})
		}
		s.unlink(old)
	}
	for s.maxSize > 0 && len(s.byID) >= s.maxSize && s.tail != nil {
		removed = append(removed, removal{s.tail.view, ReasonEvicted})
		s.unlink(s.tail)
	}
	n := s.nodePool.Get().(*node)
	n.view = v
	n.lastSeen = s.now()
	s.pushFront(n)
	s.byID[v.ID] = n
	s.mu.Unlock()

	s.notify(removed)
}

func (s *inMemoryStore) Get(_ context.Context, id string) (*View, bool) {
	s.mu.Lock()
	n, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, false
	}
	now := s.now()
	if s.expired(n, now) {
		v := n.view
		s.unlink(n)
		s.mu.Unlock()
		s.notify([]removal{{v, ReasonExpired}})
		return nil, false
	}
	n.lastSeen = now
	s.moveToFront(n)
	v := n.view
	s.mu.Unlock()
	return v, true
}

func (s *inMemoryStore) Remove(_ context.Context, id string) bool {
	s.mu.Lock()
	n, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	v := n.view
	s.unlink(n)
	s.mu.Unlock()

	s.notify([]removal{{v, ReasonDeleted}})
	return true
}

func (s *inMemoryStore) Sweep(_ context.Context) int {
	var removed []removal

	s.mu.Lock()
	now := s.now()
	// least recently used views sit at the tail
	for n := s.tail; n != nil && s.expired(n, now); n = s.tail {
		removed = append(removed, removal{n.view, ReasonExpired})
		s.unlink(n)
	}
	s.mu.Unlock()

	s.notify(removed)
	return len(removed)
}

func (s *inMemoryStore) Clear(_ context.Context) int {
	var removed []removal

	s.mu.Lock()
	for s.head != nil {
		removed = append(removed, removal{s.head.view, ReasonShutdown})
		s.unlink(s.head)
	}
	s.mu.Unlock()

	s.notify(removed)
	return len(removed)
}

func (s *inMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *inMemoryStore) expired(n *node, now time.Time) bool {
	return s.ttl > 0 && now.Sub(n.lastSeen) > s.ttl
}

func (s *inMemoryStore) notify(removed []removal) {
	for _, r := range removed {
		r.view.Close()
		if s.onRemove != nil {
			s.onRemove(r.view, r.reason)
		}
	}
}

// Must be called with s.mu held.
func (s *inMemoryStore) pushFront(n *node) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

// Must be called with s.mu held.
func (s *inMemoryStore) moveToFront(n *node) {
	if s.head == n {
		return
	}
	s.detach(n)
	s.pushFront(n)
}

// Must be called with s.mu held.
func (s *inMemoryStore) detach(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// unlink removes n from the list and the index and recycles it.
// Must be called with s.mu held.
func (s *inMemoryStore) unlink(n *node) {
	s.detach(n)
	delete(s.byID, n.view.ID)
	n.reset()
	s.nodePool.Put(n)
}
