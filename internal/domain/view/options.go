package view

import "time"

// Option applies a configuration option to the in-memory store.
type Option func(*inMemoryStore)

// WithMaxViews sets the maximum number of mounted views. When full, the
// least recently used view is evicted. Zero or negative means unbounded.
func WithMaxViews(n int) Option {
	return func(s *inMemoryStore) {
		s.maxSize = n
	}
}

// WithTTL sets how long a view may stay idle before it expires. Zero
// disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *inMemoryStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithOnRemove registers a callback invoked, outside the store lock, for
// every view leaving the store.
func WithOnRemove(fn func(v *View, reason Reason)) Option {
	return func(s *inMemoryStore) {
		s.onRemove = fn
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *inMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
