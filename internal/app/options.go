package service

import (
	"time"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/section"
	"github.com/okian/folio/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the content store sections load from.
func WithSource(src content.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithImageResolver sets how image references become URLs.
func WithImageResolver(r content.ImageResolver) Option {
	return func(s *Service) {
		if r != nil {
			s.images = r
		}
	}
}

// WithWorkerCount sets the number of loader workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the load queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxViews caps the number of mounted views. Zero means unbounded.
func WithMaxViews(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxViews = n
		}
	}
}

// WithViewTTL sets the idle expiry of views. Zero disables expiry.
func WithViewTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.viewTTL = ttl
		}
	}
}

// WithSweepInterval sets how often expired views are collected.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithWorksOptions configures the works section of every new view.
func WithWorksOptions(opts ...section.WorksOption) Option {
	return func(s *Service) {
		s.worksOpts = append(s.worksOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
