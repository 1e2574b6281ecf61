package site

import (
	"time"

	"github.com/okian/folio/internal/domain/effects"
	"github.com/okian/folio/pkg/logger"
)

// Option configures the site handler.
type Option func(*Handler)

// WithEffects sets the visual effect parameters rendered into the page.
func WithEffects(cfg effects.Config) Option {
	return func(h *Handler) {
		h.effects = cfg
	}
}

// WithRenderWait bounds how long GET / waits for pending sections.
func WithRenderWait(d time.Duration) Option {
	return func(h *Handler) {
		if d >= 0 {
			h.renderWait = d
		}
	}
}

// WithSecureCookie marks the view cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(h *Handler) {
		h.secureCookie = secure
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}
