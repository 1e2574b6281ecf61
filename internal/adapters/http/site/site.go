// Package site renders the portfolio page: the experience timeline, the
// technology icons and the paginated project cards.
//
// The page works without client script. Every works action is a form post
// that mutates the visitor's view and redirects back (POST/redirect/GET).
// The view is found through the folio_view cookie and mounted on first visit.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/folio/internal/adapters/http/api"
	service "github.com/okian/folio/internal/app"
	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/effects"
	"github.com/okian/folio/internal/domain/section"
	"github.com/okian/folio/internal/domain/view"
	"github.com/okian/folio/pkg/logger"
)

// CookieName is the cookie carrying the visitor's view id.
const CookieName = "folio_view"

// WorksAnchor is where works actions redirect to.
const WorksAnchor = "/#works"

const defaultRenderWait = 1500 * time.Millisecond

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Dependencies required by the site handlers.
type Dependencies interface {
	Mount(ctx context.Context) (*view.View, error)
	View(ctx context.Context, id string) (*view.View, error)
	Next(ctx context.Context, id string) (section.Page, error)
	Prev(ctx context.Context, id string) (section.Page, error)
	Paginate(ctx context.Context, id string, n int) (section.Page, error)
	Toggle(ctx context.Context, id, key string) (section.Page, error)
	Images() content.ImageResolver
}

// Handler serves the HTML page and its form actions.
type Handler struct {
	deps         Dependencies
	effects      effects.Config
	renderWait   time.Duration
	secureCookie bool
	logger       logger.Logger
}

// New creates a site handler.
func New(deps Dependencies, opts ...Option) *Handler {
	h := &Handler{
		deps:       deps,
		effects:    effects.Defaults(),
		renderWait: defaultRenderWait,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("site")
	}
	return h
}

// Register attaches the page, its actions and the static assets to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /{$}", api.MetricsMiddleware(h.HandleIndex, "index"))
	mux.HandleFunc("POST /works/next", api.MetricsMiddleware(h.HandleNext, "site_works_next"))
	mux.HandleFunc("POST /works/prev", api.MetricsMiddleware(h.HandlePrev, "site_works_prev"))
	mux.HandleFunc("POST /works/page", api.MetricsMiddleware(h.HandlePaginate, "site_works_page"))
	mux.HandleFunc("POST /works/toggle", api.MetricsMiddleware(h.HandleToggle, "site_works_toggle"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// HandleIndex handles GET / requests. It reuses the visitor's view when the
// cookie names a live one and mounts a new view otherwise.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	v, err := h.current(r)
	if err != nil && !errors.Is(err, service.ErrViewNotFound) {
		h.fail(w, r, err)
		return
	}
	if v == nil {
		v, err = h.deps.Mount(ctx)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.setCookie(w, v.ID)
	}

	waitCtx, cancel := context.WithTimeout(ctx, h.renderWait)
	settled := v.Wait(waitCtx)
	cancel()
	if !settled {
		h.logger.Debug(ctx, "rendering before every section settled", logger.String("view", v.ID))
	}

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "index.html.tmpl", h.page(v)); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// HandleNext handles POST /works/next.
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, id string) error {
		_, err := h.deps.Next(ctx, id)
		return err
	})
}

// HandlePrev handles POST /works/prev.
func (h *Handler) HandlePrev(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(ctx context.Context, id string) error {
		_, err := h.deps.Prev(ctx, id)
		return err
	})
}

// HandlePaginate handles POST /works/page with the page number in n.
func (h *Handler) HandlePaginate(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.FormValue("n"))
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: page %q", ErrBadRequest, r.FormValue("n")))
		return
	}
	h.act(w, r, func(ctx context.Context, id string) error {
		_, err := h.deps.Paginate(ctx, id, n)
		return err
	})
}

// HandleToggle handles POST /works/toggle with the card key in key.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	key := r.FormValue("key")
	h.act(w, r, func(ctx context.Context, id string) error {
		_, err := h.deps.Toggle(ctx, id, key)
		return err
	})
}

// act runs fn against the visitor's view and redirects back to the works
// section. A visitor without a live view is sent to the page, which mounts one.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id string) error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		http.Redirect(w, r, WorksAnchor, http.StatusSeeOther)
		return
	}
	if err := fn(r.Context(), c.Value); err != nil {
		if errors.Is(err, service.ErrViewNotFound) {
			http.Redirect(w, r, WorksAnchor, http.StatusSeeOther)
			return
		}
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, WorksAnchor, http.StatusSeeOther)
}

// current returns the view named by the cookie, or nil without a cookie.
func (h *Handler) current(r *http.Request) (*view.View, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	v, err := h.deps.View(r.Context(), c.Value)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h *Handler) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidPage), errors.Is(err, service.ErrInvalidKey):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrBusy), errors.Is(err, service.ErrNotStarted):
		status = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", "1")
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "page request failed",
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	http.Error(w, http.StatusText(status), status)
}
