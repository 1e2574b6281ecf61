// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/folio/internal/app"
	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/section"
	"github.com/okian/folio/internal/domain/view"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// View lifecycle.
	Mount(ctx context.Context) (*view.View, error)
	View(ctx context.Context, id string) (*view.View, error)
	Unmount(ctx context.Context, id string) error

	// Works section actions. Each returns the page after the change.
	Next(ctx context.Context, id string) (section.Page, error)
	Prev(ctx context.Context, id string) (section.Page, error)
	Paginate(ctx context.Context, id string, n int) (section.Page, error)
	Toggle(ctx context.Context, id, key string) (section.Page, error)

	Images() content.ImageResolver
}

// Server wires HTTP routes for the JSON API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	viewsHandler  *ViewsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		viewsHandler:  NewViewsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	v := s.viewsHandler
	mux.HandleFunc("POST /api/views", MetricsMiddleware(v.HandleMount, "views_mount"))
	mux.HandleFunc("GET /api/views/{id}", MetricsMiddleware(v.HandleGetView, "views_get"))
	mux.HandleFunc("DELETE /api/views/{id}", MetricsMiddleware(v.HandleUnmount, "views_unmount"))
	mux.HandleFunc("GET /api/views/{id}/experiences", MetricsMiddleware(v.HandleGetExperiences, "views_experiences"))
	mux.HandleFunc("GET /api/views/{id}/skills", MetricsMiddleware(v.HandleGetSkills, "views_skills"))
	mux.HandleFunc("GET /api/views/{id}/works", MetricsMiddleware(v.HandleGetWorks, "views_works"))
	mux.HandleFunc("POST /api/views/{id}/works/next", MetricsMiddleware(v.HandleNext, "works_next"))
	mux.HandleFunc("POST /api/views/{id}/works/prev", MetricsMiddleware(v.HandlePrev, "works_prev"))
	mux.HandleFunc("POST /api/views/{id}/works/page/{n}", MetricsMiddleware(v.HandlePaginate, "works_page"))
	mux.HandleFunc("POST /api/views/{id}/works/toggle/{key}", MetricsMiddleware(v.HandleToggle, "works_toggle"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service errors into status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrViewNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrInvalidPage):
		writeError(w, http.StatusBadRequest, "invalid_page", err)
	case errors.Is(err, service.ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "invalid_key", err)
	case errors.Is(err, service.ErrBusy):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
