package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/section"
	"github.com/okian/folio/internal/domain/view"
)

// ViewsHandler serves the view lifecycle and the works actions.
type ViewsHandler struct {
	deps Dependencies
}

// NewViewsHandler creates a new views handler.
func NewViewsHandler(deps Dependencies) *ViewsHandler {
	return &ViewsHandler{deps: deps}
}

type mountResponse struct {
	ID string `json:"id"`
}

type fetchError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type sectionStatus struct {
	Status content.Status `json:"status"`
	Error  *fetchError    `json:"error,omitempty"`
}

type experienceEntry struct {
	Date         string `json:"date"`
	Name         string `json:"name,omitempty"`
	Company      string `json:"company,omitempty"`
	CompanyImage string `json:"companyImage,omitempty"`
	BgColor      string `json:"bgColor,omitempty"`
	Description  string `json:"description,omitempty"`
}

type experienceSection struct {
	sectionStatus
	Entries []experienceEntry `json:"entries"`
}

type skill struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type skillsSection struct {
	sectionStatus
	Icons []skill `json:"icons"`
}

type tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type card struct {
	Slot        int    `json:"slot"`
	Key         string `json:"key"`
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	Expanded    bool   `json:"expanded"`
	HasMore     bool   `json:"hasMore"`
	ToggleLabel string `json:"toggleLabel,omitempty"`
	Tags        []tag  `json:"tags"`
	Image       string `json:"image,omitempty"`
	ProjectLink string `json:"projectLink,omitempty"`
}

type worksPage struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	PerPage int    `json:"perPage"`
	Count   int    `json:"count"`
	First   int    `json:"first"`
	Last    int    `json:"last"`
	Pages   []int  `json:"pages"`
	HasPrev bool   `json:"hasPrev"`
	HasNext bool   `json:"hasNext"`
	Cards   []card `json:"cards"`
}

type worksSection struct {
	sectionStatus
	Page worksPage `json:"page"`
}

type viewResponse struct {
	ID          string            `json:"id"`
	Created     time.Time         `json:"created"`
	Experiences experienceSection `json:"experiences"`
	Skills      skillsSection     `json:"skills"`
	Works       worksSection      `json:"works"`
}

func statusOf(l section.Loader) sectionStatus {
	st, ferr := l.Status()
	out := sectionStatus{Status: st}
	if ferr != nil {
		out.Error = &fetchError{Kind: ferr.KindName(), Message: ferr.Error()}
	}
	return out
}

func newExperienceSection(e *section.Experience, images content.ImageResolver) experienceSection {
	entries := e.Entries()
	out := experienceSection{sectionStatus: statusOf(e), Entries: make([]experienceEntry, 0, len(entries))}
	for _, en := range entries {
		item := experienceEntry{Date: en.Date}
		if en.HasWork {
			item.Name = en.Work.Name
			item.Company = en.Work.Company
			item.CompanyImage = images.URL(en.Work.CompanyImage)
			item.BgColor = en.Work.BgColor
			item.Description = en.Work.Desc
		}
		out.Entries = append(out.Entries, item)
	}
	return out
}

func newSkillsSection(t *section.Tech, images content.ImageResolver) skillsSection {
	icons := t.Icons()
	out := skillsSection{sectionStatus: statusOf(t), Icons: make([]skill, 0, len(icons))}
	for _, s := range icons {
		out.Icons = append(out.Icons, skill{Name: s.Name, Icon: images.URL(s.Icon)})
	}
	return out
}

func newWorksPage(p section.Page, images content.ImageResolver) worksPage {
	out := worksPage{
		Current: p.Current,
		Total:   p.Total,
		PerPage: p.PerPage,
		Count:   p.Count,
		First:   p.First,
		Last:    p.Last,
		Pages:   p.Pages,
		HasPrev: p.HasPrev,
		HasNext: p.HasNext,
		Cards:   make([]card, 0, len(p.Cards)),
	}
	if out.Pages == nil {
		out.Pages = []int{}
	}
	for _, c := range p.Cards {
		tags := make([]tag, 0, len(c.Tags))
		for _, t := range c.Tags {
			tags = append(tags, tag{Name: t.Name, Color: t.Color})
		}
		item := card{
			Slot:        c.Slot,
			Key:         c.Key,
			ID:          c.Work.ID,
			Title:       c.Work.Title,
			Text:        c.Text,
			Expanded:    c.Expanded,
			HasMore:     c.HasMore,
			Tags:        tags,
			Image:       images.URL(c.Work.Image),
			ProjectLink: c.Work.ProjectLink,
		}
		if c.HasMore {
			item.ToggleLabel = c.ToggleLabel
		}
		out.Cards = append(out.Cards, item)
	}
	return out
}

func newWorksSection(w *section.Works, images content.ImageResolver) worksSection {
	return worksSection{sectionStatus: statusOf(w), Page: newWorksPage(w.Page(), images)}
}

func newViewResponse(v *view.View, images content.ImageResolver) viewResponse {
	return viewResponse{
		ID:          v.ID,
		Created:     v.Created,
		Experiences: newExperienceSection(v.Experience, images),
		Skills:      newSkillsSection(v.Tech, images),
		Works:       newWorksSection(v.Works, images),
	}
}

// HandleMount handles POST /api/views requests.
func (h *ViewsHandler) HandleMount(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Mount(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Location", "/api/views/"+v.ID)
	writeJSON(w, http.StatusCreated, mountResponse{ID: v.ID})
}

// HandleGetView handles GET /api/views/{id} requests.
func (h *ViewsHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.View(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newViewResponse(v, h.deps.Images()))
}

// HandleUnmount handles DELETE /api/views/{id} requests.
func (h *ViewsHandler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Unmount(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetExperiences handles GET /api/views/{id}/experiences requests.
func (h *ViewsHandler) HandleGetExperiences(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.View(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newExperienceSection(v.Experience, h.deps.Images()))
}

// HandleGetSkills handles GET /api/views/{id}/skills requests.
func (h *ViewsHandler) HandleGetSkills(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.View(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSkillsSection(v.Tech, h.deps.Images()))
}

// HandleGetWorks handles GET /api/views/{id}/works requests.
func (h *ViewsHandler) HandleGetWorks(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.View(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWorksSection(v.Works, h.deps.Images()))
}

// HandleNext handles POST /api/views/{id}/works/next requests.
func (h *ViewsHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Next(r.Context(), r.PathValue("id"))
	h.writePage(w, p, err)
}

// HandlePrev handles POST /api/views/{id}/works/prev requests.
func (h *ViewsHandler) HandlePrev(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Prev(r.Context(), r.PathValue("id"))
	h.writePage(w, p, err)
}

// HandlePaginate handles POST /api/views/{id}/works/page/{n} requests.
func (h *ViewsHandler) HandlePaginate(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: page %q", ErrBadRequest, r.PathValue("n")))
		return
	}
	p, err := h.deps.Paginate(r.Context(), r.PathValue("id"), n)
	h.writePage(w, p, err)
}

// HandleToggle handles POST /api/views/{id}/works/toggle/{key} requests.
func (h *ViewsHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Toggle(r.Context(), r.PathValue("id"), r.PathValue("key"))
	h.writePage(w, p, err)
}

func (h *ViewsHandler) writePage(w http.ResponseWriter, p section.Page, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWorksPage(p, h.deps.Images()))
}
