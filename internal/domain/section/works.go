package section

import (
	"context"
	"strconv"
	"strings"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/excerpt"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/paging"
)

// Toggle labels.
const (
	LabelShowMore = "Show more"
	LabelShowLess = "Show less"
)

// Card is the render decision for one visible project.
type Card struct {
	Slot        int
	Key         string
	Work        model.Work
	Tags        []model.Tag
	Text        string
	Expanded    bool
	HasMore     bool
	ToggleLabel string
}

// Page is a consistent snapshot of the works section.
type Page struct {
	Current int
	Total   int
	PerPage int
	Count   int
	// First and Last are the 1-indexed positions of the visible cards;
	// both are 0 when the page is empty.
	First   int
	Last    int
	Pages   []int
	HasPrev bool
	HasNext bool
	Cards   []Card
}

// Works is the paginated project list with per-card expansion.
type Works struct {
	state
	cfg       worksConfig
	works     []model.Work
	pager     *paging.Paginator
	expansion excerpt.Expansion
}

// NewWorks returns a pending works section on page 1.
func NewWorks(opts ...WorksOption) *Works {
	cfg := defaultWorksConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Works{
		state: newState(),
		cfg:   cfg,
		pager: paging.New(cfg.perPage),
	}
}

// Tag implements Loader.
func (w *Works) Tag() model.TypeTag { return model.TagWorks }

// Load replaces the project list. Page and expansion state are kept.
func (w *Works) Load(ctx context.Context, src content.Source) Outcome {
	res := content.Fetch[model.Work](ctx, src, model.TagWorks)
	return apply(&w.state, model.TagWorks, &w.works, res)
}

// KeyMode returns the expansion key mode.
func (w *Works) KeyMode() excerpt.KeyMode { return w.cfg.keyMode }

// DescriptionMax returns the truncation length.
func (w *Works) DescriptionMax() int { return w.cfg.descriptionMax }

// Len returns the number of loaded projects.
func (w *Works) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.works)
}

// Current returns the 1-indexed current page.
func (w *Works) Current() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pager.Current()
}

// TotalPages returns the number of pages; 0 when there are no projects.
func (w *Works) TotalPages() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pager.TotalPages(len(w.works))
}

// Pages lists the selectable page numbers.
func (w *Works) Pages() []int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pager.Pages(len(w.works))
}

// Visible returns a copy of the projects on the current page.
func (w *Works) Visible() []model.Work {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]model.Work(nil), paging.Slice(w.pager, w.works)...)
}

// Paginate jumps to page n. n is not checked against the page count.
func (w *Works) Paginate(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pager.Paginate(n)
}

// PaginateWithin moves to page n only when 1 <= n <= TotalPages, checked
// under the same lock as the move. It returns the page count it checked.
func (w *Works) PaginateWithin(n int) (total int, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	total = w.pager.TotalPages(len(w.works))
	if n < 1 || n > total {
		return total, false
	}
	w.pager.Paginate(n)
	return total, true
}

// Next advances one page and reports whether the page changed.
func (w *Works) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pager.Next(len(w.works))
}

// Prev retreats one page and reports whether the page changed.
func (w *Works) Prev() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pager.Prev()
}

// Toggle flips the expansion flag of key and returns its new value.
func (w *Works) Toggle(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expansion.Toggle(key)
}

// Expanded reports the flag of key.
func (w *Works) Expanded(key string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.expansion.Expanded(key)
}

// Expansions returns the keys that are currently expanded.
func (w *Works) Expansions() map[string]bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.expansion.Snapshot()
}

// ValidKey reports whether key can address a card: a slot on a full page in
// slot mode, or a loaded record in item mode.
func (w *Works) ValidKey(key string) bool {
	if w.cfg.keyMode == excerpt.KeyByItem {
		if id, ok := strings.CutPrefix(key, "id:"); ok {
			w.mu.RLock()
			defer w.mu.RUnlock()
			for _, work := range w.works {
				if work.ID == id {
					return true
				}
			}
			return false
		}
	}
	slot, err := strconv.Atoi(key)
	return err == nil && slot >= 0 && slot < w.cfg.perPage && strconv.Itoa(slot) == key
}

// Cards returns the render decisions for the visible projects.
func (w *Works) Cards() []Card {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cards()
}

// Page returns the current page with its cards in one consistent read.
func (w *Works) Page() Page {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := len(w.works)
	start, end := w.pager.Bounds(n)
	p := Page{
		Current: w.pager.Current(),
		Total:   w.pager.TotalPages(n),
		PerPage: w.pager.PerPage(),
		Count:   n,
		Pages:   w.pager.Pages(n),
		Cards:   w.cards(),
	}
	if end > start {
		p.First, p.Last = start+1, end
	}
	p.HasPrev = p.Current > 1
	p.HasNext = p.Current < p.Total
	return p
}

func (w *Works) cards() []Card {
	visible := paging.Slice(w.pager, w.works)
	out := make([]Card, 0, len(visible))
	for slot, work := range visible {
		key := w.cfg.keyMode.Key(slot, work.ID)
		expanded := w.expansion.Expanded(key)
		c := Card{
			Slot:     slot,
			Key:      key,
			Work:     work,
			Tags:     work.ColoredTags(),
			Expanded: expanded,
			HasMore:  excerpt.Exceeds(work.Description, w.cfg.descriptionMax),
		}
		if expanded {
			c.Text = work.Description
			c.ToggleLabel = LabelShowLess
		} else {
			c.Text = excerpt.Truncate(work.Description, w.cfg.descriptionMax)
			c.ToggleLabel = LabelShowMore
		}
		out = append(out, c)
	}
	return out
}
