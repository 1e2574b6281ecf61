package section

import (
	"context"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/model"
)

// Entry is one rendered timeline element.
type Entry struct {
	Date    string
	Work    model.ExperienceWork
	HasWork bool
}

// Experience is the work-history timeline.
type Experience struct {
	state
	records []model.Experience
}

// NewExperience returns a pending experience section.
func NewExperience() *Experience {
	return &Experience{state: newState()}
}

// Tag implements Loader.
func (e *Experience) Tag() model.TypeTag { return model.TagExperiences }

// Load fetches every experience record and stores them in received order.
func (e *Experience) Load(ctx context.Context, src content.Source) Outcome {
	res := content.Fetch[model.Experience](ctx, src, model.TagExperiences)
	return apply(&e.state, model.TagExperiences, &e.records, res)
}

// Records returns a copy of the loaded records.
func (e *Experience) Records() []model.Experience {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]model.Experience(nil), e.records...)
}

// Entries returns one entry per record. Only the first work of a record is
// shown; a record without works still gets its date on the timeline.
func (e *Experience) Entries() []Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Entry, 0, len(e.records))
	for _, r := range e.records {
		entry := Entry{Date: r.Date}
		if len(r.Works) > 0 {
			entry.Work = r.Works[0]
			entry.HasWork = true
		}
		out = append(out, entry)
	}
	return out
}
