package section

import (
	"context"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/model"
)

// Tech is the grid of technology icons.
type Tech struct {
	state
	skills []model.Skill
}

// NewTech returns a pending tech section.
func NewTech() *Tech {
	return &Tech{state: newState()}
}

// Tag implements Loader.
func (t *Tech) Tag() model.TypeTag { return model.TagSkills }

// Load fetches every skill record.
func (t *Tech) Load(ctx context.Context, src content.Source) Outcome {
	res := content.Fetch[model.Skill](ctx, src, model.TagSkills)
	return apply(&t.state, model.TagSkills, &t.skills, res)
}

// Records returns a copy of the loaded skills, duplicates included.
func (t *Tech) Records() []model.Skill {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]model.Skill(nil), t.skills...)
}

// Icons returns one skill per distinct name. A repeated name keeps the
// position of its first occurrence and the content of its last.
func (t *Tech) Icons() []model.Skill {
	t.mu.RLock()
	defer t.mu.RUnlock()
	index := make(map[string]int, len(t.skills))
	out := make([]model.Skill, 0, len(t.skills))
	for _, s := range t.skills {
		if i, ok := index[s.Name]; ok {
			out[i] = s
			continue
		}
		index[s.Name] = len(out)
		out = append(out, s)
	}
	return out
}
