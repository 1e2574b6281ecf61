package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/okian/folio/internal/domain/model"
)

// Result is the outcome of one fetch: Items on success, Err on failure.
type Result[T any] struct {
	Items []T
	Err   *FetchError
}

// OK reports whether the fetch succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Status maps the result onto a section status.
func (r Result[T]) Status() Status {
	if r.Err != nil {
		return StatusFailed
	}
	return StatusLoaded
}

// Fetch queries src for tag and decodes every document into T. A single
// undecodable document fails the whole fetch; partial lists are never returned.
func Fetch[T any](ctx context.Context, src Source, tag model.TypeTag) Result[T] {
	if !tag.Valid() {
		return Result[T]{Err: &FetchError{Tag: tag, Kind: ErrUnknownTag}}
	}
	docs, err := src.FetchAll(ctx, tag)
	if err != nil {
		return Result[T]{Err: Classify(tag, err)}
	}
	if err := ctx.Err(); err != nil {
		return Result[T]{Err: Classify(tag, err)}
	}
	items := make([]T, 0, len(docs))
	for i, doc := range docs {
		var item T
		if err := json.Unmarshal(doc, &item); err != nil {
			return Result[T]{Err: &FetchError{Tag: tag, Kind: ErrDecode, Err: fmt.Errorf("document %d: %w", i, err)}}
		}
		items = append(items, item)
	}
	return Result[T]{Items: items}
}
