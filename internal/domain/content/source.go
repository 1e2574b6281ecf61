package content

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/okian/folio/internal/domain/model"
)

// Source is the content query interface: fetch all records of one type.
// Documents are returned in store order, undecoded.
type Source interface {
	FetchAll(ctx context.Context, tag model.TypeTag) ([]json.RawMessage, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, tag model.TypeTag) ([]json.RawMessage, error)

// FetchAll calls f.
func (f SourceFunc) FetchAll(ctx context.Context, tag model.TypeTag) ([]json.RawMessage, error) {
	return f(ctx, tag)
}

// ImageResolver turns an opaque image reference into a displayable URL.
type ImageResolver interface {
	URL(ref model.ImageRef) string
}

// ImageResolverFunc adapts a function to ImageResolver.
type ImageResolverFunc func(ref model.ImageRef) string

// URL calls f.
func (f ImageResolverFunc) URL(ref model.ImageRef) string { return f(ref) }

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
