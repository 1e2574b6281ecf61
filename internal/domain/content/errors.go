package content

import (
	"errors"
	"fmt"

	"github.com/okian/folio/internal/domain/model"
)

// Sentinel kinds for fetch failures. A *FetchError matches its kind with errors.Is.
var (
	ErrTransport  = errors.New("content store unreachable")
	ErrStatus     = errors.New("content store rejected query")
	ErrDecode     = errors.New("malformed content")
	ErrCanceled   = errors.New("fetch canceled")
	ErrUnknownTag = errors.New("unknown type tag")
)

// FetchError is the failure side of a Result.
type FetchError struct {
	Tag  model.TypeTag
	Kind error
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %v", e.Tag, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %v: %v", e.Tag, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns a short label for the failure kind.
func (e *FetchError) KindName() string {
	switch e.Kind {
	case ErrTransport:
		return "transport"
	case ErrStatus:
		return "status"
	case ErrDecode:
		return "decode"
	case ErrCanceled:
		return "canceled"
	case ErrUnknownTag:
		return "unknown_tag"
	default:
		return "unknown"
	}
}

// Classify wraps err into a *FetchError. Errors that already are fetch
// errors are returned as is; context errors become ErrCanceled; anything
// else is treated as a transport failure.
func Classify(tag model.TypeTag, err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	kind := ErrTransport
	switch {
	case errors.Is(err, ErrStatus):
		kind = ErrStatus
	case errors.Is(err, ErrDecode):
		kind = ErrDecode
	case errors.Is(err, ErrUnknownTag):
		kind = ErrUnknownTag
	case isCanceled(err):
		kind = ErrCanceled
	}
	return &FetchError{Tag: tag, Kind: kind, Err: err}
}
