package loadtest

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors.
var (
	ErrUnhealthy    = errors.New("service is not healthy")
	ErrLoadTimeout  = errors.New("view sections did not settle")
	ErrInconsistent = errors.New("views disagree")
)

// StatusError is an unexpected HTTP status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Rejected reports whether the server refused the request for load.
func (e *StatusError) Rejected() bool {
	return e.Code == http.StatusTooManyRequests || e.Code == http.StatusServiceUnavailable
}
