package cms

import "errors"

// Sentinel errors for client configuration.
var (
	ErrMissingProject = errors.New("cms: project id is required")
	ErrInvalidBaseURL = errors.New("cms: invalid base url")
)
