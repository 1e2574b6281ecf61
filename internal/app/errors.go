package service

import "errors"

// Sentinel errors returned by the service.
var (
	ErrNoSource     = errors.New("no content source configured")
	ErrNotStarted   = errors.New("service not started")
	ErrViewNotFound = errors.New("view not found")
	ErrBusy         = errors.New("too many pending loads")
	ErrInvalidPage  = errors.New("page out of range")
	ErrInvalidKey   = errors.New("unknown expansion key")
)
