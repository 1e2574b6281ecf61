package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidDocument = errors.New("invalid document")
	ErrClosed          = errors.New("store closed")
	ErrTypeMismatch    = errors.New("document type does not match")
)
