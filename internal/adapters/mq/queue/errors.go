package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrFull   = errors.New("load queue full")
	ErrClosed = errors.New("load queue closed")
)
