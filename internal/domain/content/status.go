// Package content describes how sections obtain records from a content store.
package content

import "encoding/json"

// Status is the fetch lifecycle of a section.
type Status int

// Fetch statuses. Every section starts Pending.
const (
	StatusPending Status = iota
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalJSON writes the status name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
