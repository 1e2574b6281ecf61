package excerpt

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyMode decides what an expansion flag is attached to.
type KeyMode string

const (
	// KeyBySlot keys flags by position within the visible page. The same
	// slot on another page shares the flag.
	KeyBySlot KeyMode = "slot"
	// KeyByItem keys flags by record id, so expansion follows the record.
	KeyByItem KeyMode = "item"
)

// ParseKeyMode accepts "slot" or "item"; empty means slot.
func ParseKeyMode(s string) (KeyMode, error) {
	switch KeyMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeyBySlot:
		return KeyBySlot, nil
	case KeyByItem:
		return KeyByItem, nil
	}
	return "", fmt.Errorf("unknown expansion key mode %q", s)
}

// Key returns the expansion key for a card in the given mode. Item mode
// falls back to the slot when the record has no id.
func (m KeyMode) Key(slot int, id string) string {
	if m == KeyByItem && id != "" {
		return "id:" + id
	}
	return strconv.Itoa(slot)
}

// Expansion is a sparse set of "show full text" flags. Absent keys are
// collapsed. The zero value is ready to use.
type Expansion struct {
	flags map[string]bool
}

// Expanded reports the flag for key.
func (e *Expansion) Expanded(key string) bool {
	return e.flags[key]
}

// Toggle flips the flag for key and returns the new value. Other keys are
// untouched.
func (e *Expansion) Toggle(key string) bool {
	if e.flags == nil {
		e.flags = make(map[string]bool)
	}
	e.flags[key] = !e.flags[key]
	return e.flags[key]
}

// Snapshot copies the flags that are currently set.
func (e *Expansion) Snapshot() map[string]bool {
	out := make(map[string]bool, len(e.flags))
	for k, v := range e.flags {
		if v {
			out[k] = true
		}
	}
	return out
}
