// Package excerpt shortens long descriptions and remembers which ones a
// visitor expanded.
package excerpt

import "unicode/utf8"

// Ellipsis is appended to truncated text.
const Ellipsis = "..."

// DefaultMaxLength is the description cutoff of the project cards.
const DefaultMaxLength = 250

// Truncate returns s unchanged when it has at most max runes, otherwise the
// first max runes followed by Ellipsis.
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	i, n := 0, 0
	for i = range s {
		if n == max {
			break
		}
		n++
	}
	return s[:i] + Ellipsis
}

// Exceeds reports whether s is longer than max runes.
func Exceeds(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}
