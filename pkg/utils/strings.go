package utils

import (
	"strings"
	"unicode/utf8"
)

// NormalizeEmail normalizes email addresses (lowercase and trim)
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Truncate cuts s to at most max characters. Characters are runes, so
// multi-byte input is never split mid-sequence.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// FirstName returns the first word of a display name, or fallback when the
// name is blank.
func FirstName(name, fallback string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return fallback
	}
	return fields[0]
}
