// Package util provides common utility functions used across the recorder.
package util

import (
	"fmt"
	"strings"
)

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// ParseFlag parses a host boolean argument. Hosts serialize flags
// inconsistently, so "1"/"0" and "true"/"false" are both accepted.
func ParseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(TrimQuotes(s))) {
	case "1", "true":
		return true, nil
	case "0", "false", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid flag value %q", s)
	}
}

// FormatTargetText builds a display string from the target name and ID.
// Format: "Name (id)" with the name omitted when empty.
func FormatTargetText(name, id string) string {
	var b strings.Builder
	if name != "" {
		b.WriteString(name)
		b.WriteString(" (")
		b.WriteString(id)
		b.WriteByte(')')
		return b.String()
	}
	b.WriteString(id)
	return b.String()
}
