// Package formatting normalizes log messages and field maps into values that
// are always safe to encode as JSON. Nothing here returns an error.
package formatting

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxMessageLength  = 10_000
	MaxFieldKeyLength = 100
	truncationSuffix  = "..."
)

// FormatMessage trims message and truncates it to MaxMessageLength characters,
// ending truncated messages with "...".
func FormatMessage(message string) string {
	trimmed := strings.TrimSpace(message)
	if utf8.RuneCountInString(trimmed) <= MaxMessageLength {
		return trimmed
	}
	runes := []rune(trimmed)
	keep := MaxMessageLength - utf8.RuneCountInString(truncationSuffix)
	return string(runes[:keep]) + truncationSuffix
}

// EnsureFields returns a new map with keys trimmed and every value replaced
// by something encoding/json can marshal. Blank keys and keys longer than
// MaxFieldKeyLength characters are dropped.
func EnsureFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" || utf8.RuneCountInString(trimmed) > MaxFieldKeyLength {
			continue
		}
		out[trimmed] = safeValue(value)
	}
	return out
}

// MergeFields overlays additional on base. Keys of additional win.
func MergeFields(base, additional map[string]any) map[string]any {
	merged := EnsureFields(base)
	for key, value := range EnsureFields(additional) {
		merged[key] = value
	}
	return merged
}

func safeValue(value any) any {
	if value == nil {
		return nil
	}
	if err, ok := value.(error); ok {
		return err.Error()
	}
	if marshals(value) {
		return value
	}
	return stringify(value)
}

// marshals reports whether encoding/json accepts value. A panicking
// MarshalJSON counts as a failure.
func marshals(value any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := json.Marshal(value)
	return err == nil
}

func stringify(value any) (s string) {
	defer func() {
		if recover() != nil {
			s = "null"
		}
	}()
	if str, ok := value.(fmt.Stringer); ok {
		return str.String()
	}
	return fmt.Sprintf("%v", value)
}
