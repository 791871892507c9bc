package errors

import (
	"strings"
	"time"
	"unicode"
)

// ValidateID validates a record or row identifier for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - Maximum length of 256 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "id contains invalid control characters")
		}
	}

	return nil
}

// ValidateRange checks that stop is not before start.
// Callers that receive stop < start violate the record contract; the record is
// rejected rather than clamped.
func ValidateRange(id string, start, stop time.Time) error {
	if start.IsZero() || stop.IsZero() {
		return New(ErrCodeInvalidRange, "record %q: start and stop are required", id)
	}
	if stop.Before(start) {
		return New(ErrCodeInvalidRange, "record %q: stop %s is before start %s",
			id, stop.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}

// ValidateWindow checks that a visible window is non-empty.
func ValidateWindow(start, stop time.Time) error {
	if start.IsZero() || stop.IsZero() {
		return New(ErrCodeInvalidWindow, "window start and stop are required")
	}
	if !stop.After(start) {
		return New(ErrCodeInvalidWindow, "window stop %s must be after start %s",
			stop.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}

// ValidateFieldName validates a consolidation field name.
// Field names are plain identifiers: letters, digits, underscores and dots.
func ValidateFieldName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "field name cannot be empty")
	}
	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidInput, "field name %q has surrounding whitespace", name)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return New(ErrCodeInvalidInput, "field name %q contains invalid character %q", name, r)
		}
	}
	return nil
}
