package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxNameLength bounds node identifiers accepted from external input.
const maxNameLength = 256

// ValidateNodeName validates an externally supplied node identifier.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidGraph, "node id cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidGraph, "node id too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node id contains invalid control characters")
		}
	}

	return nil
}

// ValidateWeight checks that a node or edge weight is finite and non-negative.
// what names the weighted element in the returned message.
func ValidateWeight(what string, w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidGraph, "%s weight must be finite, got %v", what, w)
	}
	if w < 0 {
		return New(ErrCodeInvalidGraph, "%s weight must not be negative, got %v", what, w)
	}
	return nil
}

// ValidateCap checks that a scheduling cap (load or bandwidth) is positive
// and finite.
func ValidateCap(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidConstraints, "%s must be positive and finite, got %v", what, v)
	}
	return nil
}

// ValidatePath validates a user supplied output path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	if strings.ContainsFunc(path, unicode.IsControl) {
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	}

	return nil
}
