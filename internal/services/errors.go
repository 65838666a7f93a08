package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for failure classification. Components wrap their errors
// with one of these via Wrap so callers can branch on errors.Is without
// knowing component internals.
var (
	// ErrInvalidInput marks malformed identifiers or missing required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a normal miss: no feed match, no reachable URL, or a
	// missing file.
	ErrNotFound = errors.New("not found")
	// ErrIntegrity marks byte-count mismatches and truncated transfers.
	ErrIntegrity = errors.New("integrity error")
	// ErrPolicyViolation marks writes that would escape a confinement root.
	ErrPolicyViolation = errors.New("policy violation")
	// ErrUpstream marks feed fetch and probe network failures.
	ErrUpstream = errors.New("upstream failure")
	// ErrConflict marks a destination that already exists without overwrite.
	ErrConflict = errors.New("conflict")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsMiss reports whether err represents a normal no-result outcome rather
// than a failure that should be surfaced.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
