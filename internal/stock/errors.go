package stock

import (
	"fmt"
	"strings"
)

// Upstream names used in errors and logs.
const (
	UpstreamQuotes  = "polygon"
	UpstreamProfile = "marketwatch"
)

// UpstreamTransportError is a network or HTTP-status failure talking to an
// upstream. Status is the upstream HTTP status, 0 when no response arrived,
// or 504 when the per-call deadline expired.
type UpstreamTransportError struct {
	Upstream string
	Status   int
	Body     string
	Err      error
}

func (e *UpstreamTransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s upstream", e.Upstream)
	if e.Status != 0 {
		fmt.Fprintf(&b, " status %d", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	return b.String()
}

func (e *UpstreamTransportError) Unwrap() error { return e.Err }

// UpstreamShapeError means the upstream answered 2xx with a payload that does
// not validate against the expected shape.
type UpstreamShapeError struct {
	Upstream string
	Details  []string
}

func (e *UpstreamShapeError) Error() string {
	return fmt.Sprintf("%s upstream: invalid payload: %s", e.Upstream, strings.Join(e.Details, "; "))
}

// ScrapeStructureError means an expected HTML structure was absent or could
// not be read.
type ScrapeStructureError struct {
	Field string
	Err   error
}

func (e *ScrapeStructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("scrape structure: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("scrape structure: %s not found", e.Field)
}

func (e *ScrapeStructureError) Unwrap() error { return e.Err }

// ParseError means a normalizer could not interpret its input text.
type ParseError struct {
	Kind  string
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s %q: %v", e.Kind, e.Input, e.Err)
	}
	return fmt.Sprintf("parse %s %q", e.Kind, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError is a malformed caller input.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}
