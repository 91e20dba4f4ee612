package ragerror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the RAG workflow. Node-local failures are downgraded to
// state error-log entries; only validation and unknown-session failures are
// surfaced to API callers.
var (
	ErrEmptyQuery     = errors.New("query cannot be empty")
	ErrUnknownSession = errors.New("no pending session for this id")
	ErrNoResults      = errors.New("no documents found")
	ErrParsing        = errors.New("structured output parsing failed")
)

// ParsingError wraps a malformed LLM output with the raw text for logging.
type ParsingError struct {
	Raw string
	Err error
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("structured output parsing failed: %v", e.Err)
}

func (e *ParsingError) Unwrap() error { return ErrParsing }

// NewParsingError builds a ParsingError keeping a truncated raw payload.
func NewParsingError(raw string, err error) *ParsingError {
	if len(raw) > 500 {
		raw = raw[:500] + "..."
	}
	return &ParsingError{Raw: raw, Err: err}
}
