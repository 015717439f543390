package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a caller-supplied parameter that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownPopulation signals an unsupported population or stream key.
	ErrUnknownPopulation = errors.New("unknown population")
	// ErrArchiveQuery signals a failed or malformed archive execution.
	ErrArchiveQuery = errors.New("archive query failed")
	// ErrUnsupportedPlot signals a visualization that cannot be built for the data.
	ErrUnsupportedPlot = errors.New("unsupported plot")
	// ErrSessionNotFound signals a missing or expired chat session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrLLMProviderError signals a chat model provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
)

// UnknownPopulationError names the rejected key and the keys that would have been accepted.
type UnknownPopulationError struct {
	Key       string
	Kind      string
	Supported []string
}

func (e *UnknownPopulationError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "population"
	}
	return fmt.Sprintf("Unknown %s: %s. Supported: %s", kind, e.Key, strings.Join(e.Supported, ", "))
}

// Unwrap exposes both the classification and the input-validation sentinels.
func (e *UnknownPopulationError) Unwrap() []error {
	return []error{ErrUnknownPopulation, ErrInvalidInput}
}

// ArchiveError carries the query text and the underlying archive failure verbatim.
type ArchiveError struct {
	Query string
	Err   error
}

func (e *ArchiveError) Error() string {
	return "ADQL query failed: " + e.Err.Error()
}

// Unwrap returns both ErrArchiveQuery and the original cause.
func (e *ArchiveError) Unwrap() []error {
	return []error{ErrArchiveQuery, e.Err}
}

// NewArchiveError wraps an archive failure for the given query.
func NewArchiveError(query string, err error) error {
	return &ArchiveError{Query: query, Err: err}
}

// Invalidf formats an input-validation failure.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
