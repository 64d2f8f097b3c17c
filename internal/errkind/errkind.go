// Package errkind implements a small typed-error-kind taxonomy: a closed
// set of kinds (not Go types) that every component's errors are tagged
// with, so callers can branch on "is this retryable" without string
// matching at every call site. A tagged-kind wrapper rather than a fixed
// sentinel set, so the same shape covers scraping, extraction, and search
// errors alike.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is one bucket of the error taxonomy.
type Kind string

const (
	// Transient I/O — retryable with backoff.
	Timeout      Kind = "TIMEOUT"
	NetworkError Kind = "NETWORK_ERROR"
	RateLimited  Kind = "RATE_LIMITED"

	// Parse — not retryable, logged as source-level errors.
	ParseError      Kind = "PARSE_ERROR"
	SelectorError   Kind = "SELECTOR_ERROR"
	NavigationError Kind = "NAVIGATION_ERROR"

	// Extraction.
	InvalidResponse Kind = "INVALID_RESPONSE"
	APIError        Kind = "API_ERROR"

	// Search.
	NoEmbedding    Kind = "NO_EMBEDDING"
	DatabaseError  Kind = "DATABASE_ERROR"
	InvalidFilters Kind = "INVALID_FILTERS"
	NoResults      Kind = "NO_RESULTS"

	// Config.
	NotConfigured Kind = "NOT_CONFIGURED"

	Unknown Kind = "UNKNOWN"
)

// retryable is the set the retry handler backs off and reattempts;
// everything else rethrows immediately.
var retryable = map[Kind]bool{
	Timeout:      true,
	NetworkError: true,
	RateLimited:  true,
}

// Retryable reports whether errors of this kind should be retried.
func (k Kind) Retryable() bool {
	return retryable[k]
}

// Error is a kind-tagged error value. It wraps an underlying cause without
// ever crossing a goroutine/interface boundary as an untyped any.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a kind-tagged error.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

// Wrap tags cause with kind, preserving it as the wrapped error so
// errors.Is/errors.As still sees through to the original.
func Wrap(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Msg: msg, Cause: cause}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error; otherwise returns Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err's kind equals k.
func Is(err error, k Kind) bool {
	return KindOf(err) == k
}
