package translate

import (
	"context"
	"fmt"
)

// Translator converts a batch of source strings into target strings.
// Implementations must return exactly one result per input, in input
// order, or an error.
type Translator interface {
	Translate(ctx context.Context, texts []string) ([]string, error)
}

// ErrorKind classifies a translation failure for retry decisions.
type ErrorKind int

const (
	// KindUnknown covers failures with no more specific cause.
	KindUnknown ErrorKind = iota

	// KindTimeout means the provider did not answer within the batch
	// deadline.
	KindTimeout

	// KindConnection means the provider was unreachable.
	KindConnection

	// KindRateLimited means the provider rejected the batch for quota
	// reasons.
	KindRateLimited
)

// String returns a string representation of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Error is a classified translation failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("translation %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient and the batch is
// worth resending.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindConnection, KindRateLimited:
		return true
	default:
		return false
	}
}
