// internal/driver/errors.go
package driver

import (
	"errors"
	"fmt"
)

// Kind tags the failure classes a driver backend is allowed to report
// through its boundary. The handle layer matches kinds against explicit
// allow-lists; anything a driver cannot express as a Kind is treated as an
// unexpected error and propagates untouched.
type Kind int

const (
	// KindUnknown marks an error the driver could not classify. Never
	// retried, never swallowed.
	KindUnknown Kind = iota
	// KindStaleReference means the native binding points at a node that has
	// been detached or replaced. The element may come back after the page
	// settles, so this is retryable.
	KindStaleReference
	// KindNotReady means the target exists but cannot be interacted with
	// yet (mid-animation, covered by an overlay, still loading). Retryable.
	KindNotReady
	// KindObsolete means the driver considers the element reference
	// permanently invalid for this document generation.
	KindObsolete
	// KindNotFound means a lookup matched nothing.
	KindNotFound
	// KindNotSupported means the operation itself is unavailable on this
	// backend. Surfaced immediately, never retried.
	KindNotSupported
)

func (k Kind) String() string {
	switch k {
	case KindStaleReference:
		return "stale-reference"
	case KindNotReady:
		return "not-ready"
	case KindObsolete:
		return "obsolete"
	case KindNotFound:
		return "not-found"
	case KindNotSupported:
		return "not-supported"
	default:
		return "unknown"
	}
}

// Error is the tagged error every driver backend returns across the
// boundary. The Kind is the machine-readable classification; Op and
// Selector exist for logs.
type Error struct {
	Kind     Kind
	Op       Op
	Selector string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("driver: %s: %s", e.Op, e.Kind)
	if e.Selector != "" {
		msg += fmt.Sprintf(" (%s)", e.Selector)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a tagged driver error.
func NewError(kind Kind, op Op, selector string, err error) *Error {
	return &Error{Kind: kind, Op: op, Selector: selector, Err: err}
}

// KindOf extracts the classification from an error chain. Errors that do
// not carry a *Error anywhere in the chain report KindUnknown.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// IsTransient reports whether an error belongs to the driver's retryable
// taxonomy: the target is stale, detached, or not yet ready, and a later
// attempt against a settled document may succeed.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindStaleReference, KindNotReady, KindObsolete:
		return true
	default:
		return false
	}
}

// IsNotFound reports whether an error means a lookup legitimately matched
// nothing. Stale recovery swallows exactly this class.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsInvalidElement reports whether an error belongs to the driver's
// invalid-element-reference taxonomy, i.e. the node behind a binding no
// longer exists in any usable form.
func IsInvalidElement(err error) bool {
	switch KindOf(err) {
	case KindStaleReference, KindObsolete:
		return true
	default:
		return false
	}
}

// IsNotSupported reports whether the backend declared the whole operation
// unavailable.
func IsNotSupported(err error) bool {
	return KindOf(err) == KindNotSupported
}
