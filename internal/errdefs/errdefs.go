// Package errdefs enumerates the platform error kinds and how they are
// consumed. Handlers match on kinds with the Is* predicates; the HTTP layer
// maps kinds to status codes.
package errdefs

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	// ErrInvalidInput covers schema violations, bad UUIDs, and missing
	// required fields. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated means the auth provider rejected the token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the auth provider denied workspace or permission
	// access.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the requested workspace or server does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict covers AlreadyExists and concurrent-modification failures.
	ErrConflict = errors.New("conflict")

	// ErrInvariant means an observed object violates a platform invariant,
	// e.g. required tenancy labels are missing.
	ErrInvariant = errors.New("invariant violation")

	// ErrTransient covers cluster-API 5xx and network timeouts. Retried by
	// the operator, surfaced as 503 by the API.
	ErrTransient = errors.New("transient failure")
)

// wrapped pairs a kind with an operation-scoped message.
type wrapped struct {
	kind error
	msg  string
}

func (e *wrapped) Error() string { return e.msg }

func (e *wrapped) Unwrap() error { return e.kind }

// New wraps a kind with a message following the platform format:
// "Failed to {operation} {resourceType} '{resourceID}': {reason}".
func New(kind error, operation, resourceType, resourceID string, reason error) error {
	return &wrapped{
		kind: kind,
		msg:  fmt.Sprintf("Failed to %s %s '%s': %v", operation, resourceType, resourceID, reason),
	}
}

// Newf wraps a kind with a free-form message.
func Newf(kind error, format string, args ...any) error {
	return &wrapped{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func IsInvalidInput(err error) bool    { return errors.Is(err, ErrInvalidInput) }
func IsUnauthenticated(err error) bool { return errors.Is(err, ErrUnauthenticated) }
func IsForbidden(err error) bool       { return errors.Is(err, ErrForbidden) }
func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool        { return errors.Is(err, ErrConflict) }
func IsInvariant(err error) bool       { return errors.Is(err, ErrInvariant) }
func IsTransient(err error) bool       { return errors.Is(err, ErrTransient) }
