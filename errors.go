package zammad

import (
	"errors"
	"strings"
)

// Sentinel errors for group access operations.
var (
	// ErrInvalidArgument is returned for malformed access specifiers,
	// unresolvable group references and non-positive owner ids. It is
	// always raised before any store access.
	ErrInvalidArgument = errors.New("zammad: invalid argument")

	// ErrStoreFailure is returned when the underlying store fails. During
	// an atomic replace the transactional scope guarantees the delete step
	// was rolled back alongside the failed insert; no retry is attempted.
	ErrStoreFailure = errors.New("zammad: store failure")

	// ErrAccessDenied is produced by the HTTP middleware when a check
	// comes back negative. The core never returns it: a denied check is a
	// false result, not an error.
	ErrAccessDenied = errors.New("zammad: access denied")

	// ErrNoOwnerID is produced by the HTTP middleware and context helpers
	// when no owner id can be determined for the request.
	ErrNoOwnerID = errors.New("zammad: owner id not in context")
)

// Error wraps a sentinel error with context about the failed operation.
type Error struct {
	Err     error    // Underlying sentinel error
	Cause   error    // Store-level cause, when any
	Message string   // Additional context
	OwnerID int64    // Owner involved (if applicable)
	GroupID int64    // Group involved (if applicable)
	Group   string   // Group name involved (if applicable)
	Access  []string // Access levels involved (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes both the sentinel and the store-level cause to
// errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithCause attaches the store-level cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithOwner adds the owner id to the error.
func (e *Error) WithOwner(ownerID int64) *Error {
	e.OwnerID = ownerID
	return e
}

// WithGroup adds the group id to the error.
func (e *Error) WithGroup(groupID int64) *Error {
	e.GroupID = groupID
	return e
}

// WithGroupName adds the group name to the error.
func (e *Error) WithGroupName(name string) *Error {
	e.Group = name
	return e
}

// WithAccess adds the requested access levels to the error.
func (e *Error) WithAccess(access []string) *Error {
	e.Access = access
	return e
}

// IsInvalidArgument checks if an error is an invalid-input error.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsStoreFailure checks if an error is a store failure.
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreFailure)
}

// IsAccessDenied checks if an error is a middleware access denial.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// storeErr wraps a non-nil store failure with operation context.
func storeErr(cause error, message string) *Error {
	return NewError(ErrStoreFailure, message).WithCause(cause)
}
