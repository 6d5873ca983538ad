package errors

import (
	"errors"
	"fmt"
)

// Recoverable precondition rejections. These leave state untouched and map to
// normal client-facing failures.
var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrPollAlreadyRegistered = errors.New("poll request already registered")
	ErrPollNotRegistered     = errors.New("poll request not registered")
	ErrPollAlreadyStarted    = errors.New("poll already started")
	ErrPollNotFound          = errors.New("poll not found")
	ErrPollNotActive         = errors.New("poll is outside its active voting window")
	ErrPollWindowClosed      = errors.New("poll request window already closed")
	ErrUnknownContextType    = errors.New("context type not registered for poll")
	ErrNotRegistrar          = errors.New("caller does not hold the registrar capability")
	ErrNotRoot               = errors.New("caller is not the root identity")
	ErrRootMayNotRegister    = errors.New("root may not act as registrar")
	ErrRegistrarAlreadySet   = errors.New("registrar already set")
	ErrRegistrarNotSet       = errors.New("registrar not set")
	ErrCapabilityRevoked     = errors.New("register capability not granted by authorization ledger")
	ErrPendingArrayMismatch  = errors.New("pending poll ids and pending vote amounts differ in length")
)

// InvariantError marks a broken caller contract rather than a recoverable
// rejection: the condition should be unreachable when callers respect the
// read-then-write protocol. Callers discriminate it from normal failures via
// errors.As or IsInvariant.
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant breach in %s: %s", e.Op, e.Reason)
}

// NewInvariant builds a fatal invariant breach for the given operation.
func NewInvariant(op string, format string, args ...any) error {
	return &InvariantError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsInvariant reports whether err carries a fatal invariant breach.
func IsInvariant(err error) bool {
	var target *InvariantError
	return errors.As(err, &target)
}
