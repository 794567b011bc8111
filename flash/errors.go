package flash

import (
	"errors"
	"fmt"
)

var (
	ErrNilSession            = errors.New("flash: session is nil")
	ErrInvalidHops           = errors.New("flash: hops must be at least 1")
	ErrMissingSession        = errors.New("flash: missing session")
	ErrInvalidImplementation = errors.New("flash: invalid flash messages implementation")
)

// MissingSessionError is returned per request when no session was attached
// upstream. It always indicates a wiring fault: the session middleware must
// run before the flash middleware.
type MissingSessionError struct {
	Middleware string
}

func (e *MissingSessionError) Error() string {
	return fmt.Sprintf(
		"flash: unable to create flash messages in %s; missing session attribute (is session middleware registered before it?)",
		e.Middleware,
	)
}

func (e *MissingSessionError) Is(target error) bool {
	return target == ErrMissingSession
}

// InvalidImplementationError is returned by NewMiddleware when the configured
// implementation cannot produce Messages.
type InvalidImplementationError struct {
	Name   string
	Reason string
	Err    error
}

func (e *InvalidImplementationError) Error() string {
	msg := fmt.Sprintf("flash: cannot use %q as flash messages implementation: %s", e.Name, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidImplementationError) Is(target error) bool {
	return target == ErrInvalidImplementation
}

func (e *InvalidImplementationError) Unwrap() error {
	return e.Err
}

// InvalidHopsError reports a FlashFor call with hops below 1.
type InvalidHopsError struct {
	Name string
	Hops int
}

func (e *InvalidHopsError) Error() string {
	return fmt.Sprintf("flash: hops for %q must be at least 1, got %d", e.Name, e.Hops)
}

func (e *InvalidHopsError) Is(target error) bool {
	return target == ErrInvalidHops
}
