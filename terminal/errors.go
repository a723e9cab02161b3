package terminal

import (
	"errors"
	"fmt"
)

var (
	// ErrDetached indicates the device was unplugged.
	ErrDetached = errors.New("device detached")

	// ErrClosed indicates an operation on a closed session.
	ErrClosed = errors.New("session closed")

	// ErrNotIdle indicates input or an upload submitted outside the Idle state.
	ErrNotIdle = errors.New("session not idle")

	// ErrInvalidTransition indicates an illegal lifecycle step.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// TransportError wraps a failed transport operation. It is always fatal to
// the session.
type TransportError struct {
	// Op is the transport operation that failed
	Op string

	// Err is the underlying error
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DeviceError reports a transfer failure the device signalled
// asynchronously on one of its endpoints.
type DeviceError struct {
	// Endpoint is "in" or "out"
	Endpoint string

	// Err is the reported error
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("error on %s: %v", e.Endpoint, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err ends the session.
func IsFatal(err error) bool {
	var te *TransportError
	var de *DeviceError
	return errors.As(err, &te) || errors.As(err, &de) ||
		errors.Is(err, ErrDetached) || errors.Is(err, ErrClosed)
}
