package protocol

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before anything is sent to the
// device, such as a filename that breaks the 8.3 rule.
type ValidationError struct {
	// Name is the rejected value
	Name string

	// Reason describes which rule was broken
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid filename %q: %s (expected 8.3 format)", e.Name, e.Reason)
}

// IsValidationError returns true if err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
