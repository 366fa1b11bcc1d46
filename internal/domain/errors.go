package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel request errors. Callers match with errors.Is.
var (
	// ErrUnauthorized session invalid or expired; the session manager tears
	// the session down as a side effect.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTimeout the request exceeded its deadline. Distinct from ErrNetwork
	// so callers can offer an explicit retry action.
	ErrTimeout = errors.New("request timed out")
	// ErrNetwork transport-level failure.
	ErrNetwork = errors.New("network failure")
	// ErrSuperseded a history result arrived after a newer query was issued.
	ErrSuperseded = errors.New("superseded by a newer query")
)

// ServerError non-401 4xx/5xx response from the backend. The message is taken
// from the body's detail/message field and surfaced to the user verbatim.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// ValidationError client-side rejection; never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
