package maprender

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition marks defects in the supplied data or in the caller, such as altitudes out of order or degenerate rings. They are not retried.
	ErrPrecondition = errors.New("precondition violated")

	// ErrExternalTool marks a failing or timed out external rasterizer.
	ErrExternalTool = errors.New("external tool failed")

	// ErrUnknownLevel is returned when a level id is not present in the map data.
	ErrUnknownLevel = errors.New("unknown level")

	// ErrUnknownFormat is returned when no engine is registered for an output format.
	ErrUnknownFormat = errors.New("unknown output format")
)

// PreconditionError is returned at the point where invalid input is detected.
type PreconditionError struct {
	Msg string
}

// Preconditionf returns a PreconditionError with a formatted message.
func Preconditionf(format string, args ...interface{}) *PreconditionError {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

func (e *PreconditionError) Error() string {
	return "precondition violated: " + e.Msg
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// ExternalToolError wraps the failure of an external process, including a timeout.
type ExternalToolError struct {
	Tool   string
	Err    error
	Stderr string
}

func (e *ExternalToolError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *ExternalToolError) Is(target error) bool {
	return target == ErrExternalTool
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}
