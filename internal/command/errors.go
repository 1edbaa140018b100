package command

import (
	"errors"
	"fmt"
)

// ErrTimeout is wrapped by an ExitError when the command outlived its timeout.
var ErrTimeout = errors.New("command timed out")

// ExitError represents a command that did not exit successfully.
// It carries everything needed to tell a timeout apart from a tool failure
// when the error is logged.
type ExitError struct {
	// Command is the full command line that was executed
	Command string

	// ExitCode is the exit status, or -1 if the command never produced one
	ExitCode int

	// Output is the captured combined stdout and stderr
	Output string

	// TimedOut is true when the command was terminated by the timeout
	TimedOut bool

	// Err is the underlying error, if any
	Err error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %q failed with exit code %d: %v", e.Command, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("command %q failed with exit code %d", e.Command, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}
