package magick

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/magick-tools-mcp/internal/command"
)

// Kind classifies a failed image operation.
type Kind int

const (
	// KindError is any operational failure: tool crashes, bad arguments,
	// timeouts, missing output files.
	KindError Kind = iota

	// KindInvalid means the input bytes are not a decodable image.
	KindInvalid
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	default:
		return "error"
	}
}

var (
	// ErrInvalid matches any *CommandError of KindInvalid.
	ErrInvalid = errors.New("magick: invalid image")

	// ErrCommand matches any *CommandError of KindError.
	ErrCommand = errors.New("magick: command failed")

	// ErrDestroyed is returned by operations on a destroyed Image.
	ErrDestroyed = errors.New("magick: image destroyed")
)

// invalidSignatures are output fragments the tool prints when it cannot
// decode its input. Matching is case-insensitive.
var invalidSignatures = []string{
	"no decode delegate",
	"did not return an image",
}

// CommandError describes a failed image operation.
type CommandError struct {
	// Kind is the failure classification
	Kind Kind

	// Command is the command line that failed; empty for failures outside
	// a command, such as a missing page file
	Command string

	// ExitCode is the command's exit status, or -1
	ExitCode int

	// Output is the captured combined output of the command
	Output string

	// TimedOut is true when the command was terminated by the timeout
	TimedOut bool

	// Err is the underlying cause
	Err error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	var b strings.Builder
	if e.Kind == KindInvalid {
		b.WriteString(ErrInvalid.Error())
	} else {
		b.WriteString(ErrCommand.Error())
	}
	if e.Command != "" {
		fmt.Fprintf(&b, ": `%s`", e.Command)
		if e.TimedOut {
			b.WriteString(" timed out")
		} else {
			fmt.Fprintf(&b, " exited with status %d", e.ExitCode)
		}
	}
	if e.Err != nil && (e.Command == "" || e.TimedOut) {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&b, ": %s", out)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *CommandError) Is(target error) bool {
	switch target {
	case ErrInvalid:
		return e.Kind == KindInvalid
	case ErrCommand:
		return e.Kind == KindError
	}
	return false
}

// Classify decides the kind of a failed command from its result.
// Timeouts are always KindError.
func Classify(res *command.Result) Kind {
	if res == nil || res.TimedOut {
		return KindError
	}
	output := strings.ToLower(res.Output)
	for _, sig := range invalidSignatures {
		if strings.Contains(output, sig) {
			return KindInvalid
		}
	}
	return KindError
}

func newCommandError(res *command.Result, err error) *CommandError {
	cmdErr := &CommandError{
		Kind:     Classify(res),
		ExitCode: -1,
		Err:      err,
	}
	if res != nil {
		cmdErr.Command = res.Command
		cmdErr.ExitCode = res.ExitCode
		cmdErr.Output = res.Output
		cmdErr.TimedOut = res.TimedOut
	}
	return cmdErr
}

// operationalError reports a failure that happened outside a command.
func operationalError(cause error, format string, args ...any) *CommandError {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		cause = fmt.Errorf("%s: %w", msg, cause)
	} else {
		cause = errors.New(msg)
	}
	return &CommandError{
		Kind:     KindError,
		ExitCode: -1,
		Err:      cause,
	}
}
