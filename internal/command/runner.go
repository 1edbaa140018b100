package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Result represents the outcome of a single command execution.
type Result struct {
	// Command is the command line that was executed
	Command string

	// Output is the combined stdout and stderr
	Output string

	// ExitCode is the exit status returned by the command
	ExitCode int

	// Duration is the wall-clock time the command took
	Duration time.Duration

	// TimedOut is true when the command was terminated by the timeout
	TimedOut bool
}

// Success reports whether the command exited with status 0 in time.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Runner executes command lines. A Runner is immutable once built and may be
// shared between goroutines.
type Runner struct {
	timeout time.Duration
	dir     string
	env     []string
	logger  zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout sets the default timeout applied to every command.
// A zero or negative duration disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithDir sets the working directory commands run in.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithEnv replaces the inherited environment with the given KEY=VALUE pairs.
func WithEnv(env []string) Option {
	return func(r *Runner) {
		r.env = append([]string(nil), env...)
	}
}

// WithLogger sets the logger used to trace executed commands.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeout returns the runner's default timeout.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// WithTimeout returns a copy of the runner using timeout d.
func (r *Runner) WithTimeout(d time.Duration) *Runner {
	clone := *r
	clone.timeout = d
	return &clone
}

// Run executes a command line and waits for it to finish.
//
// The returned Result is never nil. A non-nil error is always an *ExitError
// and means the command did not exit with status 0 before the timeout.
func (r *Runner) Run(ctx context.Context, line string) (*Result, error) {
	result := &Result{Command: line, ExitCode: -1}

	prog, err := syntax.NewParser().Parse(strings.NewReader(line), "")
	if err != nil {
		return result, &ExitError{
			Command:  line,
			ExitCode: -1,
			Err:      fmt.Errorf("failed to parse command line: %w", err),
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var combined combinedWriter
	opts := []interp.RunnerOption{
		interp.StdIO(nil, &combined, &combined),
		interp.ExecHandlers(r.execHandler),
	}
	if r.dir != "" {
		opts = append(opts, interp.Dir(r.dir))
	}
	if r.env != nil {
		opts = append(opts, interp.Env(expand.ListEnviron(r.env...)))
	}

	shell, err := interp.New(opts...)
	if err != nil {
		return result, &ExitError{
			Command:  line,
			ExitCode: -1,
			Err:      fmt.Errorf("failed to create interpreter: %w", err),
		}
	}

	start := time.Now()
	runErr := shell.Run(ctx, prog)
	result.Duration = time.Since(start)
	result.Output = combined.String()

	var status interp.ExitStatus
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &status):
		result.ExitCode = int(status)
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
		if r.timeout > 0 {
			runErr = fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
		} else {
			runErr = ErrTimeout
		}
	}

	r.logger.Debug().
		Str("cmd", line).
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Bool("timed_out", result.TimedOut).
		Msg("command finished")

	if result.Success() {
		return result, nil
	}

	if runErr != nil && errors.As(runErr, &status) {
		// The status is already in ExitCode.
		runErr = nil
	}
	return result, &ExitError{
		Command:  line,
		ExitCode: result.ExitCode,
		Output:   result.Output,
		TimedOut: result.TimedOut,
		Err:      runErr,
	}
}
