package magick

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/magick-tools-mcp/internal/command"
)

// Names of the external commands.
const (
	cmdIdentify  = "identify"
	cmdMogrify   = "mogrify"
	cmdComposite = "composite"
)

// DefaultTempPrefix is the file name prefix used for temp files.
const DefaultTempPrefix = "mini_magick"

// Tool runs the external image commands for the images it creates.
type Tool struct {
	processor  string
	timeout    time.Duration
	tempDir    string
	tempPrefix string
	logger     zerolog.Logger
	runner     *command.Runner
}

// Option configures a Tool.
type Option func(*Tool)

// WithProcessor sets a command prefix such as "gm" or "magick".
// With "gm", identify runs as "gm identify".
func WithProcessor(processor string) Option {
	return func(t *Tool) {
		t.processor = strings.TrimSpace(processor)
	}
}

// WithTimeout sets the default timeout for every command. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(t *Tool) {
		t.timeout = d
	}
}

// WithTempDir sets the directory temp files are created in.
func WithTempDir(dir string) Option {
	return func(t *Tool) {
		t.tempDir = dir
	}
}

// WithTempPrefix sets the temp file name prefix.
func WithTempPrefix(prefix string) Option {
	return func(t *Tool) {
		t.tempPrefix = prefix
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tool) {
		t.logger = logger
	}
}

// NewTool creates a Tool.
func NewTool(opts ...Option) *Tool {
	t := &Tool{
		tempPrefix: DefaultTempPrefix,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.tempDir == "" {
		t.tempDir = os.TempDir()
	}
	t.runner = command.NewRunner(
		command.WithTimeout(t.timeout),
		command.WithLogger(t.logger),
	)
	return t
}

// Processor returns the configured command prefix.
func (t *Tool) Processor() string {
	return t.processor
}

// Timeout returns the default command timeout.
func (t *Tool) Timeout() time.Duration {
	return t.timeout
}

// TempDir returns the directory temp files are created in.
func (t *Tool) TempDir() string {
	return t.tempDir
}

func (t *Tool) commandName(name string) string {
	if t.processor == "" {
		return name
	}
	return t.processor + " " + name
}

// run executes one external command and classifies a failure.
func (t *Tool) run(ctx context.Context, name string, args ...string) (*command.Result, error) {
	line := command.Line(t.commandName(name), args...)
	res, err := t.runner.Run(ctx, line)
	if err != nil {
		cmdErr := newCommandError(res, err)
		t.logger.Warn().
			Str("cmd", line).
			Str("kind", cmdErr.Kind.String()).
			Int("exit_code", cmdErr.ExitCode).
			Bool("timed_out", cmdErr.TimedOut).
			Msg("image command failed")
		return res, cmdErr
	}
	return res, nil
}
