package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Processor)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Env(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MAGICK_MCP_PROCESSOR", "gm")
	t.Setenv("MAGICK_MCP_TIMEOUT", "5s")
	t.Setenv("MAGICK_MCP_TEMP_DIR", dir)
	t.Setenv("MAGICK_MCP_LOG_LEVEL", "debug")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "gm", cfg.Processor)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, dir, cfg.TempDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magick.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processor: magick\ntimeout: 2m\n"), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "magick", cfg.Processor)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_Flags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("processor", "", "")
	flags.Duration("timeout", DefaultTimeout, "")
	flags.String("temp-dir", "", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--timeout=750ms", "--log-level=warn"}))

	v := New()
	require.NoError(t, BindFlags(v, flags))

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", *DefaultConfig(), false},
		{"negative timeout", Config{Timeout: -time.Second, LogLevel: "info"}, true},
		{"bad level", Config{LogLevel: "loud"}, true},
		{"missing temp dir", Config{LogLevel: "info", TempDir: "/definitely/not/here"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggerAndTool(t *testing.T) {
	cfg := &Config{Processor: "gm", Timeout: time.Second, TempDir: t.TempDir(), LogLevel: "debug"}

	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")

	tool := cfg.Tool(logger)
	assert.Equal(t, "gm", tool.Processor())
	assert.Equal(t, time.Second, tool.Timeout())
	assert.Equal(t, cfg.TempDir, tool.TempDir())
}
