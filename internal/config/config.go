// Package config loads magick-mcp settings from flags, environment variables
// and an optional config file.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ironsheep/magick-tools-mcp/internal/magick"
)

// EnvPrefix prefixes every environment variable, e.g. MAGICK_MCP_TIMEOUT.
const EnvPrefix = "MAGICK_MCP"

// DefaultTimeout bounds every external command unless overridden.
const DefaultTimeout = 60 * time.Second

// Config holds the process-wide settings for the image tool.
type Config struct {
	// Processor is the command prefix: "" (ImageMagick 6), "magick" or "gm".
	Processor string `mapstructure:"processor"`

	// Timeout is the default command timeout. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`

	// TempDir is where image temp files are created. Empty means os.TempDir.
	TempDir string `mapstructure:"temp_dir"`

	// LogLevel is a zerolog level name.
	LogLevel string `mapstructure:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:  DefaultTimeout,
		LogLevel: zerolog.InfoLevel.String(),
	}
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("processor", defaults.Processor)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("temp_dir", defaults.TempDir)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds command-line flags to their config keys. Flag names use
// dashes, keys use underscores.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, name := range []string{"processor", "timeout", "temp-dir", "log-level"} {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(strings.ReplaceAll(name, "-", "_"), flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional config file at path and decodes all settings.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.TempDir != "" {
		info, err := os.Stat(c.TempDir)
		if err != nil {
			return fmt.Errorf("temp dir unavailable: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("temp dir %s is not a directory", c.TempDir)
		}
	}
	return nil
}

// Logger builds a console logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Tool builds the image tool described by the config.
func (c *Config) Tool(logger zerolog.Logger) *magick.Tool {
	return magick.NewTool(
		magick.WithProcessor(c.Processor),
		magick.WithTimeout(c.Timeout),
		magick.WithTempDir(c.TempDir),
		magick.WithLogger(logger),
	)
}
