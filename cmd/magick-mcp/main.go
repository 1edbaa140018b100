package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/magick-tools-mcp/internal/config"
	"github.com/ironsheep/magick-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "magick-mcp",
		Short: "MCP server for ImageMagick-backed image processing",
		Long: `magick-mcp serves image operations to MCP clients over stdin/stdout.

All decoding, encoding and transformation work is done by an installed
ImageMagick or GraphicsMagick toolchain (identify, mogrify, composite).

Settings can also be given as environment variables, e.g.
MAGICK_MCP_TIMEOUT=30s or MAGICK_MCP_LOG_LEVEL=debug.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "magick-mcp: %v\n", err)
				return err
			}

			// stdout is reserved for the MCP protocol
			logger := cfg.Logger(os.Stderr)
			logger.Debug().
				Str("version", Version).
				Str("build_time", BuildTime).
				Str("commit", GitCommit).
				Str("processor", cfg.Processor).
				Dur("timeout", cfg.Timeout).
				Msg("starting magick-mcp")

			srv := server.New(cfg.Tool(logger), server.WithLogger(logger))
			if err := srv.Run(cmd.Context()); err != nil {
				logger.Error().Err(err).Msg("server error")
				return err
			}
			return nil
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("magick-mcp %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "path to a config file (yaml, toml or json)")
	flags.String("processor", "", `command prefix: "" for ImageMagick 6, "magick" for ImageMagick 7, "gm" for GraphicsMagick`)
	flags.Duration("timeout", config.DefaultTimeout, "timeout for each external command (0 disables)")
	flags.String("temp-dir", "", "directory for image temp files (default: system temp dir)")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")

	if err := config.BindFlags(v, flags); err != nil {
		panic(err)
	}
	return cmd
}
