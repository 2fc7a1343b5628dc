// Package main provides the entry point for the uiregistry CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/uiregistry/pkg/util"
)

const version = "0.1.0-dev"

var (
	logLevel   string
	logFormat  string
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "uiregistry",
		Short: "Build a design-system registry from TSX/JSX component sources",
		Long: `uiregistry statically analyzes a React component library and writes a
registry of its components, props, variants and design tokens.

Commands:
  scan      Scan a project and write its registry
  inspect   Show one component from a registry
  tokens    List design tokens from a registry
  watch     Rescan whenever sources or theme files change`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", string(util.LevelInfo), "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", string(util.FormatText), "log format (text, json)")
	pf.StringVar(&configPath, "config", "", "project config file (default <root>/"+defaultConfigPath+")")

	rootCmd.AddCommand(newScanCommand())
	rootCmd.AddCommand(newInspectCommand())
	rootCmd.AddCommand(newTokensCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "uiregistry %s\n", version)
		},
	}
}

// newLogger builds the process logger from the persistent flags. Logs go to
// stderr so registry JSON can be piped from stdout.
func newLogger() *slog.Logger {
	cfg := util.DefaultLoggerConfig()
	cfg.Level = util.LogLevel(logLevel)
	cfg.Format = util.LogFormat(logFormat)
	logger := util.NewLogger(cfg)
	slog.SetDefault(logger)
	return logger
}
