package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arkos-run/arkos/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┬─┐┬┌─┌─┐┌─┐
  ╠═╣├┬┘├┴┐│ │└─┐
  ╩ ╩┴└─┴ ┴└─┘└─┘
`

func main() {
	// The CLI marker tells an application whether it was launched through
	// the arkos CLI or run directly.
	os.Setenv("CLI", "true")

	rootCmd := &cobra.Command{
		Use:   "arkos",
		Short: "The convention-driven backend framework for Go",
		Long: `Arkos is a convention-driven backend framework for Go.

Point it at a project with an arkos.json and it handles the rest:

  • Dev server with watch, rebuild, and restart
  • Layered .env loading per environment
  • Automatic port allocation when the preferred port is taken
  • Production builds with cross-compilation
  • Component scaffolding`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		devCmd(),
		startCmd(),
		buildCmd(),
		generateCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		if ae, ok := err.(*errors.ArkosError); ok {
			fmt.Fprint(os.Stderr, ae.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

// printBanner prints the Arkos ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}

// newLogger builds the CLI logger. Verbose enables debug output.
func newLogger(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
