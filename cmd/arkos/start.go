package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arkos-run/arkos/internal/config"
	"github.com/arkos-run/arkos/internal/dev"
)

func startCmd() *cobra.Command {
	var (
		port    string
		host    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the built application",
		Long: `Run the production binary produced by 'arkos build'.

Unlike dev mode there is no compilation and no file watching; the
binary must already exist in the build output directory.

Examples:
  arkos start
  arkos start --port=8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(port, host, verbose)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to run on (default from arkos.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from arkos.json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose diagnostics")

	return cmd
}

func runStart(port, host string, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	os.Setenv("CLI_COMMAND", "start")
	if port != "" {
		os.Setenv("CLI_PORT", port)
	}
	if host != "" {
		os.Setenv("CLI_HOST", host)
	}

	printBanner()
	fmt.Println("  start")
	fmt.Println()

	log := newLogger(verbose)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	return dev.RunStart(ctx, dev.StartOptions{
		Config:  cfg,
		Logger:  log,
		Stdout:  os.Stdout,
		Version: version,
		CLIHost: host,
		CLIPort: port,
	})
}
