package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arkos-run/arkos/internal/config"
	"github.com/arkos-run/arkos/internal/dev"
	"github.com/arkos-run/arkos/internal/generate"
)

func devCmd() *cobra.Command {
	var (
		port    string
		host    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with watch mode.

The dev server compiles your application, runs it, and restarts it
when source or .env files change. The port moves up automatically
when the preferred one is taken.

Examples:
  arkos dev
  arkos dev --port=3000
  arkos dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host, verbose)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to run on (default from arkos.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from arkos.json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose diagnostics")

	return cmd
}

func runDev(port, host string, verbose bool) error {
	if _, err := exec.LookPath("go"); err != nil {
		errorMsg("Go is not installed or not in PATH")
		info("Install Go from https://go.dev/dl/")
		return err
	}

	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	os.Setenv("CLI_COMMAND", "dev")
	if port != "" {
		os.Setenv("CLI_PORT", port)
	}
	if host != "" {
		os.Setenv("CLI_HOST", host)
	}

	printBanner()
	fmt.Println("  dev")
	fmt.Println()

	log := newLogger(verbose)
	defer log.Sync()

	supervisor := dev.NewSupervisor(dev.SupervisorOptions{
		Config:  cfg,
		Logger:  log,
		Stdout:  os.Stdout,
		Version: version,
		CLIHost: host,
		CLIPort: port,
		Confirm: &dev.StdioConfirmer{In: os.Stdin, Out: os.Stdout},
		TypesMissing: func() bool {
			return !generate.TypesArtifactExists(cfg)
		},
		GenerateTypes: func() error {
			path, err := generate.Types(generate.Options{Config: cfg, Logger: log})
			if err != nil {
				return err
			}
			success("Generated %s", path)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	return supervisor.Run(ctx)
}
