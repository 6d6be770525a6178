package main

import (
	"context"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/arkos-run/arkos/internal/build"
	"github.com/arkos-run/arkos/internal/config"
)

func buildCmd() *cobra.Command {
	var (
		target     string
		configPath string
		output     string
		clean      bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the application for production",
		Long: `Compile the application into the build output directory.

Cross-compilation is supported via --target. A manifest.json with
build metadata is written next to the binary.

Examples:
  arkos build
  arkos build --target=linux/amd64
  arkos build --clean`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(target, configPath, output, clean, verbose)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Build target as os/arch (default: host platform)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to arkos.json (default: nearest in parent directories)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from arkos.json)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove the output directory before building")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose diagnostics")

	return cmd
}

func runBuild(target, configPath, output string, clean, verbose bool) error {
	if _, err := exec.LookPath("go"); err != nil {
		errorMsg("Go is not installed or not in PATH")
		info("Install Go from https://go.dev/dl/")
		return err
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if output != "" {
		cfg.Build.Output = output
	}

	log := newLogger(verbose)
	defer log.Sync()

	info("Building %s...", cfg.Name)

	manifest, err := build.Run(context.Background(), build.Options{
		Config: cfg,
		Logger: log,
		Target: target,
		Clean:  clean,
	})
	if err != nil {
		return err
	}

	success("Built %s (%s) in %s", manifest.Binary, manifest.Target, manifest.Duration)
	return nil
}
