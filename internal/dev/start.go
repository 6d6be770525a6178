package dev

import (
	"context"
	"io"
	"os"
	"path/filepath"
	goruntime "runtime"
	"time"

	"go.uber.org/zap"

	"github.com/arkos-run/arkos/internal/config"
	"github.com/arkos-run/arkos/internal/env"
	"github.com/arkos-run/arkos/internal/errors"
	"github.com/arkos-run/arkos/pkg/runtime"
)

const (
	// statePollAttempts is how many times the start command polls for the
	// application's handshake file before falling back to the configured
	// address.
	statePollAttempts = 10

	// statePollDelay is the pause between handshake polls.
	statePollDelay = 500 * time.Millisecond
)

// StartOptions configures the production start command.
type StartOptions struct {
	Config  *config.Config
	Logger  *zap.Logger
	Stdout  io.Writer
	Version string
	CLIHost string
	CLIPort string

	// PollAttempts and PollDelay override the handshake polling schedule.
	// Zero values use the defaults.
	PollAttempts int
	PollDelay    time.Duration
}

// RunStart launches the production binary and blocks until the context is
// cancelled. Unlike dev mode there is no build, no watching, and no respawn:
// a dead child in production is the operator's signal, not ours to hide.
func RunStart(ctx context.Context, opts StartOptions) error {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	attempts := opts.PollAttempts
	if attempts == 0 {
		attempts = statePollAttempts
	}
	delay := opts.PollDelay
	if delay == 0 {
		delay = statePollDelay
	}

	if os.Getenv("ARKOS_ENV") == "" {
		os.Setenv("ARKOS_ENV", "production")
	}
	os.Setenv("ARKOS_BUILD", "true")

	snap, err := env.Load(cfg.Dir(), env.Mode())
	if err != nil {
		return err
	}
	if err := snap.RequireVars("DATABASE_URL"); err != nil {
		return err
	}

	binary := productionBinaryPath(cfg)
	if _, err := os.Stat(binary); err != nil {
		return errors.New("A171").
			WithDetail("Looked for " + binary).
			WithSuggestion("Run 'arkos build' first")
	}

	lookup := withCLIOverrides(snap.Lookup, opts.CLIHost, opts.CLIPort)

	extra := map[string]string{
		"ARKOS_ENV":   snap.Mode,
		"ARKOS_BUILD": "true",
		"CLI_COMMAND": "start",
		"CLI":         "false",
	}
	if opts.CLIHost != "" {
		extra["HOST"] = opts.CLIHost
	}
	if opts.CLIPort != "" {
		extra["PORT"] = opts.CLIPort
	}
	childEnv := snap.Environ(os.Environ(), extra)

	runner := NewRunner(RunnerConfig{
		ProjectDir: cfg.Dir(),
		BinaryPath: binary,
		Logger:     log,
	})
	runner.OnExit(func(exitErr error) {
		if exitErr != nil {
			log.Error("app exited", zap.Error(exitErr))
		} else {
			log.Info("app exited")
		}
	})
	defer runner.Stop()

	if err := runner.Start(ctx, childEnv); err != nil {
		return err
	}

	// The app writes its bound address once it is listening. Poll for it so
	// the watermark shows the real address, not our guess.
	host, port := "", ""
	for i := 0; i < attempts; i++ {
		if st, err := runtime.ReadState(cfg.Dir()); err == nil {
			host, port = st.Host, st.Port
			break
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
	if host == "" {
		host, port = HostAndPort(lookup, cfg)
	}

	alloc := NewAllocator(log)
	Stamp(out, WatermarkInfo{
		Version:    opts.Version,
		Host:       host,
		Port:       port,
		EnvFiles:   env.CleanPaths(snap.Files, cfg.Dir()),
		NonLocalIP: alloc.FirstNonLocalIP,
	})

	<-ctx.Done()
	return nil
}

// productionBinaryPath is where the build command places the runnable binary
// for the current platform.
func productionBinaryPath(cfg *config.Config) string {
	name := binaryName(cfg)
	if goruntime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(cfg.OutputPath(), name)
}

// binaryName derives the output binary name from the project name.
func binaryName(cfg *config.Config) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	return "app"
}
