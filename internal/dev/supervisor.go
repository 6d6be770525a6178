package dev

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arkos-run/arkos/internal/config"
	"github.com/arkos-run/arkos/internal/env"
	"github.com/arkos-run/arkos/internal/errors"
)

// SupervisorOptions configures the dev supervisor.
type SupervisorOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives diagnostics.
	Logger *zap.Logger

	// Stdout receives user-facing output (watermark, restart notices).
	Stdout io.Writer

	// Version is printed in the watermark.
	Version string

	// CLIHost and CLIPort are the --host/--port flag values, empty when
	// the flags were not given. They take precedence over everything.
	CLIHost string
	CLIPort string

	// Confirm answers interactive questions. Nil skips all prompts.
	Confirm Confirmer

	// TypesMissing reports whether the generated types artifact is
	// absent. Nil disables the check.
	TypesMissing func() bool

	// GenerateTypes regenerates the types artifact.
	GenerateTypes func() error

	// Debounce overrides the restart debounce window. Zero uses the
	// project configuration.
	Debounce time.Duration
}

// Supervisor owns the dev-mode child process: it loads the environment,
// builds and spawns the application, restarts it on file changes or
// unexpected exits, and prints the watermark once the address is known.
type Supervisor struct {
	opts  SupervisorOptions
	cfg   *config.Config
	log   *zap.Logger
	out   io.Writer
	alloc *Allocator

	runner     *Runner
	srcWatcher *SmartWatcher
	envWatcher *SmartWatcher

	mu           sync.Mutex
	snap         *env.Snapshot
	restartTimer *time.Timer
	pendingBuild bool
	pendingEnv   bool
	runCtx       context.Context
}

// NewSupervisor creates a dev supervisor.
func NewSupervisor(opts SupervisorOptions) *Supervisor {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	cfg := opts.Config

	if opts.Debounce == 0 {
		opts.Debounce = time.Duration(cfg.Dev.DebounceMs) * time.Millisecond
	}

	return &Supervisor{
		opts:  opts,
		cfg:   cfg,
		log:   log,
		out:   out,
		alloc: NewAllocator(log),
		runner: NewRunner(RunnerConfig{
			ProjectDir: cfg.Dir(),
			EntryDir:   cfg.EntryDir(),
			Tags:       cfg.Build.Tags,
			LDFlags:    cfg.Build.LDFlags,
			Logger:     log,
		}),
	}
}

// Run executes the dev startup sequence and blocks until the context is
// cancelled. Startup-phase errors are returned to the caller; steady-state
// errors are logged and absorbed.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.Shutdown()

	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	if os.Getenv("ARKOS_ENV") == "" {
		os.Setenv("ARKOS_ENV", "development")
	}

	if err := s.preflight(); err != nil {
		return err
	}

	// Resolve the address before the spawn so the child binds the port we
	// probed, instead of the probe finding the child's own listener.
	host, port := s.alloc.Resolve(s.lookup(), s.cfg)

	s.logf("Building...")
	result := s.runner.Build(ctx)
	if !result.Success {
		return result.Err
	}
	s.logf("Built in %s", result.Duration.Round(time.Millisecond))

	s.runner.OnExit(s.onUnexpectedExit)
	if err := s.runner.Start(ctx, s.childEnv(host, port)); err != nil {
		return err
	}

	// Watchers arm only after the first successful spawn, so change events
	// never race a child that does not exist.
	if err := s.armWatchers(); err != nil {
		s.logError("Watch failed: %v", err)
	}

	Stamp(s.out, WatermarkInfo{
		Version:    s.opts.Version,
		Host:       host,
		Port:       port,
		EnvFiles:   env.CleanPaths(s.snapshot().Files, s.cfg.Dir()),
		NonLocalIP: s.alloc.FirstNonLocalIP,
	})

	<-ctx.Done()
	return nil
}

// preflight performs the fatal startup checks: environment, entry point,
// and the generated-types artifact.
func (s *Supervisor) preflight() error {
	snap, err := env.Load(s.cfg.Dir(), env.Mode())
	if err != nil {
		return err
	}
	if err := snap.RequireVars("DATABASE_URL"); err != nil {
		return err
	}
	s.setSnapshot(snap)

	if _, err := os.Stat(s.cfg.EntryPath()); err != nil {
		return errors.New("A110").
			WithDetail("Looked for " + s.cfg.EntryPath()).
			WithSuggestion("Set \"entry\" in arkos.json to your application's main file")
	}

	if s.opts.TypesMissing != nil && s.opts.TypesMissing() {
		accepted := false
		if s.opts.Confirm != nil {
			ok, err := s.opts.Confirm.Confirm("Generated types are missing. Generate them now?", true)
			if err != nil {
				return err
			}
			accepted = ok
		}
		if !accepted {
			return errors.New("A120").
				WithSuggestion("Run 'arkos generate types' and start the dev server again")
		}
		if err := s.opts.GenerateTypes(); err != nil {
			return err
		}
	}

	return nil
}

// armWatchers starts the source and environment watchers. Source changes
// trigger a rebuild-and-restart; environment changes reload the snapshot
// before the restart.
func (s *Supervisor) armWatchers() error {
	s.srcWatcher = NewSmartWatcher(WatcherConfig{
		Paths:  CollectWatchPaths(s.cfg),
		Ignore: append(append([]string{}, DefaultIgnore...), s.cfg.Dev.Ignore...),
		Logger: s.log,
	})
	s.srcWatcher.OnChange(func(path string) {
		s.logf("Changed: %s", path)
		s.scheduleRestart(true, false)
	})
	if err := s.srcWatcher.Start(func(path string) {
		s.logf("New file: %s", path)
		s.scheduleRestart(true, false)
	}); err != nil {
		return err
	}

	// Env files are watched through the project root, since fsnotify cannot
	// register paths that do not exist yet, and a new .env.<mode> appearing
	// is exactly the event we need.
	s.envWatcher = NewSmartWatcher(WatcherConfig{
		Paths:  []string{s.cfg.Dir()},
		Ignore: envWatchIgnore,
		Logger: s.log,
	})
	s.envWatcher.OnChange(func(path string) {
		if !isEnvFile(path) {
			return
		}
		s.logf("Environment changed: %s", path)
		s.scheduleRestart(false, true)
	})
	return s.envWatcher.Start(func(path string) {
		if !isEnvFile(path) {
			return
		}
		s.logf("Environment file added: %s", path)
		s.scheduleRestart(false, true)
	})
}

// envWatchIgnore is DefaultIgnore without the .env exclusion.
var envWatchIgnore = []string{
	".git", ".build", ".arkos", "node_modules", "*_test.go", "*.tmp", "*.swp", "*~",
}

func isEnvFile(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".env")
}

// scheduleRestart coalesces bursts of change events into one restart. Only
// one timer is live at a time; a new event resets it.
func (s *Supervisor) scheduleRestart(build, envReload bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingBuild = s.pendingBuild || build
	s.pendingEnv = s.pendingEnv || envReload

	if s.restartTimer != nil {
		s.restartTimer.Stop()
	}
	s.restartTimer = time.AfterFunc(s.opts.Debounce, s.doRestart)
}

// doRestart runs the debounced restart. All failures here are steady-state:
// logged, never fatal to the supervisor.
func (s *Supervisor) doRestart() {
	s.mu.Lock()
	build, envReload := s.pendingBuild, s.pendingEnv
	s.pendingBuild, s.pendingEnv = false, false
	s.restartTimer = nil
	ctx := s.runCtx
	s.mu.Unlock()

	if ctx == nil || ctx.Err() != nil {
		return
	}

	if envReload {
		snap, err := env.Load(s.cfg.Dir(), env.Mode())
		if err != nil {
			s.logError("Environment reload failed: %v", err)
		} else {
			s.setSnapshot(snap)
		}
	}

	if build {
		s.logf("Rebuilding...")
		result := s.runner.Build(ctx)
		if !result.Success {
			s.logError("Build failed:\n%s", result.Output)
			return
		}
		s.logf("Built in %s", result.Duration.Round(time.Millisecond))
	}

	host, port := s.alloc.Resolve(s.lookup(), s.cfg)
	s.logf("Restarting...")
	if err := s.runner.Restart(ctx, s.childEnv(host, port)); err != nil {
		s.logError("Restart failed: %v", err)
	}
}

// onUnexpectedExit respawns a child that died without the supervisor asking.
// One immediate respawn per death; no backoff.
func (s *Supervisor) onUnexpectedExit(exitErr error) {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()

	if ctx == nil || ctx.Err() != nil {
		return
	}

	if exitErr != nil {
		s.logError("App exited unexpectedly: %v", exitErr)
	} else {
		s.logError("App exited unexpectedly")
	}
	s.logf("Restarting...")

	host, port := s.alloc.Resolve(s.lookup(), s.cfg)
	if err := s.runner.Start(ctx, s.childEnv(host, port)); err != nil {
		s.logError("Respawn failed: %v", err)
	}
}

// Shutdown clears any pending restart, closes the watchers, and stops the
// child (gracefully, with forced-kill escalation). Safe to call twice.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	if s.restartTimer != nil {
		s.restartTimer.Stop()
		s.restartTimer = nil
	}
	s.mu.Unlock()

	if s.srcWatcher != nil {
		s.srcWatcher.Close()
	}
	if s.envWatcher != nil {
		s.envWatcher.Close()
	}
	s.runner.Stop()
}

// lookup resolves variables with CLI flags layered on top of the snapshot.
func (s *Supervisor) lookup() Lookup {
	return withCLIOverrides(s.snapshot().Lookup, s.opts.CLIHost, s.opts.CLIPort)
}

// childEnv builds the child's environment: file values < process env <
// resolved address < invocation markers.
func (s *Supervisor) childEnv(host, port string) []string {
	return s.snapshot().Environ(os.Environ(), map[string]string{
		"HOST":        host,
		"PORT":        port,
		"ARKOS_ENV":   s.snapshot().Mode,
		"CLI_COMMAND": "dev",
		"CLI":         "false",
	})
}

func (s *Supervisor) snapshot() *env.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *Supervisor) setSnapshot(snap *env.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// logf prints a timestamped user-facing line.
func (s *Supervisor) logf(format string, args ...any) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(s.out, "[%s] %s\n", timestamp, fmt.Sprintf(format, args...))
}

// logError prints a timestamped error line.
func (s *Supervisor) logError(format string, args ...any) {
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(s.out, "[%s] \033[31m%s\033[0m\n", timestamp, fmt.Sprintf(format, args...))
}

// withCLIOverrides layers explicit --host/--port flag values over a lookup.
func withCLIOverrides(base Lookup, cliHost, cliPort string) Lookup {
	return func(key string) (string, bool) {
		switch key {
		case "CLI_HOST":
			if cliHost != "" {
				return cliHost, true
			}
		case "CLI_PORT":
			if cliPort != "" {
				return cliPort, true
			}
		}
		return base(key)
	}
}
