package dev

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arkos-run/arkos/internal/errors"
)

// killGrace is how long a child gets to exit after the graceful signal
// before it is killed forcefully.
const killGrace = 5 * time.Second

// RunnerConfig configures the application runner.
type RunnerConfig struct {
	// ProjectDir is the root directory of the project.
	ProjectDir string

	// EntryDir is the package directory passed to go build.
	EntryDir string

	// BinaryPath is where to write the compiled binary.
	BinaryPath string

	// CachePath is where to store the Go build cache.
	CachePath string

	// Tags are build tags to pass to go build.
	Tags []string

	// LDFlags are linker flags to pass to go build.
	LDFlags string

	// Logger receives runner diagnostics.
	Logger *zap.Logger
}

// BuildResult contains the result of a build.
type BuildResult struct {
	// Success indicates if the build succeeded.
	Success bool

	// Duration is how long the build took.
	Duration time.Duration

	// Output is the compiler output.
	Output string

	// Err is the build error, if any.
	Err error
}

// Runner compiles the application and owns the single child-process handle.
// At most one child is alive at a time: starting always stops the previous
// handle first.
type Runner struct {
	config RunnerConfig
	log    *zap.Logger

	mu     sync.Mutex
	proc   *processHandle
	onExit func(error)
}

// NewRunner creates a runner.
func NewRunner(config RunnerConfig) *Runner {
	if config.EntryDir == "" {
		config.EntryDir = config.ProjectDir
	}
	if config.BinaryPath == "" {
		config.BinaryPath = filepath.Join(config.ProjectDir, ".arkos", "bin", "app")
	}
	if config.CachePath == "" {
		config.CachePath = filepath.Join(config.ProjectDir, ".arkos", "cache")
	}
	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{config: config, log: log}
}

// OnExit sets the callback invoked when the child dies without the runner
// stopping it. Runs at most once per child.
func (r *Runner) OnExit(fn func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExit = fn
}

// Build compiles the entry package.
func (r *Runner) Build(ctx context.Context) BuildResult {
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(r.config.BinaryPath), 0755); err != nil {
		return BuildResult{Duration: time.Since(start), Err: errors.New("A160").Wrap(err)}
	}
	if err := os.MkdirAll(r.config.CachePath, 0755); err != nil {
		return BuildResult{Duration: time.Since(start), Err: errors.New("A160").Wrap(err)}
	}

	args := []string{"build", "-o", r.config.BinaryPath}
	if len(r.config.Tags) > 0 {
		args = append(args, "-tags", strings.Join(r.config.Tags, ","))
	}
	if r.config.LDFlags != "" {
		args = append(args, "-ldflags", r.config.LDFlags)
	}
	args = append(args, ".")

	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Dir = r.config.EntryDir
	cmd.Env = append(os.Environ(), "GOCACHE="+r.config.CachePath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	output := stderr.String()
	if output == "" {
		output = stdout.String()
	}

	if err != nil {
		return BuildResult{
			Duration: duration,
			Output:   output,
			Err:      errors.New("A160").WithDetail(output).Wrap(err),
		}
	}

	return BuildResult{Success: true, Duration: duration, Output: output}
}

// Start spawns the compiled binary with the given environment, stopping any
// previous child first.
func (r *Runner) Start(ctx context.Context, childEnv []string) error {
	r.mu.Lock()
	if r.proc != nil {
		prev := r.proc
		r.proc = nil
		r.mu.Unlock()
		stopProcess(prev, killGrace)
		r.mu.Lock()
	}

	proc, err := startProcess(ctx, r.config.BinaryPath, r.config.ProjectDir, childEnv)
	if err != nil {
		r.mu.Unlock()
		return errors.New("A170").Wrap(err)
	}

	r.proc = proc
	r.mu.Unlock()

	r.log.Debug("app started", zap.Int("pid", proc.cmd.Process.Pid))
	go r.monitor(proc)
	return nil
}

// monitor waits for the child to exit and reports deaths the runner did not
// initiate. Intentional stops clear the handle before signaling, so the
// identity check filters them out.
func (r *Runner) monitor(proc *processHandle) {
	<-proc.done

	r.mu.Lock()
	if r.proc != proc {
		r.mu.Unlock()
		return
	}
	r.proc = nil
	cb := r.onExit
	r.mu.Unlock()

	if cb != nil {
		cb(proc.err)
	}
}

// Stop terminates the child gracefully, escalating to a forced kill after
// the grace period. No-op when no child is running.
func (r *Runner) Stop() {
	r.mu.Lock()
	proc := r.proc
	r.proc = nil
	r.mu.Unlock()

	if proc != nil {
		stopProcess(proc, killGrace)
	}
}

// Restart stops the current child and spawns a new one.
func (r *Runner) Restart(ctx context.Context, childEnv []string) error {
	r.Stop()
	return r.Start(ctx, childEnv)
}

// IsRunning returns whether a child process is alive.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.proc != nil
}

// BinaryPath returns the path to the compiled binary.
func (r *Runner) BinaryPath() string {
	return r.config.BinaryPath
}

// Clean removes the build cache and binary.
func (r *Runner) Clean() error {
	r.Stop()

	if err := os.RemoveAll(r.config.CachePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(r.config.BinaryPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
