// Package build produces the production binary and its manifest.
package build

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arkos-run/arkos/internal/config"
	"github.com/arkos-run/arkos/internal/errors"
)

// ManifestFileName is written next to the binary after a successful build.
const ManifestFileName = "manifest.json"

// knownOS and knownArch bound what --target accepts. The list is the set of
// platforms the framework is tested on, not everything the toolchain knows.
var (
	knownOS   = map[string]bool{"linux": true, "darwin": true, "windows": true, "freebsd": true}
	knownArch = map[string]bool{"amd64": true, "arm64": true, "386": true, "arm": true}
)

// Options configures a production build.
type Options struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives build diagnostics.
	Logger *zap.Logger

	// Target overrides the configured build target, as "os/arch".
	// Empty builds for the host platform.
	Target string

	// Clean removes the output directory before building.
	Clean bool
}

// Manifest describes a completed build.
type Manifest struct {
	Name     string    `json:"name"`
	Version  string    `json:"version"`
	Target   string    `json:"target"`
	Binary   string    `json:"binary"`
	BuiltAt  time.Time `json:"built_at"`
	Duration string    `json:"duration"`
}

// Run compiles the application into the configured output directory and
// writes a manifest describing the result.
func Run(ctx context.Context, opts Options) (*Manifest, error) {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	target := opts.Target
	if target == "" {
		target = cfg.Build.Target
	}
	goos, goarch, err := splitTarget(target)
	if err != nil {
		return nil, err
	}

	outDir := outputDir(cfg, target)
	if opts.Clean {
		if err := os.RemoveAll(cfg.OutputPath()); err != nil {
			return nil, errors.New("A160").Wrap(err)
		}
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errors.New("A160").Wrap(err)
	}

	binary := filepath.Join(outDir, binaryName(cfg, goos))

	args := []string{"build", "-o", binary}
	if len(cfg.Build.Tags) > 0 {
		args = append(args, "-tags", strings.Join(cfg.Build.Tags, ","))
	}
	if flags := ldflags(cfg); flags != "" {
		args = append(args, "-ldflags", flags)
	}
	args = append(args, ".")

	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Dir = cfg.EntryDir()
	cmd.Env = append(os.Environ(), "GOOS="+goos, "GOARCH="+goarch, "CGO_ENABLED=0")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	log.Info("building",
		zap.String("target", goos+"/"+goarch),
		zap.String("output", binary))

	if err := cmd.Run(); err != nil {
		return nil, errors.New("A160").
			WithDetail(stderr.String()).
			Wrap(err)
	}
	duration := time.Since(start)

	manifest := &Manifest{
		Name:     cfg.Name,
		Version:  cfg.Version,
		Target:   goos + "/" + goarch,
		Binary:   binary,
		BuiltAt:  time.Now().UTC(),
		Duration: duration.Round(time.Millisecond).String(),
	}
	if err := writeManifest(outDir, manifest); err != nil {
		return nil, err
	}

	log.Info("build complete", zap.Duration("duration", duration))
	return manifest, nil
}

// splitTarget parses and validates an "os/arch" pair. Empty means the host
// platform.
func splitTarget(target string) (goos, goarch string, err error) {
	if target == "" {
		return goruntime.GOOS, goruntime.GOARCH, nil
	}

	parts := strings.Split(target, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New("A161").
			WithDetail("Target must be of the form os/arch, got " + target).
			WithSuggestion("Example: --target linux/amd64")
	}
	if !knownOS[parts[0]] || !knownArch[parts[1]] {
		return "", "", errors.New("A161").
			WithDetail("Unsupported target " + target).
			WithSuggestion("Supported: linux, darwin, windows, freebsd on amd64, arm64, 386, arm")
	}
	return parts[0], parts[1], nil
}

// outputDir puts host builds directly in the output directory and
// cross builds in an os-arch subdirectory.
func outputDir(cfg *config.Config, target string) string {
	if target == "" {
		return cfg.OutputPath()
	}
	return filepath.Join(cfg.OutputPath(), strings.ReplaceAll(target, "/", "-"))
}

func binaryName(cfg *config.Config, goos string) string {
	name := cfg.Name
	if name == "" {
		name = "app"
	}
	if goos == "windows" {
		name += ".exe"
	}
	return name
}

// ldflags merges configured linker flags with symbol stripping.
func ldflags(cfg *config.Config) string {
	flags := cfg.Build.LDFlags
	if cfg.Build.StripSymbols {
		if flags != "" {
			flags += " "
		}
		flags += "-s -w"
	}
	return flags
}

func writeManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.New("A160").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), data, 0644); err != nil {
		return errors.New("A160").Wrap(err)
	}
	return nil
}
