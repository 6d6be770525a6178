package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	goruntime "runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkos-run/arkos/internal/config"
	"github.com/arkos-run/arkos/internal/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Name = "myapp"
	require.NoError(t, cfg.Save(filepath.Join(t.TempDir(), config.ConfigFileName)))
	return cfg
}

func TestSplitTargetHostDefault(t *testing.T) {
	goos, goarch, err := splitTarget("")
	require.NoError(t, err)
	assert.Equal(t, goruntime.GOOS, goos)
	assert.Equal(t, goruntime.GOARCH, goarch)
}

func TestSplitTargetValid(t *testing.T) {
	goos, goarch, err := splitTarget("linux/arm64")
	require.NoError(t, err)
	assert.Equal(t, "linux", goos)
	assert.Equal(t, "arm64", goarch)
}

func TestSplitTargetInvalid(t *testing.T) {
	for _, target := range []string{"linux", "linux/", "/amd64", "plan9/amd64", "linux/mips", "a/b/c"} {
		_, _, err := splitTarget(target)
		require.Error(t, err, "target %q", target)
		ae, ok := err.(*errors.ArkosError)
		require.True(t, ok)
		assert.Equal(t, "A161", ae.Code, "target %q", target)
	}
}

func TestOutputDir(t *testing.T) {
	cfg := testConfig(t)

	assert.Equal(t, cfg.OutputPath(), outputDir(cfg, ""))
	assert.Equal(t, filepath.Join(cfg.OutputPath(), "linux-amd64"), outputDir(cfg, "linux/amd64"))
}

func TestBinaryName(t *testing.T) {
	cfg := testConfig(t)

	assert.Equal(t, "myapp", binaryName(cfg, "linux"))
	assert.Equal(t, "myapp.exe", binaryName(cfg, "windows"))

	cfg.Name = ""
	assert.Equal(t, "app", binaryName(cfg, "linux"))
}

func TestLDFlags(t *testing.T) {
	cfg := testConfig(t)

	cfg.Build.StripSymbols = true
	cfg.Build.LDFlags = ""
	assert.Equal(t, "-s -w", ldflags(cfg))

	cfg.Build.LDFlags = "-X main.version=1.0"
	assert.Equal(t, "-X main.version=1.0 -s -w", ldflags(cfg))

	cfg.Build.StripSymbols = false
	assert.Equal(t, "-X main.version=1.0", ldflags(cfg))
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	want := &Manifest{Name: "myapp", Version: "1.2.3", Target: "linux/amd64", Binary: "x"}

	require.NoError(t, writeManifest(dir, want))

	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	require.NoError(t, err)

	var got Manifest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Target, got.Target)
}
