package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".env", "DATABASE_URL=postgres://base\nSHARED=base\n")
	write(t, dir, ".env.development", "SHARED=dev\nDEV_ONLY=1\n")
	write(t, dir, ".env.local", "SHARED=local\n")

	snap, err := Load(dir, "development")
	require.NoError(t, err)

	assert.Equal(t, "local", snap.Values["SHARED"], "later files override earlier ones")
	assert.Equal(t, "postgres://base", snap.Values["DATABASE_URL"])
	assert.Equal(t, "1", snap.Values["DEV_ONLY"])

	wantFiles := []string{
		filepath.Join(dir, ".env"),
		filepath.Join(dir, ".env.development"),
		filepath.Join(dir, ".env.local"),
	}
	assert.Equal(t, wantFiles, snap.Files, "files recorded in load order")
}

func TestLoadSkipsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".env", "A=1\n")

	snap, err := Load(dir, "production")
	require.NoError(t, err)
	assert.Len(t, snap.Files, 1)
	assert.Equal(t, "1", snap.Values["A"])
}

func TestLoadSkipsEnvLocalInTestMode(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".env", "A=base\n")
	write(t, dir, ".env.local", "A=local\n")
	write(t, dir, ".env.test", "A=test\n")

	snap, err := Load(dir, "test")
	require.NoError(t, err)
	assert.Equal(t, "test", snap.Values["A"])
	for _, f := range snap.Files {
		assert.NotEqual(t, filepath.Join(dir, ".env.local"), f)
	}
}

func TestLoadDoesNotTouchProcessEnv(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".env", "ARKOS_ENV_TEST_NEW=file\n")

	os.Unsetenv("ARKOS_ENV_TEST_NEW")

	snap, err := Load(dir, "development")
	require.NoError(t, err)

	assert.Equal(t, "file", snap.Values["ARKOS_ENV_TEST_NEW"])
	_, exists := os.LookupEnv("ARKOS_ENV_TEST_NEW")
	assert.False(t, exists, "file values must stay snapshot-only")
}

func TestReloadedValuesReachChildEnv(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".env", "RELOAD_VAL=old\nRELOAD_GONE=1\n")

	snap, err := Load(dir, "development")
	require.NoError(t, err)
	assert.Contains(t, snap.Environ(os.Environ(), nil), "RELOAD_VAL=old")

	// Edit the file, reload, and rebuild the child environment: the fresh
	// value must win and the deleted variable must disappear.
	write(t, dir, ".env", "RELOAD_VAL=new\n")
	snap, err = Load(dir, "development")
	require.NoError(t, err)

	got := snap.Environ(os.Environ(), nil)
	assert.Contains(t, got, "RELOAD_VAL=new")
	assert.NotContains(t, got, "RELOAD_VAL=old")
	assert.NotContains(t, got, "RELOAD_GONE=1")
}

func TestEnvironLayering(t *testing.T) {
	snap := &Snapshot{Values: map[string]string{"A": "file", "B": "file"}}

	got := snap.Environ([]string{"A=process"}, map[string]string{"C": "extra"})

	asMap := map[string]string{}
	for _, kv := range got {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				asMap[kv[:i]] = kv[i+1:]
				break
			}
		}
	}

	assert.Equal(t, "process", asMap["A"], "base wins over file values")
	assert.Equal(t, "file", asMap["B"])
	assert.Equal(t, "extra", asMap["C"])
}

func TestRequireVars(t *testing.T) {
	snap := &Snapshot{Values: map[string]string{"DATABASE_URL": "postgres://x"}}

	assert.NoError(t, snap.RequireVars("DATABASE_URL"))

	err := snap.RequireVars("ARKOS_REQUIRE_DEFINITELY_MISSING")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A141")
}

func TestMode(t *testing.T) {
	t.Setenv("ARKOS_ENV", "")
	assert.Equal(t, DefaultMode, Mode())

	t.Setenv("ARKOS_ENV", "staging")
	assert.Equal(t, "staging", Mode())
}

func TestCleanPaths(t *testing.T) {
	got := CleanPaths([]string{"/proj/.env", "/proj/.env.local", "/other/.env"}, "/proj")
	assert.Equal(t, []string{".env", ".env.local", "/other/.env"}, got)
}
