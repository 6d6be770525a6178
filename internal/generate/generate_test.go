package generate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkos-run/arkos/internal/config"
	"github.com/arkos-run/arkos/internal/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	require.NoError(t, cfg.Save(filepath.Join(t.TempDir(), config.ConfigFileName)))
	return cfg
}

func TestComponentController(t *testing.T) {
	cfg := testConfig(t)

	path, err := Component(KindController, Options{Config: cfg, Model: "user"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Dir(), "app", "user", "user_controller.go"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "package user")
	assert.Contains(t, string(content), "UserController")
}

func TestComponentNeverOverwrites(t *testing.T) {
	cfg := testConfig(t)

	_, err := Component(KindService, Options{Config: cfg, Model: "user"})
	require.NoError(t, err)

	_, err = Component(KindService, Options{Config: cfg, Model: "user"})
	require.Error(t, err)
	ae, ok := err.(*errors.ArkosError)
	require.True(t, ok)
	assert.Equal(t, "A122", ae.Code)
}

func TestComponentCustomPath(t *testing.T) {
	cfg := testConfig(t)

	path, err := Component(KindRouter, Options{Config: cfg, Model: "post", Path: "internal/post"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Dir(), "internal", "post", "post_router.go"), path)
}

func TestComponentUnknownKind(t *testing.T) {
	cfg := testConfig(t)

	_, err := Component("widget", Options{Config: cfg, Model: "user"})
	require.Error(t, err)
	ae, ok := err.(*errors.ArkosError)
	require.True(t, ok)
	assert.Equal(t, "A121", ae.Code)
}

func TestComponentRequiresModel(t *testing.T) {
	cfg := testConfig(t)

	_, err := Component(KindController, Options{Config: cfg})
	require.Error(t, err)
}

func TestComponentRejectsSeparatorOnlyModel(t *testing.T) {
	cfg := testConfig(t)

	for _, model := range []string{"_", "-", "__", " ", "-_ "} {
		_, err := Component(KindController, Options{Config: cfg, Model: model})
		require.Error(t, err, "model %q", model)
		ae, ok := err.(*errors.ArkosError)
		require.True(t, ok, "model %q", model)
		assert.Equal(t, "A121", ae.Code, "model %q", model)
	}
}

func TestTypesArtifact(t *testing.T) {
	cfg := testConfig(t)
	assert.False(t, TypesArtifactExists(cfg))

	path, err := Types(Options{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, TypesArtifactPath(cfg), path)
	assert.True(t, TypesArtifactExists(cfg))

	// Regenerating the artifact replaces it.
	_, err = Types(Options{Config: cfg})
	require.NoError(t, err)
}

func TestExportedName(t *testing.T) {
	cases := map[string]string{
		"user":      "User",
		"blog_post": "BlogPost",
		"blog-post": "BlogPost",
		"blogPost":  "BlogPost",
		"BlogPost":  "BlogPost",
	}
	for in, want := range cases {
		assert.Equal(t, want, exportedName(in), "input %q", in)
	}
}

func TestGeneratedRouterMentionsRoutes(t *testing.T) {
	cfg := testConfig(t)

	path, err := Component(KindRouter, Options{Config: cfg, Model: "user"})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	if !strings.Contains(string(content), "MountUserRoutes") {
		t.Errorf("router template missing mount function:\n%s", content)
	}
}
