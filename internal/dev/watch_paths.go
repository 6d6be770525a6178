package dev

import (
	"path/filepath"

	"github.com/arkos-run/arkos/internal/config"
)

// CollectWatchPaths returns a normalized list of source and config paths the
// dev supervisor watches for restarts.
func CollectWatchPaths(cfg *config.Config) []string {
	projectDir := cfg.Dir()
	paths := []string{
		cfg.EntryPath(),
		filepath.Join(projectDir, "go.mod"),
		filepath.Join(projectDir, config.ConfigFileName),
	}

	for _, p := range cfg.Dev.Watch {
		paths = append(paths, resolvePath(projectDir, p))
	}

	unique := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	return unique
}

func resolvePath(projectDir, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}
