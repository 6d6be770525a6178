// Package env loads layered .env files for an Arkos project.
//
// Files are applied lowest precedence first: .env, .env.<mode>, .env.local,
// .env.<mode>.local. Values already present in the process environment always
// win over file values. File values are never exported into the loading
// process's own environment: they live only in the Snapshot, so a reload
// replaces them cleanly and deletions actually disappear.
package env

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/arkos-run/arkos/internal/errors"
)

// DefaultMode is used when ARKOS_ENV is unset.
const DefaultMode = "development"

// Snapshot is the result of one full environment load. It is read-only after
// construction; reloads build a fresh snapshot.
type Snapshot struct {
	// Mode is the environment mode the snapshot was loaded for.
	Mode string

	// Files are the env-file paths that were successfully loaded, in
	// load order (lowest precedence first).
	Files []string

	// Values are the merged file values, later files overriding earlier
	// ones. Process environment values are not included.
	Values map[string]string
}

// Mode returns the current environment mode from the process environment.
func Mode() string {
	if mode := os.Getenv("ARKOS_ENV"); mode != "" {
		return mode
	}
	return DefaultMode
}

// candidates returns the env-file names for a mode, lowest precedence first.
// .env.local is skipped in test mode so tests run against a clean base, the
// same convention dotenv tooling follows.
func candidates(mode string) []string {
	names := []string{".env", ".env." + mode}
	if mode != "test" {
		names = append(names, ".env.local")
	}
	return append(names, ".env."+mode+".local")
}

// Load reads all env files present in dir for the given mode.
// Missing files are skipped; unreadable or malformed files are an error.
func Load(dir, mode string) (*Snapshot, error) {
	if mode == "" {
		mode = DefaultMode
	}

	snap := &Snapshot{
		Mode:   mode,
		Values: make(map[string]string),
	}

	for _, name := range candidates(mode) {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		values, err := godotenv.Read(path)
		if err != nil {
			return nil, errors.New("A140").
				WithDetail("Failed to parse " + path + ": " + err.Error()).
				WithSuggestion("Check the file for malformed KEY=value lines")
		}

		for k, v := range values {
			snap.Values[k] = v
		}
		snap.Files = append(snap.Files, path)
	}

	return snap, nil
}

// Lookup returns a value by checking the process environment first, then the
// snapshot file values.
func (s *Snapshot) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := s.Values[key]
	return v, ok
}

// Environ layers the snapshot over a base environment list and returns a new
// list suitable for exec.Cmd.Env. Entries in base win over file values,
// extra entries win over everything.
func (s *Snapshot) Environ(base []string, extra map[string]string) []string {
	merged := make(map[string]string, len(s.Values)+len(base)+len(extra))
	for k, v := range s.Values {
		merged[k] = v
	}
	for _, kv := range base {
		if i := strings.IndexByte(kv, '='); i > 0 {
			merged[kv[:i]] = kv[i+1:]
		}
	}
	for k, v := range extra {
		merged[k] = v
	}

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	return out
}

// RequireVars verifies that every named variable is resolvable through the
// snapshot. The first missing variable is reported.
func (s *Snapshot) RequireVars(names ...string) error {
	for _, name := range names {
		if _, ok := s.Lookup(name); !ok {
			return errors.New("A141").
				WithDetail("Variable " + name + " is not set in the environment or any loaded .env file").
				WithSuggestion("Add " + name + " to .env or export it before starting")
		}
	}
	return nil
}

// CleanPaths strips the working-directory prefix from file paths for display.
func CleanPaths(files []string, wd string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		cleaned := filepath.ToSlash(f)
		prefix := filepath.ToSlash(wd)
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimPrefix(cleaned, prefix)
			cleaned = strings.TrimPrefix(cleaned, "/")
		}
		out = append(out, cleaned)
	}
	return out
}
