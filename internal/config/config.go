package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/arkos-run/arkos/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "arkos.json"

	// DefaultPort is the default application port.
	DefaultPort = 8000

	// DefaultEntry is the default application entry point.
	DefaultEntry = "main.go"

	// DefaultOutput is the default build output directory.
	DefaultOutput = ".build"
)

// Config represents the complete arkos.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty"`

	// Entry is the application entry point, relative to the project root.
	Entry string `json:"entry,omitempty"`

	// Host is the host the application binds to.
	Host string `json:"host,omitempty"`

	// Port is the port the application listens on.
	Port int `json:"port,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// Build contains production build configuration.
	Build BuildConfig `json:"build,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// DevConfig contains development server settings.
type DevConfig struct {
	// Watch contains extra paths to watch for changes.
	Watch []string `json:"watch,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty"`

	// DebounceMs is the restart debounce window in milliseconds.
	DebounceMs int `json:"debounceMs,omitempty"`
}

// BuildConfig contains production build settings.
type BuildConfig struct {
	// Output is the output directory for builds.
	Output string `json:"output,omitempty"`

	// Target is the Go build target (e.g., "linux/amd64").
	Target string `json:"target,omitempty"`

	// LDFlags are additional linker flags for go build.
	LDFlags string `json:"ldflags,omitempty"`

	// Tags are build tags to pass to go build.
	Tags []string `json:"tags,omitempty"`

	// StripSymbols strips debug symbols from the binary (-ldflags="-s -w").
	StripSymbols bool `json:"stripSymbols,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Version: "0.1.0",
		Entry:   DefaultEntry,
		Port:    DefaultPort,
		Dev: DevConfig{
			Watch:      []string{"app"},
			DebounceMs: 1000,
		},
		Build: BuildConfig{
			Output:       DefaultOutput,
			StripSymbols: true,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for arkos.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("A100").
				WithDetail("No arkos.json found in " + filepath.Dir(path)).
				WithSuggestion("Create arkos.json in the project root")
		}
		return nil, errors.New("A101").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("A101").
			WithDetail("Failed to parse arkos.json: " + err.Error()).
			WithSuggestion("Check that arkos.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("A101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("A101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Entry == "" {
		c.Entry = DefaultEntry
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Dev.Watch == nil {
		c.Dev.Watch = []string{"app"}
	}
	if c.Dev.DebounceMs == 0 {
		c.Dev.DebounceMs = 1000
	}
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.New("A102").
			WithDetail("Port must be between 0 and 65535")
	}
	if c.Dev.DebounceMs < 0 {
		return errors.New("A102").
			WithDetail("dev.debounceMs must not be negative")
	}
	return nil
}

// PortString returns the configured port as a string, empty when unset.
func (c *Config) PortString() string {
	if c.Port == 0 {
		return ""
	}
	return strconv.Itoa(c.Port)
}

// EntryPath returns the absolute path to the application entry point.
func (c *Config) EntryPath() string {
	if filepath.IsAbs(c.Entry) {
		return c.Entry
	}
	return filepath.Join(c.Dir(), c.Entry)
}

// EntryDir returns the directory containing the entry point, which is the
// package passed to go build.
func (c *Config) EntryDir() string {
	return filepath.Dir(c.EntryPath())
}

// OutputPath returns the absolute path to the build output directory.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Build.Output) {
		return c.Build.Output
	}
	return filepath.Join(c.Dir(), c.Build.Output)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing arkos.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("A100").
				WithDetail("No arkos.json found in " + startDir + " or any parent directory").
				WithSuggestion("Create arkos.json in the project root")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
