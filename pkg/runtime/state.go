package runtime

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// StateDirName is the per-project directory Arkos uses for generated state.
const StateDirName = ".arkos"

// StateFileName is the runtime handshake file the supervisor polls to learn
// the address a running application actually bound to.
const StateFileName = "runtime.json"

// State is the runtime configuration a running application exposes.
type State struct {
	Host      string    `json:"host"`
	Port      string    `json:"port"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// StatePath returns the handshake file path for a project directory.
func StatePath(projectDir string) string {
	return filepath.Join(projectDir, StateDirName, StateFileName)
}

// WriteState persists the runtime state for the supervisor to read.
func WriteState(projectDir string, st State) error {
	dir := filepath.Join(projectDir, StateDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(StatePath(projectDir), data, 0644)
}

// ReadState loads the runtime state, or an error when the application has
// not written it yet.
func ReadState(projectDir string) (*State, error) {
	data, err := os.ReadFile(StatePath(projectDir))
	if err != nil {
		return nil, err
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// RemoveState deletes the handshake file. Missing files are not an error.
func RemoveState(projectDir string) error {
	err := os.Remove(StatePath(projectDir))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
