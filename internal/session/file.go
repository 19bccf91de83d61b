package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/models"
)

// stateFile is the default session state filename.
const stateFile = "session-state.json"

// persistedState is the on-disk representation of a session.
// Outcomes and reports are derived data and are recomputed after loading.
type persistedState struct {
	ID             string              `json:"id"`
	Interpretation interpretation.ID   `json:"interpretation,omitempty"`
	Params         models.ParameterSet `json:"params,omitempty"`
}

// SaveState persists the session to a JSON file in the given directory.
// The directory must already exist.
func SaveState(s Session, dir string) error {
	ps := persistedState{
		ID:             s.id,
		Interpretation: s.interpretation,
		Params:         s.params,
	}

	data, err := json.MarshalIndent(ps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session state: %w", err)
	}

	path := filepath.Join(dir, stateFile)

	// Write atomically via temp file + rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing session state temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming session state file: %w", err)
	}

	return nil
}

// LoadState reads a session from the given directory.
// If the file does not exist, it returns a fresh empty session.
// A stored interpretation is re-validated against the registry.
func LoadState(dir string) (Session, error) {
	path := filepath.Join(dir, stateFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return Session{}, fmt.Errorf("reading session state: %w", err)
	}

	var ps persistedState
	if err := json.Unmarshal(data, &ps); err != nil {
		return Session{}, fmt.Errorf("unmarshaling session state: %w", err)
	}

	s := Session{id: ps.ID}
	if s.id == "" {
		s = New()
	}
	if ps.Interpretation == "" {
		return s, nil
	}

	s, err = s.Select(ps.Interpretation)
	if err != nil {
		return Session{}, fmt.Errorf("restoring session: %w", err)
	}
	in, _ := interpretation.Lookup(ps.Interpretation)
	s, err = s.WithParams(in.Complete(ps.Params))
	if err != nil {
		return Session{}, fmt.Errorf("restoring session parameters: %w", err)
	}
	return s, nil
}

// StateFilePath returns the expected path for the session state file in the given directory.
func StateFilePath(dir string) string {
	return filepath.Join(dir, stateFile)
}

// RemoveState removes the session state file from the given directory.
// It is not an error if the file does not exist.
func RemoveState(dir string) error {
	path := filepath.Join(dir, stateFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session state: %w", err)
	}
	return nil
}
