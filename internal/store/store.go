// Package store defines the PresetStore interface for saving and loading
// named parameter sets, with sqlite, postgres and in-memory implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/models"
)

// ErrPresetNotFound is returned when no preset has the requested name.
var ErrPresetNotFound = errors.New("preset not found")

// Preset is a named parameter set for one interpretation.
type Preset struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Interpretation interpretation.ID   `json:"interpretation"`
	Params         models.ParameterSet `json:"params"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// Validate checks the preset name and that its parameters fit its interpretation.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("preset name is required")
	}
	in, err := interpretation.Lookup(p.Interpretation)
	if err != nil {
		return err
	}
	if err := in.Validate(p.Params); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return nil
}

// PresetStore persists presets keyed by unique name.
type PresetStore interface {
	// SavePreset inserts or replaces the preset with the same name and returns
	// the stored record. ID and CreatedAt are kept when replacing.
	SavePreset(ctx context.Context, p Preset) (Preset, error)

	// GetPreset returns the named preset or ErrPresetNotFound.
	GetPreset(ctx context.Context, name string) (Preset, error)

	// ListPresets returns presets ordered by name. An empty id lists all.
	ListPresets(ctx context.Context, id interpretation.ID) ([]Preset, error)

	// DeletePreset removes the named preset or returns ErrPresetNotFound.
	DeletePreset(ctx context.Context, name string) error

	Close() error
}
