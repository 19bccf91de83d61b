package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvandessel/selfsim/internal/interpretation"
)

// InMemoryPresetStore implements PresetStore for testing and ephemeral servers.
type InMemoryPresetStore struct {
	mu      sync.RWMutex
	presets map[string]Preset
	nowFunc func() time.Time
}

// NewInMemoryPresetStore creates an empty in-memory store.
func NewInMemoryPresetStore() *InMemoryPresetStore {
	return &InMemoryPresetStore{
		presets: make(map[string]Preset),
		nowFunc: time.Now,
	}
}

// SavePreset inserts or replaces a preset by name.
func (s *InMemoryPresetStore) SavePreset(ctx context.Context, p Preset) (Preset, error) {
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc().UTC()
	stored := Preset{
		ID:             uuid.NewString(),
		Name:           p.Name,
		Interpretation: p.Interpretation,
		Params:         p.Params.Clone(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if existing, ok := s.presets[p.Name]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	s.presets[p.Name] = stored
	return copyPreset(stored), nil
}

// GetPreset retrieves a preset by name.
func (s *InMemoryPresetStore) GetPreset(ctx context.Context, name string) (Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return copyPreset(p), nil
}

// ListPresets returns presets sorted by name, optionally filtered by interpretation.
func (s *InMemoryPresetStore) ListPresets(ctx context.Context, id interpretation.ID) ([]Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Preset, 0, len(s.presets))
	for _, p := range s.presets {
		if id != "" && p.Interpretation != id {
			continue
		}
		out = append(out, copyPreset(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeletePreset removes a preset by name.
func (s *InMemoryPresetStore) DeletePreset(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.presets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	delete(s.presets, name)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryPresetStore) Close() error {
	return nil
}

func copyPreset(p Preset) Preset {
	p.Params = p.Params.Clone()
	return p
}
