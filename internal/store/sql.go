package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/models"
)

// dialect selects placeholder syntax and engine-specific checks.
type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// rebind rewrites ? placeholders to $N for postgres.
func (d dialect) rebind(query string) string {
	if d != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqlPresetStore implements PresetStore over database/sql. The sqlite and
// postgres stores embed it and differ only in how the connection is opened.
type sqlPresetStore struct {
	mu      sync.RWMutex
	db      *sql.DB
	dialect dialect
}

// SavePreset upserts by name, keeping the original ID and created_at.
func (s *sqlPresetStore) SavePreset(ctx context.Context, p Preset) (Preset, error) {
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}

	paramsJSON, err := json.Marshal(p.Params)
	if err != nil {
		return Preset{}, fmt.Errorf("failed to marshal params: %w", err)
	}

	s.mu.Lock()
	now := formatTime(nowUTC())
	_, err = s.db.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO presets (id, name, interpretation, params, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			interpretation = excluded.interpretation,
			params = excluded.params,
			updated_at = excluded.updated_at`),
		uuid.NewString(), p.Name, string(p.Interpretation), string(paramsJSON), now, now)
	s.mu.Unlock()
	if err != nil {
		return Preset{}, fmt.Errorf("failed to save preset %s: %w", p.Name, err)
	}

	return s.GetPreset(ctx, p.Name)
}

// GetPreset retrieves a preset by name.
func (s *sqlPresetStore) GetPreset(ctx context.Context, name string) (Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, s.dialect.rebind(`
		SELECT id, name, interpretation, params, created_at, updated_at
		FROM presets WHERE name = ?`), name)

	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	if err != nil {
		return Preset{}, fmt.Errorf("failed to get preset %s: %w", name, err)
	}
	return p, nil
}

// ListPresets returns presets ordered by name, optionally filtered by interpretation.
func (s *sqlPresetStore) ListPresets(ctx context.Context, id interpretation.ID) ([]Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, interpretation, params, created_at, updated_at FROM presets`
	var args []interface{}
	if id != "" {
		query += ` WHERE interpretation = ?`
		args = append(args, string(id))
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	presets := make([]Preset, 0)
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// DeletePreset removes a preset by name.
func (s *sqlPresetStore) DeletePreset(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM presets WHERE name = ?`), name)
	if err != nil {
		return fmt.Errorf("failed to delete preset %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete preset %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return nil
}

// Close closes the database connection.
func (s *sqlPresetStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying sql.DB for tests.
func (s *sqlPresetStore) DB() *sql.DB { return s.db }

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPreset(row rowScanner) (Preset, error) {
	var (
		p                    Preset
		interp, paramsJSON   string
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &interp, &paramsJSON, &createdAt, &updatedAt); err != nil {
		return Preset{}, err
	}
	p.Interpretation = interpretation.ID(interp)
	if err := json.Unmarshal([]byte(paramsJSON), &p.Params); err != nil {
		return Preset{}, fmt.Errorf("decode params: %w", err)
	}
	if p.Params == nil {
		p.Params = models.ParameterSet{}
	}
	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Preset{}, fmt.Errorf("decode created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return Preset{}, fmt.Errorf("decode updated_at: %w", err)
	}
	return p, nil
}

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if strings.TrimSpace(stmt) != "" {
			out = append(out, stmt)
		}
	}
	return out
}

var nowUTC = func() time.Time { return time.Now().UTC() }

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}
