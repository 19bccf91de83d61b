package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ExportPresets writes every preset as one JSON object per line.
// It returns the number of presets written.
func ExportPresets(ctx context.Context, s PresetStore, w io.Writer) (int, error) {
	presets, err := s.ListPresets(ctx, "")
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	for _, p := range presets {
		if err := enc.Encode(p); err != nil {
			return 0, fmt.Errorf("failed to encode preset %s: %w", p.Name, err)
		}
	}
	return len(presets), nil
}

// ImportPresets reads JSONL presets from r and saves each one, replacing
// presets with the same name. Blank lines are skipped; a malformed or
// invalid line aborts the import with its line number.
func ImportPresets(ctx context.Context, s PresetStore, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	imported := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p Preset
		if err := json.Unmarshal(line, &p); err != nil {
			return imported, fmt.Errorf("line %d: %w", lineNum, err)
		}
		if _, err := s.SavePreset(ctx, p); err != nil {
			return imported, fmt.Errorf("line %d: %w", lineNum, err)
		}
		imported++
	}

	if err := scanner.Err(); err != nil {
		return imported, fmt.Errorf("scanner error: %w", err)
	}
	return imported, nil
}
