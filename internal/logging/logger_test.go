package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvandessel/selfsim/internal/analysis"
	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/models"
	"github.com/nvandessel/selfsim/internal/simulation"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase INFO", "INFO", slog.LevelInfo},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"uppercase TRACE", "TRACE", LevelTrace},
		{"mixed case Debug", "Debug", slog.LevelDebug},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"info level", "info"},
		{"debug level", "debug"},
		{"trace level", "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)
			if logger == nil {
				t.Fatal("NewLogger returned nil")
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtDebug bool
		logAtInfo  bool
	}{
		{"info filters debug", "info", false, true},
		{"debug passes debug", "debug", true, true},
		{"trace passes debug", "trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			hasDebug := strings.Contains(buf.String(), "debug message")
			if hasDebug != tt.logAtDebug {
				t.Errorf("debug message visible = %v, want %v (buf: %q)", hasDebug, tt.logAtDebug, buf.String())
			}

			buf.Reset()
			logger.Info("info message")
			hasInfo := strings.Contains(buf.String(), "info message")
			if hasInfo != tt.logAtInfo {
				t.Errorf("info message visible = %v, want %v (buf: %q)", hasInfo, tt.logAtInfo, buf.String())
			}
		})
	}
}

func TestLevelTrace(t *testing.T) {
	// Trace should be below debug (more verbose)
	if LevelTrace >= slog.LevelDebug {
		t.Errorf("LevelTrace (%d) should be less than LevelDebug (%d)", LevelTrace, slog.LevelDebug)
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(t.Context(), LevelTrace, "deep detail")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected TRACE label, got %q", buf.String())
	}
}

func readLines(t *testing.T, dir string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "runs.jsonl"))
	if err != nil {
		t.Fatalf("failed to read runs.jsonl: %v", err)
	}
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse JSONL entry %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNewRunLogger_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLogger(dir, "info")

	if rl != nil {
		t.Error("expected nil RunLogger at info level")
	}

	// Nil logger should still be safe to use
	rl.Log(map[string]any{"event": "test"})

	if _, err := os.Stat(filepath.Join(dir, "runs.jsonl")); err == nil {
		t.Error("runs.jsonl should not exist at info level")
	}
}

func TestNewRunLogger_DebugLevel(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLogger(dir, "debug")
	defer rl.Close()

	rl.Log(map[string]any{"event": "test_event", "score": 0.87})

	entries := readLines(t, dir)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["event"] != "test_event" {
		t.Errorf("event = %v, want test_event", entries[0]["event"])
	}
	if entries[0]["score"] != 0.87 {
		t.Errorf("score = %v, want 0.87", entries[0]["score"])
	}
	if _, ok := entries[0]["time"]; !ok {
		t.Error("expected 'time' field in run log entry")
	}
}

func TestRunLogger_LogSimulation(t *testing.T) {
	in, _ := interpretation.Lookup(interpretation.GoalGoal)
	params := in.Defaults()
	out := simulation.GoalGoal(params)

	tests := []struct {
		level      string
		wantParams bool
	}{
		{"debug", false},
		{"trace", true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			dir := t.TempDir()
			rl := NewRunLogger(dir, tt.level)
			rl.LogSimulation("cli", in.ID, params, out)
			rl.Close()

			entry := readLines(t, dir)[0]
			if entry["event"] != "simulate" || entry["interpretation"] != "goal-goal" || entry["source"] != "cli" {
				t.Errorf("unexpected entry %v", entry)
			}
			outcomes, ok := entry["outcomes"].([]any)
			if !ok || len(outcomes) != 2 {
				t.Errorf("outcomes = %v, want two records", entry["outcomes"])
			}
			if _, has := entry["params"]; has != tt.wantParams {
				t.Errorf("params present = %v, want %v", has, tt.wantParams)
			}
		})
	}
}

func TestRunLogger_LogComparison(t *testing.T) {
	in, _ := interpretation.Lookup(interpretation.GoalGoal)
	params := in.Defaults()
	report := analysis.Compare(analysis.Input{
		Interpretation: in,
		Params:         params,
		Defaults:       in.Defaults(),
		Simulated:      simulation.GoalGoal(params),
		Reference:      models.ReferenceDataset(),
	})

	dir := t.TempDir()
	rl := NewRunLogger(dir, "trace")
	rl.LogComparison("http", report)
	rl.Close()

	entry := readLines(t, dir)[0]
	if entry["event"] != "compare" {
		t.Errorf("event = %v, want compare", entry["event"])
	}
	if entry["verdict"] != string(analysis.VerdictSimulationStronger) {
		t.Errorf("verdict = %v, want %q", entry["verdict"], analysis.VerdictSimulationStronger)
	}
	if text, _ := entry["text"].(string); !strings.Contains(text, "## Convergence") {
		t.Errorf("trace entry should carry report text, got %q", text)
	}
}

func TestRunLogger_MultipleWrites(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLogger(dir, "debug")
	defer rl.Close()

	rl.Log(map[string]any{"event": "first"})
	rl.Log(map[string]any{"event": "second"})

	entries := readLines(t, dir)
	if len(entries) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(entries))
	}
	if entries[0]["event"] != "first" || entries[1]["event"] != "second" {
		t.Errorf("events out of order: %v", entries)
	}
}

func TestRunLogger_NilSafety(t *testing.T) {
	var rl *RunLogger
	rl.Log(map[string]any{"event": "should_not_panic"})
	rl.LogSimulation("cli", interpretation.Utility, nil, models.OutcomePair{})
	rl.LogComparison("cli", analysis.Report{})
	rl.Close()
}

func TestRunLogger_DoesNotMutateCallerMap(t *testing.T) {
	rl := NewRunLogger(t.TempDir(), "debug")
	defer rl.Close()

	event := map[string]any{"event": "test"}
	rl.Log(event)

	if _, hasTime := event["time"]; hasTime {
		t.Error("Log() should not mutate caller's map, but 'time' was injected")
	}
}

func TestRunLogger_LogAfterClose(t *testing.T) {
	rl := NewRunLogger(t.TempDir(), "debug")

	rl.Log(map[string]any{"event": "before_close"})
	rl.Close()

	// Should be a no-op, not panic or error
	rl.Log(map[string]any{"event": "after_close"})
	rl.Close()
}

func TestNewRunLogger_CreatesDir(t *testing.T) {
	nestedDir := filepath.Join(t.TempDir(), "sub", "dir")

	rl := NewRunLogger(nestedDir, "debug")
	if rl == nil {
		t.Fatal("expected non-nil RunLogger when dir needs creation")
	}
	defer rl.Close()

	rl.Log(map[string]any{"event": "dir_create_test"})

	if _, err := os.Stat(filepath.Join(nestedDir, "runs.jsonl")); err != nil {
		t.Fatalf("runs.jsonl should exist after dir creation: %v", err)
	}
}

func TestRunLogger_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	rl := NewRunLogger(dir, "debug")
	defer rl.Close()

	rl.Log(map[string]any{"event": "perm_test"})

	info, err := os.Stat(filepath.Join(dir, "runs.jsonl"))
	if err != nil {
		t.Fatalf("failed to stat runs.jsonl: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}
