package mcp

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func readAuditEntries(t *testing.T, dir string) []AuditEntry {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, auditFileName))
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	var entries []AuditEntry
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var e AuditEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("parse audit line %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestAuditLogger_NilSafety(t *testing.T) {
	var a *AuditLogger
	a.Log(AuditEntry{Tool: "selfsim_simulate"})
	if err := a.Close(); err != nil {
		t.Errorf("Close on nil = %v", err)
	}
}

func TestAuditLogger_WritesJSONL(t *testing.T) {
	dir := t.TempDir()
	a := NewAuditLogger(dir)
	if a == nil {
		t.Fatal("NewAuditLogger returned nil")
	}

	a.Log(AuditEntry{
		Timestamp:  time.Now(),
		Tool:       "selfsim_compare",
		DurationMs: 3,
		Status:     "success",
		Params:     map[string]string{"interpretation": "goal-goal"},
	})
	a.Log(AuditEntry{Tool: "selfsim_simulate", Status: "error", Error: "boom"})
	a.Close()

	entries := readAuditEntries(t, dir)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Tool != "selfsim_compare" || entries[0].Params["interpretation"] != "goal-goal" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestAuditLogger_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	a := NewAuditLogger(dir)
	defer a.Close()
	a.Log(AuditEntry{Tool: "x"})

	info, err := os.Stat(filepath.Join(dir, auditFileName))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}

func TestAuditLogger_ConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	a := NewAuditLogger(dir)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Log(AuditEntry{Tool: "selfsim_simulate", Status: "success"})
		}()
	}
	wg.Wait()
	a.Close()

	if got := len(readAuditEntries(t, dir)); got != 50 {
		t.Errorf("entries = %d, want 50", got)
	}
}

func TestAuditLogger_LogAfterClose(t *testing.T) {
	a := NewAuditLogger(t.TempDir())
	a.Close()
	a.Log(AuditEntry{Tool: "after_close"})
	if err := a.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestAuditLogger_BadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0600); err != nil {
		t.Fatal(err)
	}
	// A regular file where the directory should be.
	if a := NewAuditLogger(filepath.Join(file, "sub")); a != nil {
		t.Error("expected nil logger for unusable directory")
	}
}

func TestSummarizeToolParams(t *testing.T) {
	got := summarizeToolParams("goal-goal", "mine", map[string]float64{"goalShielding": 0.9, "healthActivation": 0.2})

	if got["interpretation"] != "goal-goal" || got["preset"] != "mine" {
		t.Errorf("names not logged: %v", got)
	}
	if got["overrides"] != "goalShielding,healthActivation" {
		t.Errorf("overrides = %q, want sorted names", got["overrides"])
	}
	if got["_param_count"] != "2" {
		t.Errorf("_param_count = %q, want 2", got["_param_count"])
	}
	for _, v := range got {
		if strings.Contains(v, "0.9") {
			t.Errorf("parameter values must not be logged: %v", got)
		}
	}

	empty := summarizeToolParams("", "", nil)
	if len(empty) != 1 || empty["_param_count"] != "0" {
		t.Errorf("empty summary = %v", empty)
	}
}

func TestAuditTool(t *testing.T) {
	dir := t.TempDir()
	s := &Server{auditLogger: NewAuditLogger(dir)}

	s.auditTool("selfsim_simulate", time.Now(), nil, nil)
	s.auditTool("selfsim_compare", time.Now(), errors.New("unknown interpretation"), nil)
	s.auditLogger.Close()

	entries := readAuditEntries(t, dir)
	if entries[0].Status != "success" || entries[1].Status != "error" {
		t.Errorf("statuses = %s, %s", entries[0].Status, entries[1].Status)
	}
	if entries[1].Error != "unknown interpretation" {
		t.Errorf("error = %q", entries[1].Error)
	}
}
