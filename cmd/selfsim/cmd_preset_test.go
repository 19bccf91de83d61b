package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPresetFlow(t *testing.T) {
	root := isolateEnv(t)

	if _, err := runCmd(t, "preset", "save", "early", "--root", root); err == nil {
		t.Fatal("save without selection should fail")
	}

	mustRun(t, "session", "select", "goal-goal", "--root", root)
	mustRun(t, "session", "set", "goalShielding", "0.9", "--root", root)

	out := mustRun(t, "preset", "save", "shielded", "--root", root)
	if !strings.Contains(out, "Saved preset shielded (goal-goal)") {
		t.Errorf("save output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(root, ".selfsim", "presets.db")); err != nil {
		t.Fatalf("sqlite store not created: %v", err)
	}

	out = mustRun(t, "preset", "list", "--root", root)
	if !strings.Contains(out, "shielded") {
		t.Errorf("list output = %q", out)
	}
	out = mustRun(t, "preset", "list", "--interp", "utility", "--root", root)
	if !strings.Contains(out, "No presets saved.") {
		t.Errorf("filtered list output = %q", out)
	}

	// A simulate run can start from the preset.
	viaPreset := mustRun(t, "simulate", "--preset", "shielded", "--root", root, "--json")
	viaSet := mustRun(t, "simulate", "--interp", "goal-goal", "--set", "goalShielding=0.9", "--root", root, "--json")
	if viaPreset != viaSet {
		t.Errorf("preset run differs from explicit run:\n%s\n%s", viaPreset, viaSet)
	}
	if _, err := runCmd(t, "simulate", "--preset", "shielded", "--interp", "utility", "--root", root); err == nil {
		t.Error("expected error when preset and --interp disagree")
	}

	exportPath := filepath.Join(t.TempDir(), "presets.jsonl")
	out = mustRun(t, "preset", "export", exportPath, "--root", root)
	if !strings.Contains(out, "Exported 1 presets") {
		t.Errorf("export output = %q", out)
	}

	mustRun(t, "preset", "delete", "shielded", "--root", root)
	if _, err := runCmd(t, "preset", "delete", "shielded", "--root", root); err == nil {
		t.Error("deleting a missing preset should fail")
	}

	out = mustRun(t, "preset", "import", exportPath, "--root", root)
	if !strings.Contains(out, "Imported 1 presets") {
		t.Errorf("import output = %q", out)
	}

	mustRun(t, "session", "reset", "--root", root)
	mustRun(t, "session", "select", "utility", "--root", root)
	out = mustRun(t, "preset", "load", "shielded", "--root", root)
	if !strings.Contains(out, "goal-goal") || !strings.Contains(out, "(default 0.5)") {
		t.Errorf("load output = %q", out)
	}
}

func TestPresetExportStdout(t *testing.T) {
	root := isolateEnv(t)
	t.Setenv("SELFSIM_STORE_DRIVER", "memory")

	out := mustRun(t, "preset", "export", "-", "--root", root)
	if out != "" {
		t.Errorf("empty memory store exported %q", out)
	}
}

func TestPresetImport_BadFile(t *testing.T) {
	root := isolateEnv(t)
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := runCmd(t, "preset", "import", path, "--root", root)
	if err == nil || !strings.Contains(err.Error(), "line 1") {
		t.Errorf("error = %v, want line 1", err)
	}
}
