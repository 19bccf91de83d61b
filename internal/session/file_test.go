package session

import (
	"os"
	"testing"

	"github.com/nvandessel/selfsim/internal/interpretation"
)

func TestSaveLoadState(t *testing.T) {
	dir := t.TempDir()

	s, _ := New().Select(interpretation.Utility)
	s, _ = s.Set("discountRate", 0.8)
	s = s.Run().Analyze()

	if err := SaveState(s, dir); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	loaded, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if loaded.ID() != s.ID() {
		t.Errorf("ID = %q, want %q", loaded.ID(), s.ID())
	}
	if loaded.Interpretation() != interpretation.Utility {
		t.Errorf("Interpretation = %q", loaded.Interpretation())
	}
	if !loaded.Params().Equal(s.Params()) {
		t.Errorf("Params = %v, want %v", loaded.Params(), s.Params())
	}
	if _, ok := loaded.Outcomes(); ok {
		t.Error("outcomes should not be persisted")
	}
}

func TestLoadState_Missing(t *testing.T) {
	s, err := LoadState(t.TempDir())
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if s.Selected() || s.ID() == "" {
		t.Errorf("LoadState(missing) = %+v, want fresh empty session", s)
	}
}

func TestLoadState_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(StateFilePath(dir), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadState(dir); err == nil {
		t.Error("LoadState should fail on corrupt file")
	}
}

func TestLoadState_UnknownInterpretation(t *testing.T) {
	dir := t.TempDir()
	data := `{"id":"abc","interpretation":"willpower"}`
	if err := os.WriteFile(StateFilePath(dir), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadState(dir); err == nil {
		t.Error("LoadState should reject unknown interpretation")
	}
}

func TestLoadState_FillsMissingParams(t *testing.T) {
	dir := t.TempDir()
	data := `{"id":"abc","interpretation":"goal-goal","params":{"goalShielding":0.9}}`
	if err := os.WriteFile(StateFilePath(dir), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadState(dir)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	p := s.Params()
	if p["goalShielding"] != 0.9 || p["healthImportance"] != 7 {
		t.Errorf("Params = %v, want goalShielding 0.9 and default healthImportance", p)
	}
}

func TestRemoveState(t *testing.T) {
	dir := t.TempDir()
	if err := SaveState(New(), dir); err != nil {
		t.Fatal(err)
	}
	if err := RemoveState(dir); err != nil {
		t.Fatalf("RemoveState: %v", err)
	}
	if _, err := os.Stat(StateFilePath(dir)); !os.IsNotExist(err) {
		t.Error("state file still exists")
	}
	if err := RemoveState(dir); err != nil {
		t.Errorf("RemoveState on missing file = %v, want nil", err)
	}
}
