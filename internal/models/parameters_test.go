package models

import "testing"

func TestParameterSet_WithDoesNotMutate(t *testing.T) {
	orig := ParameterSet{"a": 1, "b": 2}
	next := orig.With("a", 5)

	if orig["a"] != 1 {
		t.Errorf("original mutated: a = %v, want 1", orig["a"])
	}
	if next["a"] != 5 {
		t.Errorf("next a = %v, want 5", next["a"])
	}
	if next["b"] != 2 {
		t.Errorf("next b = %v, want 2", next["b"])
	}
}

func TestParameterSet_CloneNil(t *testing.T) {
	var p ParameterSet
	if p.Clone() != nil {
		t.Error("Clone of nil set should be nil")
	}
	if got := p.With("x", 1); got["x"] != 1 {
		t.Errorf("With on nil set = %v, want x=1", got)
	}
}

func TestParameterSet_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b ParameterSet
		want bool
	}{
		{"both empty", ParameterSet{}, ParameterSet{}, true},
		{"same", ParameterSet{"a": 1}, ParameterSet{"a": 1}, true},
		{"different value", ParameterSet{"a": 1}, ParameterSet{"a": 2}, false},
		{"different key", ParameterSet{"a": 1}, ParameterSet{"b": 1}, false},
		{"different length", ParameterSet{"a": 1}, ParameterSet{"a": 1, "b": 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParameterSet_Names(t *testing.T) {
	p := ParameterSet{"zeta": 1, "alpha": 2, "mid": 3}
	got := p.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestReferenceDataset(t *testing.T) {
	ref := ReferenceDataset()
	if ref.Before().Condition != ConditionBefore || ref.After().Condition != ConditionAfter {
		t.Fatalf("reference order = %v, want [Before, After]", ref)
	}

	// Mutating the copy must not leak into later calls.
	ref[0].Granola = 0
	if ReferenceDataset().Before().Granola != 92 {
		t.Error("ReferenceDataset returned a shared value")
	}

	if gap := ReferenceDataset().After().Gap(); gap != 9 {
		t.Errorf("human After gap = %v, want 9", gap)
	}
}

func TestOutcomePair_ByCondition(t *testing.T) {
	ref := ReferenceDataset()
	rec, ok := ref.ByCondition(ConditionAfter)
	if !ok || rec.Granola != 108 {
		t.Errorf("ByCondition(After) = %+v, %v", rec, ok)
	}
	if _, ok := ref.ByCondition("During"); ok {
		t.Error("ByCondition should not find unknown condition")
	}
}
