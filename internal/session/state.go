// Package session models the user's working state as an immutable snapshot:
// the selected interpretation, its current parameters, and the latest
// outcomes and report. Every transition returns a new Session and leaves the
// receiver untouched, so snapshots can be shared without locking.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nvandessel/selfsim/internal/analysis"
	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/models"
	"github.com/nvandessel/selfsim/internal/simulation"
)

// Session is one snapshot of the working state.
// The zero value has no interpretation selected; use New to get an ID.
type Session struct {
	id             string
	interpretation interpretation.ID
	params         models.ParameterSet
	outcomes       *models.OutcomePair
	report         *analysis.Report
}

// New returns an empty session with a fresh ID.
func New() Session {
	return Session{id: uuid.NewString()}
}

// ID returns the session identifier.
func (s Session) ID() string { return s.id }

// Interpretation returns the selected interpretation, or "" when none is selected.
func (s Session) Interpretation() interpretation.ID { return s.interpretation }

// Selected reports whether an interpretation is selected.
func (s Session) Selected() bool { return s.interpretation != "" }

// Params returns a copy of the current parameters.
func (s Session) Params() models.ParameterSet { return s.params.Clone() }

// Outcomes returns the latest outcomes and whether a run has happened since
// the last selection, reset or parameter change.
func (s Session) Outcomes() (models.OutcomePair, bool) {
	if s.outcomes == nil {
		return models.OutcomePair{}, false
	}
	return *s.outcomes, true
}

// Report returns the latest report and whether one exists for the current outcomes.
func (s Session) Report() (analysis.Report, bool) {
	if s.report == nil {
		return analysis.Report{}, false
	}
	return *s.report, true
}

// Defaults returns the default parameters of the selected interpretation,
// or nil when none is selected.
func (s Session) Defaults() models.ParameterSet {
	in, err := interpretation.Lookup(s.interpretation)
	if err != nil {
		return nil
	}
	return in.Defaults()
}

// Select switches to id, discarding parameters, outcomes and report.
func (s Session) Select(id interpretation.ID) (Session, error) {
	in, err := interpretation.Lookup(id)
	if err != nil {
		return s, err
	}
	return Session{
		id:             s.id,
		interpretation: id,
		params:         in.Defaults(),
	}, nil
}

// Set replaces one parameter value. Outcomes and report become stale and are cleared.
func (s Session) Set(name string, value float64) (Session, error) {
	if !s.Selected() {
		return s, fmt.Errorf("set %s: no interpretation selected", name)
	}
	in, err := interpretation.Lookup(s.interpretation)
	if err != nil {
		return s, err
	}
	if err := in.CheckValue(name, value); err != nil {
		return s, err
	}
	return Session{
		id:             s.id,
		interpretation: s.interpretation,
		params:         s.params.With(name, value),
	}, nil
}

// WithParams replaces the whole parameter set after validating it.
func (s Session) WithParams(params models.ParameterSet) (Session, error) {
	if !s.Selected() {
		return s, fmt.Errorf("apply parameters: no interpretation selected")
	}
	in, err := interpretation.Lookup(s.interpretation)
	if err != nil {
		return s, err
	}
	if err := in.Validate(params); err != nil {
		return s, err
	}
	return Session{
		id:             s.id,
		interpretation: s.interpretation,
		params:         params.Clone(),
	}, nil
}

// Reset restores the selected interpretation's defaults.
// Without a selection it returns the session unchanged.
func (s Session) Reset() Session {
	if !s.Selected() {
		return s
	}
	next, err := s.Select(s.interpretation)
	if err != nil {
		return s
	}
	return next
}

// Run simulates the current parameters. Without a selection it is a no-op.
func (s Session) Run() Session {
	if !s.Selected() {
		return s
	}
	pair, err := simulation.Run(s.interpretation, s.params)
	if err != nil {
		return s
	}
	return Session{
		id:             s.id,
		interpretation: s.interpretation,
		params:         s.params,
		outcomes:       &pair,
	}
}

// Analyze compares the latest outcomes with the reference dataset.
// Without outcomes it is a no-op.
func (s Session) Analyze() Session {
	if s.outcomes == nil {
		return s
	}
	in, err := interpretation.Lookup(s.interpretation)
	if err != nil {
		return s
	}
	report := analysis.Compare(analysis.Input{
		Interpretation: in,
		Params:         s.params,
		Defaults:       in.Defaults(),
		Simulated:      *s.outcomes,
		Reference:      models.ReferenceDataset(),
	})
	next := s
	next.report = &report
	return next
}

// Simulate selects id, applies overrides on top of its defaults and runs the
// simulator. The result carries outcomes but no report.
func Simulate(id interpretation.ID, overrides models.ParameterSet) (Session, error) {
	in, err := interpretation.Lookup(id)
	if err != nil {
		return Session{}, err
	}
	s, err := New().Select(in.ID)
	if err != nil {
		return Session{}, err
	}
	s, err = s.WithParams(in.Complete(overrides))
	if err != nil {
		return Session{}, err
	}
	return s.Run(), nil
}

// Evaluate is Simulate followed by Analyze, for callers that asked for a
// comparison with the reference dataset.
func Evaluate(id interpretation.ID, overrides models.ParameterSet) (Session, error) {
	s, err := Simulate(id, overrides)
	if err != nil {
		return Session{}, err
	}
	return s.Analyze(), nil
}
