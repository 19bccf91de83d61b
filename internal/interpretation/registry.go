// Package interpretation holds the static registry of self-control
// interpretations: their identifiers, default parameter sets and the
// ordered slider metadata for each parameter.
package interpretation

import (
	"errors"
	"fmt"

	"github.com/nvandessel/selfsim/internal/models"
)

// ID identifies an interpretation.
type ID string

const (
	ExplicitImplicit ID = "explicit-implicit" // Explicit goals versus implicit impulses
	GoalGoal         ID = "goal-goal"         // Two competing goals
	Utility          ID = "utility"           // Discounted utility comparison
)

var (
	// ErrUnknownInterpretation is returned when an id is not in the registry.
	ErrUnknownInterpretation = errors.New("unknown interpretation")

	// ErrUnknownParameter is returned when a parameter name does not belong to the interpretation.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrOutOfRange is returned when a value falls outside a parameter's [min,max].
	ErrOutOfRange = errors.New("parameter out of range")

	// ErrMissingParameter is returned when a parameter set lacks a required name.
	ErrMissingParameter = errors.New("missing parameter")
)

// Param describes one tunable parameter as presented on a slider.
type Param struct {
	Name    string  `json:"name" yaml:"name"`
	Label   string  `json:"label" yaml:"label"`
	Group   string  `json:"group" yaml:"group"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Step    float64 `json:"step" yaml:"step"`
	Default float64 `json:"default" yaml:"default"`
}

// InRange reports whether v lies within [Min, Max].
func (p Param) InRange(v float64) bool {
	return v >= p.Min && v <= p.Max
}

// Interpretation is the registry entry for one theory.
type Interpretation struct {
	ID       ID      `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Summary  string  `json:"summary" yaml:"summary"`
	Flagship string  `json:"flagship" yaml:"flagship"`
	Params   []Param `json:"params" yaml:"params"`
}

// Defaults returns a fresh ParameterSet holding every parameter's default.
func (in Interpretation) Defaults() models.ParameterSet {
	ps := make(models.ParameterSet, len(in.Params))
	for _, p := range in.Params {
		ps[p.Name] = p.Default
	}
	return ps
}

// Param returns the metadata for name.
func (in Interpretation) Param(name string) (Param, bool) {
	for _, p := range in.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Groups returns the distinct group labels in declaration order.
func (in Interpretation) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	for _, p := range in.Params {
		if !seen[p.Group] {
			seen[p.Group] = true
			groups = append(groups, p.Group)
		}
	}
	return groups
}

// ParamsInGroup returns the parameters of group in declaration order.
func (in Interpretation) ParamsInGroup(group string) []Param {
	var out []Param
	for _, p := range in.Params {
		if p.Group == group {
			out = append(out, p)
		}
	}
	return out
}

// CheckValue validates a single value for name.
func (in Interpretation) CheckValue(name string, v float64) error {
	p, ok := in.Param(name)
	if !ok {
		return fmt.Errorf("%w: %q for %s", ErrUnknownParameter, name, in.ID)
	}
	if !p.InRange(v) {
		return fmt.Errorf("%w: %s = %g, bounds [%g, %g]", ErrOutOfRange, name, v, p.Min, p.Max)
	}
	return nil
}

// Validate checks that ps holds exactly this interpretation's parameters and
// that every value is within bounds.
func (in Interpretation) Validate(ps models.ParameterSet) error {
	for _, p := range in.Params {
		v, ok := ps[p.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingParameter, p.Name)
		}
		if err := in.CheckValue(p.Name, v); err != nil {
			return err
		}
	}
	for name := range ps {
		if _, ok := in.Param(name); !ok {
			return fmt.Errorf("%w: %q for %s", ErrUnknownParameter, name, in.ID)
		}
	}
	return nil
}

// Complete returns ps with any missing parameters filled from defaults.
// Unknown names are kept so Validate can report them.
func (in Interpretation) Complete(ps models.ParameterSet) models.ParameterSet {
	out := in.Defaults()
	for k, v := range ps {
		out[k] = v
	}
	return out
}

func (in Interpretation) clone() Interpretation {
	in.Params = append([]Param(nil), in.Params...)
	return in
}

// Lookup returns the registry entry for id.
func Lookup(id ID) (Interpretation, error) {
	for _, in := range registry {
		if in.ID == id {
			return in.clone(), nil
		}
	}
	return Interpretation{}, fmt.Errorf("%w: %q", ErrUnknownInterpretation, id)
}

// All returns every interpretation in presentation order.
func All() []Interpretation {
	out := make([]Interpretation, len(registry))
	for i, in := range registry {
		out[i] = in.clone()
	}
	return out
}

// IDs returns the registered identifiers in presentation order.
func IDs() []ID {
	ids := make([]ID, len(registry))
	for i, in := range registry {
		ids[i] = in.ID
	}
	return ids
}
