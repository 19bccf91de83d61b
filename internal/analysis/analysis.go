// Package analysis compares simulated outcomes against the human reference
// dataset and builds the textual report shown next to the charts.
package analysis

import (
	"encoding/json"
	"math"

	"github.com/nvandessel/selfsim/internal/constants"
	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/models"
)

// Verdict summarizes how well the simulated After gap matches the human one.
type Verdict string

const (
	VerdictNone               Verdict = ""
	VerdictGoodConvergence    Verdict = "good convergence"
	VerdictSimulationStronger Verdict = "simulation stronger"
)

// ParameterChange is a parameter whose value moved significantly from its default.
type ParameterChange struct {
	Name           string  `json:"name"`
	Label          string  `json:"label"`
	Group          string  `json:"group"`
	Default        float64 `json:"default"`
	Value          float64 `json:"value"`
	RelativeChange float64 `json:"relative_change"` // |value-default|/|default|, +Inf for a zero default
}

// MarshalJSON omits relative_change when the default is zero, since JSON
// cannot carry +Inf.
func (c ParameterChange) MarshalJSON() ([]byte, error) {
	type plain ParameterChange
	out := struct {
		plain
		RelativeChange *float64 `json:"relative_change,omitempty"`
	}{plain: plain(c)}
	if !math.IsInf(c.RelativeChange, 0) {
		rel := c.RelativeChange
		out.RelativeChange = &rel
	}
	return json.Marshal(out)
}

// ConditionDiff holds simulated minus human scores for one condition.
type ConditionDiff struct {
	Condition models.Condition `json:"condition"`
	Granola   float64          `json:"granola"`
	Chocolate float64          `json:"chocolate"`
}

// GapComparison holds human and simulated preference gaps for one condition.
type GapComparison struct {
	Condition    models.Condition `json:"condition"`
	HumanGap     float64          `json:"human_gap"`
	SimulatedGap float64          `json:"simulated_gap"`
}

// Report is the full comparison result. It is rebuilt from scratch on every call.
type Report struct {
	Interpretation interpretation.ID `json:"interpretation"`
	Changes        []ParameterChange `json:"changes"`
	Differences    []ConditionDiff   `json:"differences"`
	Gaps           []GapComparison   `json:"gaps"`
	Explanation    []string          `json:"explanation"`
	Verdict        Verdict           `json:"verdict,omitempty"`
}

// Input gathers everything the comparator needs.
type Input struct {
	Interpretation interpretation.Interpretation
	Params         models.ParameterSet
	Defaults       models.ParameterSet
	Simulated      models.OutcomePair
	Reference      models.OutcomePair
}

// Compare builds a Report from in. It is a pure function of its input.
func Compare(in Input) Report {
	r := Report{
		Interpretation: in.Interpretation.ID,
		Changes:        SignificantChanges(in.Interpretation, in.Params, in.Defaults),
	}

	for _, c := range models.Conditions() {
		sim, _ := in.Simulated.ByCondition(c)
		ref, _ := in.Reference.ByCondition(c)
		r.Differences = append(r.Differences, ConditionDiff{
			Condition: c,
			Granola:   sim.Granola - ref.Granola,
			Chocolate: sim.Chocolate - ref.Chocolate,
		})
		r.Gaps = append(r.Gaps, GapComparison{
			Condition:    c,
			HumanGap:     ref.Gap(),
			SimulatedGap: sim.Gap(),
		})
	}

	r.Explanation = explain(in.Interpretation, in.Params, in.Defaults)
	r.Verdict = Convergence(in.Simulated.After().Gap(), in.Reference.After().Gap())
	return r
}

// SignificantChanges lists parameters whose relative change from default is
// strictly greater than constants.SignificantChangeRatio, in registry order.
func SignificantChanges(in interpretation.Interpretation, params, defaults models.ParameterSet) []ParameterChange {
	var changes []ParameterChange
	for _, p := range in.Params {
		value, ok := params[p.Name]
		if !ok {
			continue
		}
		def, ok := defaults[p.Name]
		if !ok {
			def = p.Default
		}
		rel := RelativeChange(value, def)
		if !IsSignificant(rel) {
			continue
		}
		changes = append(changes, ParameterChange{
			Name:           p.Name,
			Label:          p.Label,
			Group:          p.Group,
			Default:        def,
			Value:          value,
			RelativeChange: rel,
		})
	}
	return changes
}

// RelativeChange returns |value-def|/|def|. A zero default yields 0 when the
// value is also zero and +Inf otherwise.
func RelativeChange(value, def float64) float64 {
	diff := math.Abs(value - def)
	if def == 0 {
		if diff == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return diff / math.Abs(def)
}

// IsSignificant reports whether rel strictly exceeds the significance ratio.
// The tolerance keeps an exact 10% change (which float arithmetic may
// represent as 0.10000000000000009) from being flagged.
func IsSignificant(rel float64) bool {
	return rel > constants.SignificantChangeRatio+constants.FloatTolerance
}

// Convergence derives the verdict from the After-condition gaps.
// Good convergence requires both gaps strictly inside the threshold; the
// simulation is stronger when its gap exceeds the human gap by more than it.
func Convergence(simulatedGap, humanGap float64) Verdict {
	threshold := constants.ConvergenceThreshold
	if math.Abs(simulatedGap) < threshold && math.Abs(humanGap) < threshold {
		return VerdictGoodConvergence
	}
	if simulatedGap-humanGap > threshold {
		return VerdictSimulationStronger
	}
	return VerdictNone
}
