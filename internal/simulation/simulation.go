package simulation

import (
	"fmt"
	"math"

	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/models"
)

// Score bounds shared by every interpretation.
const (
	MinScore = 50
	MaxScore = 150
)

// Simulator maps a complete, in-range parameter set to outcomes.
// Implementations are pure and assume well-formed input.
type Simulator func(models.ParameterSet) models.OutcomePair

var simulators = map[interpretation.ID]Simulator{
	interpretation.ExplicitImplicit: ExplicitImplicit,
	interpretation.GoalGoal:         GoalGoal,
	interpretation.Utility:          Utility,
}

// For returns the simulator registered for id.
func For(id interpretation.ID) (Simulator, error) {
	sim, ok := simulators[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", interpretation.ErrUnknownInterpretation, id)
	}
	return sim, nil
}

// Run dispatches to the simulator for id.
func Run(id interpretation.ID, params models.ParameterSet) (models.OutcomePair, error) {
	sim, err := For(id)
	if err != nil {
		return models.OutcomePair{}, err
	}
	return sim(params), nil
}

// ExplicitImplicit simulates the explicit-vs-implicit interpretation.
// The explicitness scalar is clamped to [0,1]; scores are not clamped.
func ExplicitImplicit(p models.ParameterSet) models.OutcomePair {
	explicitDrive := p["goalStrength"] * p["goalAccessibility"]
	implicitDrive := p["temptationStrength"] * p["impulseAssociation"]

	before := clamp(0.5+explicitDrive-implicitDrive, 0, 1)
	after := clamp(before+0.6*p["choiceCommitment"], 0, 1)

	record := func(c models.Condition, e float64) models.OutcomeRecord {
		return models.OutcomeRecord{
			Condition: c,
			Granola:   math.Round(75 + 35*e + 15*explicitDrive),
			Chocolate: math.Round(70 + 35*(1-e) + 20*implicitDrive),
		}
	}
	return models.OutcomePair{
		record(models.ConditionBefore, before),
		record(models.ConditionAfter, after),
	}
}

// GoalGoal simulates the goal-vs-goal interpretation.
// The goal difference is unbounded; final scores are clamped to [50,150].
func GoalGoal(p models.ParameterSet) models.OutcomePair {
	healthDrive := p["healthImportance"] * p["healthActivation"]
	pleasureDrive := p["pleasureImportance"] * p["pleasureActivation"]

	before := healthDrive - pleasureDrive
	after := before + p["goalShielding"]*p["postChoiceBoost"]*healthDrive

	record := func(c models.Condition, d float64) models.OutcomeRecord {
		return models.OutcomeRecord{
			Condition: c,
			Granola:   clamp(math.Round(100+6*d), MinScore, MaxScore),
			Chocolate: clamp(math.Round(105-8*d), MinScore, MaxScore),
		}
	}
	return models.OutcomePair{
		record(models.ConditionBefore, before),
		record(models.ConditionAfter, after),
	}
}

// Utility simulates the utility-maximization interpretation.
// The utility difference is rescaled into [0,1] and clamped there.
func Utility(p models.ParameterSet) models.OutcomePair {
	immediate := p["tasteValue"] * p["immediacyWeight"]
	delayed := p["healthValue"] * (1 - p["discountRate"])

	before := clamp(0.5+(delayed-immediate)/10, 0, 1)
	after := clamp(before+0.5*p["dissonanceReduction"], 0, 1)

	record := func(c models.Condition, s float64) models.OutcomeRecord {
		return models.OutcomeRecord{
			Condition: c,
			Granola:   math.Round(70 + 70*s),
			Chocolate: math.Round(128 - 45*s),
		}
	}
	return models.OutcomePair{
		record(models.ConditionBefore, before),
		record(models.ConditionAfter, after),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
