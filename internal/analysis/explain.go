package analysis

import (
	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/models"
)

// explanations holds the canned paragraph for each interpretation.
var explanations = map[interpretation.ID]string{
	interpretation.ExplicitImplicit: "In the explicit-implicit view, choosing granola is a win for the deliberate " +
		"system over automatic impulses. Before the choice the implicit pull toward chocolate dominates; " +
		"committing to the healthy option raises the explicitness of the goal, which lifts granola and " +
		"suppresses chocolate in the After Choice ratings.",
	interpretation.GoalGoal: "In the goal-goal view, the health and pleasure goals are both valued and compete " +
		"for control. The choice activates the health goal, and shielding protects it from the pleasure goal, " +
		"so the preference gap widens in favor of granola after choosing.",
	interpretation.Utility: "In the utility view, each option carries a utility: taste is immediate, health is " +
		"delayed and discounted. Before the choice the immediate utility of chocolate wins; after choosing, " +
		"dissonance reduction re-weights the chosen option upward.",
}

// flagshipNotes extends the explanation when the flagship parameter moved.
var flagshipNotes = map[interpretation.ID]string{
	interpretation.ExplicitImplicit: "Goal accessibility differs from its default. Accessibility scales how much of " +
		"the explicit goal reaches the decision, so it shifts both conditions rather than only the post-choice rating.",
	interpretation.GoalGoal: "Goal shielding differs from its default. Shielding only acts after the choice, so it " +
		"changes the After Choice gap while leaving the Before Choice ratings untouched.",
	interpretation.Utility: "Dissonance reduction differs from its default. It only moves the After Choice ratings, " +
		"which makes it the main lever for matching the human post-choice spread.",
}

// explain returns the paragraphs for in, adding the flagship note when the
// flagship parameter changed significantly.
func explain(in interpretation.Interpretation, params, defaults models.ParameterSet) []string {
	text, ok := explanations[in.ID]
	if !ok {
		return nil
	}
	paragraphs := []string{text}

	if in.Flagship == "" {
		return paragraphs
	}
	value, ok := params[in.Flagship]
	if !ok {
		return paragraphs
	}
	def, ok := defaults[in.Flagship]
	if !ok {
		return paragraphs
	}
	if IsSignificant(RelativeChange(value, def)) {
		paragraphs = append(paragraphs, flagshipNotes[in.ID])
	}
	return paragraphs
}
