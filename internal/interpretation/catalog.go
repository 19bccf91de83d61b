package interpretation

// registry is the static catalog. Lookup and All hand out copies.
var registry = []Interpretation{
	{
		ID:       ExplicitImplicit,
		Name:     "Explicit vs. Implicit",
		Summary:  "Self-control is a contest between deliberate goals and automatic impulses.",
		Flagship: "goalAccessibility",
		Params: []Param{
			{Name: "goalStrength", Label: "Explicit goal strength", Group: "Explicit System", Min: 0, Max: 1, Step: 0.05, Default: 0.7},
			{Name: "goalAccessibility", Label: "Goal accessibility", Group: "Explicit System", Min: 0, Max: 1, Step: 0.05, Default: 0.6},
			{Name: "temptationStrength", Label: "Temptation strength", Group: "Implicit System", Min: 0, Max: 1, Step: 0.05, Default: 0.8},
			{Name: "impulseAssociation", Label: "Impulse association", Group: "Implicit System", Min: 0, Max: 1, Step: 0.05, Default: 0.7},
			{Name: "choiceCommitment", Label: "Choice commitment", Group: "Choice", Min: 0, Max: 1, Step: 0.05, Default: 0.5},
		},
	},
	{
		ID:       GoalGoal,
		Name:     "Goal vs. Goal",
		Summary:  "Self-control resolves a conflict between two valued goals, health and pleasure.",
		Flagship: "goalShielding",
		Params: []Param{
			{Name: "healthImportance", Label: "Health goal importance", Group: "Health Goal", Min: 1, Max: 10, Step: 1, Default: 7},
			{Name: "healthActivation", Label: "Health goal activation", Group: "Health Goal", Min: 0, Max: 1, Step: 0.05, Default: 0.6},
			{Name: "pleasureImportance", Label: "Pleasure goal importance", Group: "Pleasure Goal", Min: 1, Max: 10, Step: 1, Default: 6},
			{Name: "pleasureActivation", Label: "Pleasure goal activation", Group: "Pleasure Goal", Min: 0, Max: 1, Step: 0.05, Default: 0.8},
			{Name: "goalShielding", Label: "Goal shielding", Group: "Goal Dynamics", Min: 0, Max: 1, Step: 0.05, Default: 0.5},
			{Name: "postChoiceBoost", Label: "Post-choice boost", Group: "Goal Dynamics", Min: 0, Max: 2, Step: 0.1, Default: 1.0},
		},
	},
	{
		ID:       Utility,
		Name:     "Utility Maximization",
		Summary:  "Self-control is a comparison of immediate against discounted delayed utility.",
		Flagship: "dissonanceReduction",
		Params: []Param{
			{Name: "tasteValue", Label: "Taste value", Group: "Immediate Reward", Min: 0, Max: 10, Step: 0.5, Default: 8},
			{Name: "immediacyWeight", Label: "Immediacy weight", Group: "Immediate Reward", Min: 0, Max: 1, Step: 0.05, Default: 0.7},
			{Name: "healthValue", Label: "Health value", Group: "Delayed Reward", Min: 0, Max: 10, Step: 0.5, Default: 7},
			{Name: "discountRate", Label: "Discount rate", Group: "Delayed Reward", Min: 0, Max: 1, Step: 0.05, Default: 0.4},
			{Name: "dissonanceReduction", Label: "Dissonance reduction", Group: "Choice", Min: 0, Max: 1, Step: 0.05, Default: 0.5},
		},
	},
}
