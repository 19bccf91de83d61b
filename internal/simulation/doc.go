// Package simulation implements the closed-form simulators, one per
// interpretation. Each maps a parameter set to a Before/After pair of
// granola and chocolate preference scores.
//
// The coefficients are literal fits to the reference dataset and are kept
// exactly as written; they are not derived from a stated theory.
//
// Usage:
//
//	pair, err := simulation.Run(interpretation.GoalGoal, params)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(pair.After().Gap())
package simulation
