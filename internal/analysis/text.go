package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/nvandessel/selfsim/internal/constants"
)

// Verdict lines as they appear in the rendered report.
const (
	GoodConvergenceLine    = "Good convergence: simulated and human preference gaps after the choice are both below %g."
	SimulationStrongerLine = "Simulation stronger: the simulated post-choice gap exceeds the human gap by more than %g."
)

// Line returns the rendered sentence for v, or "" for VerdictNone.
func (v Verdict) Line() string {
	switch v {
	case VerdictGoodConvergence:
		return fmt.Sprintf(GoodConvergenceLine, constants.ConvergenceThreshold)
	case VerdictSimulationStronger:
		return fmt.Sprintf(SimulationStrongerLine, constants.ConvergenceThreshold)
	default:
		return ""
	}
}

// Text renders the report as markdown-style text.
func (r Report) Text() string {
	var b strings.Builder

	b.WriteString("## Parameter Changes\n\n")
	if len(r.Changes) == 0 {
		fmt.Fprintf(&b, "No parameters differ from their defaults by more than %g%%.\n", constants.SignificantChangeRatio*100)
	}
	for _, c := range r.Changes {
		fmt.Fprintf(&b, "- %s (%s): %g -> %g (%s)\n", c.Label, c.Group, c.Default, c.Value, formatChange(c))
	}

	b.WriteString("\n## Outcome Differences (simulated - human)\n\n")
	for _, d := range r.Differences {
		fmt.Fprintf(&b, "- %s: granola %s, chocolate %s\n", d.Condition, signed(d.Granola), signed(d.Chocolate))
	}

	b.WriteString("\n## Preference Gaps (granola - chocolate)\n\n")
	for _, g := range r.Gaps {
		fmt.Fprintf(&b, "- %s: human %s, simulated %s\n", g.Condition, signed(g.HumanGap), signed(g.SimulatedGap))
	}

	if len(r.Explanation) > 0 {
		b.WriteString("\n## Interpretation\n\n")
		b.WriteString(strings.Join(r.Explanation, "\n\n"))
		b.WriteString("\n")
	}

	if line := r.Verdict.Line(); line != "" {
		b.WriteString("\n## Convergence\n\n")
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func formatChange(c ParameterChange) string {
	if math.IsInf(c.RelativeChange, 1) {
		return "changed from zero"
	}
	pct := c.RelativeChange * 100
	if c.Value < c.Default {
		pct = -pct
	}
	return fmt.Sprintf("%+.0f%%", pct)
}

func signed(v float64) string {
	if v == 0 {
		return "0"
	}
	return fmt.Sprintf("%+g", v)
}
