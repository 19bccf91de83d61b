// Package mcp provides an MCP (Model Context Protocol) server for selfsim.
package mcp

import (
	"time"

	"github.com/nvandessel/selfsim/internal/models"
)

// InterpretationsInput defines the input for selfsim_interpretations tool.
type InterpretationsInput struct {
	ID string `json:"id,omitempty" jsonschema:"Return only this interpretation (explicit-implicit, goal-goal or utility)"`
}

// InterpretationsOutput defines the output for selfsim_interpretations tool.
type InterpretationsOutput struct {
	Interpretations []InterpretationInfo `json:"interpretations" jsonschema:"Registered interpretations in presentation order"`
	Count           int                  `json:"count" jsonschema:"Number of interpretations returned"`
}

// InterpretationInfo describes one interpretation and its parameters.
type InterpretationInfo struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Summary  string      `json:"summary"`
	Flagship string      `json:"flagship"`
	Params   []ParamInfo `json:"params"`
}

// ParamInfo describes one tunable parameter.
type ParamInfo struct {
	Name    string  `json:"name"`
	Label   string  `json:"label"`
	Group   string  `json:"group"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// SimulateInput defines the input for selfsim_simulate and selfsim_compare tools.
type SimulateInput struct {
	Interpretation string             `json:"interpretation,omitempty" jsonschema:"Interpretation id; required unless preset is given"`
	Params         map[string]float64 `json:"params,omitempty" jsonschema:"Parameter overrides by name; missing parameters use defaults"`
	Preset         string             `json:"preset,omitempty" jsonschema:"Name of a saved preset to start from"`
}

// SimulateOutput defines the output for selfsim_simulate tool.
type SimulateOutput struct {
	Interpretation string                 `json:"interpretation" jsonschema:"Interpretation that was simulated"`
	Params         map[string]float64     `json:"params" jsonschema:"Complete parameter set used"`
	Outcomes       []models.OutcomeRecord `json:"outcomes" jsonschema:"Before Choice and After Choice scores"`
}

// CompareOutput defines the output for selfsim_compare tool.
type CompareOutput struct {
	Interpretation string                 `json:"interpretation" jsonschema:"Interpretation that was simulated"`
	Params         map[string]float64     `json:"params" jsonschema:"Complete parameter set used"`
	Outcomes       []models.OutcomeRecord `json:"outcomes" jsonschema:"Before Choice and After Choice scores"`
	Reference      []models.OutcomeRecord `json:"reference" jsonschema:"Human reference scores"`
	Changes        []ChangeInfo           `json:"changes" jsonschema:"Parameters moved more than 10 percent from default"`
	Verdict        string                 `json:"verdict" jsonschema:"Convergence verdict or empty when none applies"`
	Report         string                 `json:"report" jsonschema:"Full report text in markdown"`
}

// ChangeInfo is one significant parameter change. RelativeChange is zero
// and ZeroDefault set when the default is zero.
type ChangeInfo struct {
	Name           string  `json:"name"`
	Label          string  `json:"label"`
	Group          string  `json:"group"`
	Default        float64 `json:"default"`
	Value          float64 `json:"value"`
	RelativeChange float64 `json:"relative_change"`
	ZeroDefault    bool    `json:"zero_default,omitempty"`
}

// PresetsInput defines the input for selfsim_presets tool.
type PresetsInput struct {
	Interpretation string `json:"interpretation,omitempty" jsonschema:"Only list presets for this interpretation"`
}

// PresetsOutput defines the output for selfsim_presets tool.
type PresetsOutput struct {
	Presets []PresetInfo `json:"presets" jsonschema:"Saved presets ordered by name"`
	Count   int          `json:"count" jsonschema:"Number of presets"`
}

// PresetInfo is one saved preset.
type PresetInfo struct {
	Name           string             `json:"name"`
	Interpretation string             `json:"interpretation"`
	Params         map[string]float64 `json:"params"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
