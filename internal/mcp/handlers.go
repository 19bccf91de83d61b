package mcp

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/selfsim/internal/analysis"
	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/models"
	"github.com/nvandessel/selfsim/internal/ratelimit"
	"github.com/nvandessel/selfsim/internal/session"
)

const (
	referenceURI          = "selfsim://reference"
	interpretationURIBase = "selfsim://interpretations/"
)

// registerTools registers all selfsim MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "selfsim_interpretations",
		Description: "List the self-control interpretations with their parameters, ranges and defaults",
	}, s.handleSelfsimInterpretations)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "selfsim_simulate",
		Description: "Simulate granola and chocolate preference scores before and after the choice for one interpretation",
	}, s.handleSelfsimSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "selfsim_compare",
		Description: "Simulate and compare against the human reference data, returning the report and convergence verdict",
	}, s.handleSelfsimCompare)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "selfsim_presets",
		Description: "List saved parameter presets",
	}, s.handleSelfsimPresets)
}

// registerResources registers MCP resources.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         referenceURI,
		Name:        "selfsim-reference",
		Description: "Human preference scores from the original self-control experiment.",
		MIMEType:    "text/markdown",
	}, s.handleReferenceResource)

	s.server.AddResourceTemplate(&sdk.ResourceTemplate{
		URITemplate: interpretationURIBase + "{id}",
		Name:        "selfsim-interpretation",
		Description: "Parameters and defaults for one interpretation.",
		MIMEType:    "text/markdown",
	}, s.handleInterpretationResource)
}

// handleReferenceResource returns the reference dataset as a markdown table.
func (s *Server) handleReferenceResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	var sb strings.Builder
	sb.WriteString("# Human reference data\n\n")
	sb.WriteString("| Condition | Granola | Chocolate | Gap |\n")
	sb.WriteString("|-----------|---------|-----------|-----|\n")
	for _, rec := range models.ReferenceDataset().Records() {
		sb.WriteString(fmt.Sprintf("| %s | %g | %g | %+g |\n", rec.Condition, rec.Granola, rec.Chocolate, rec.Gap()))
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      referenceURI,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

// handleInterpretationResource describes one interpretation.
// URI format: selfsim://interpretations/{id}
func (s *Server) handleInterpretationResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	if !strings.HasPrefix(uri, interpretationURIBase) {
		return nil, fmt.Errorf("invalid URI format: %s", uri)
	}
	in, err := interpretation.Lookup(interpretation.ID(strings.TrimPrefix(uri, interpretationURIBase)))
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", in.Name))
	sb.WriteString(in.Summary)
	sb.WriteString("\n")
	for _, group := range in.Groups() {
		sb.WriteString(fmt.Sprintf("\n## %s\n\n", group))
		for _, p := range in.ParamsInGroup(group) {
			sb.WriteString(fmt.Sprintf("- **%s** (`%s`): default %g, range [%g, %g], step %g\n",
				p.Label, p.Name, p.Default, p.Min, p.Max, p.Step))
		}
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     sb.String(),
			},
		},
	}, nil
}

// handleSelfsimInterpretations implements the selfsim_interpretations tool.
func (s *Server) handleSelfsimInterpretations(ctx context.Context, req *sdk.CallToolRequest, args InterpretationsInput) (_ *sdk.CallToolResult, _ InterpretationsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("selfsim_interpretations", start, retErr, summarizeToolParams(args.ID, "", nil))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "selfsim_interpretations"); err != nil {
		return nil, InterpretationsOutput{}, err
	}

	all := interpretation.All()
	if args.ID != "" {
		in, err := interpretation.Lookup(interpretation.ID(args.ID))
		if err != nil {
			return nil, InterpretationsOutput{}, err
		}
		all = []interpretation.Interpretation{in}
	}

	out := InterpretationsOutput{Interpretations: make([]InterpretationInfo, 0, len(all))}
	for _, in := range all {
		out.Interpretations = append(out.Interpretations, interpretationInfo(in))
	}
	out.Count = len(out.Interpretations)
	return nil, out, nil
}

// handleSelfsimSimulate implements the selfsim_simulate tool.
func (s *Server) handleSelfsimSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (_ *sdk.CallToolResult, _ SimulateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("selfsim_simulate", start, retErr, summarizeToolParams(args.Interpretation, args.Preset, args.Params))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "selfsim_simulate"); err != nil {
		return nil, SimulateOutput{}, err
	}

	sess, err := s.evaluate(ctx, args, false)
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	out, _ := sess.Outcomes()
	s.metrics.Simulated(sess.Interpretation())
	s.runLogger.LogSimulation("mcp", sess.Interpretation(), sess.Params(), out)

	return nil, SimulateOutput{
		Interpretation: string(sess.Interpretation()),
		Params:         sess.Params(),
		Outcomes:       out.Records(),
	}, nil
}

// handleSelfsimCompare implements the selfsim_compare tool.
func (s *Server) handleSelfsimCompare(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (_ *sdk.CallToolResult, _ CompareOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("selfsim_compare", start, retErr, summarizeToolParams(args.Interpretation, args.Preset, args.Params))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "selfsim_compare"); err != nil {
		return nil, CompareOutput{}, err
	}

	sess, err := s.evaluate(ctx, args, true)
	if err != nil {
		return nil, CompareOutput{}, err
	}

	out, _ := sess.Outcomes()
	report, _ := sess.Report()
	s.metrics.Simulated(sess.Interpretation())
	s.metrics.Compared(report)
	s.runLogger.LogSimulation("mcp", sess.Interpretation(), sess.Params(), out)
	s.runLogger.LogComparison("mcp", report)

	return nil, CompareOutput{
		Interpretation: string(sess.Interpretation()),
		Params:         sess.Params(),
		Outcomes:       out.Records(),
		Reference:      models.ReferenceDataset().Records(),
		Changes:        changeInfos(report.Changes),
		Verdict:        string(report.Verdict),
		Report:         report.Text(),
	}, nil
}

// handleSelfsimPresets implements the selfsim_presets tool.
func (s *Server) handleSelfsimPresets(ctx context.Context, req *sdk.CallToolRequest, args PresetsInput) (_ *sdk.CallToolResult, _ PresetsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("selfsim_presets", start, retErr, summarizeToolParams(args.Interpretation, "", nil))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "selfsim_presets"); err != nil {
		return nil, PresetsOutput{}, err
	}

	presets, err := s.presets.ListPresets(ctx, interpretation.ID(args.Interpretation))
	if err != nil {
		return nil, PresetsOutput{}, fmt.Errorf("failed to list presets: %w", err)
	}

	out := PresetsOutput{Presets: make([]PresetInfo, 0, len(presets))}
	for _, p := range presets {
		out.Presets = append(out.Presets, PresetInfo{
			Name:           p.Name,
			Interpretation: string(p.Interpretation),
			Params:         p.Params,
			UpdatedAt:      p.UpdatedAt,
		})
	}
	out.Count = len(out.Presets)
	return nil, out, nil
}

// evaluate resolves the preset (if any), applies overrides and simulates.
// The outcomes are analyzed only when analyze is true.
func (s *Server) evaluate(ctx context.Context, args SimulateInput, analyze bool) (session.Session, error) {
	id := interpretation.ID(args.Interpretation)
	overrides := models.ParameterSet{}

	if args.Preset != "" {
		p, err := s.presets.GetPreset(ctx, args.Preset)
		if err != nil {
			return session.Session{}, err
		}
		if id != "" && id != p.Interpretation {
			return session.Session{}, fmt.Errorf("preset %q belongs to %s, not %s", p.Name, p.Interpretation, id)
		}
		id = p.Interpretation
		for name, v := range p.Params {
			overrides[name] = v
		}
	}
	if id == "" {
		return session.Session{}, fmt.Errorf("interpretation or preset is required")
	}

	for name, v := range args.Params {
		overrides[name] = v
	}
	if analyze {
		return session.Evaluate(id, overrides)
	}
	return session.Simulate(id, overrides)
}

func interpretationInfo(in interpretation.Interpretation) InterpretationInfo {
	info := InterpretationInfo{
		ID:       string(in.ID),
		Name:     in.Name,
		Summary:  in.Summary,
		Flagship: in.Flagship,
		Params:   make([]ParamInfo, 0, len(in.Params)),
	}
	for _, p := range in.Params {
		info.Params = append(info.Params, ParamInfo(p))
	}
	return info
}

func changeInfos(changes []analysis.ParameterChange) []ChangeInfo {
	out := make([]ChangeInfo, 0, len(changes))
	for _, c := range changes {
		info := ChangeInfo{
			Name:           c.Name,
			Label:          c.Label,
			Group:          c.Group,
			Default:        c.Default,
			Value:          c.Value,
			RelativeChange: c.RelativeChange,
		}
		if math.IsInf(c.RelativeChange, 0) {
			info.RelativeChange = 0
			info.ZeroDefault = true
		}
		out = append(out, info)
	}
	return out
}
