package visualization

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"

	"github.com/nvandessel/selfsim/internal/interpretation"
	"github.com/nvandessel/selfsim/internal/models"
	"github.com/nvandessel/selfsim/internal/session"
	"github.com/nvandessel/selfsim/internal/simulation"
)

// Chart geometry in SVG user units.
const (
	chartWidth   = 560.0
	chartHeight  = 320.0
	chartTop     = 20.0
	chartLeft    = 40.0
	plotHeight   = 240.0
	barWidth     = 26.0
	barGap       = 6.0
	groupSpacing = 250.0
	tickStep     = 25.0
)

// Bar is one rectangle of the outcome chart.
type Bar struct {
	X, Y, Width, Height float64
	Value               float64
	Label               string
	Class               string // "sim-granola", "ref-granola", "sim-chocolate", "ref-chocolate"
}

// Tick is a horizontal grid line with its score label.
type Tick struct {
	Y     float64
	Value float64
}

// GroupLabel names one condition below its bars.
type GroupLabel struct {
	X     float64
	Label string
}

// Chart is the server-side layout of simulated versus human scores.
type Chart struct {
	Width, Height float64
	Baseline      float64
	Bars          []Bar
	Ticks         []Tick
	Groups        []GroupLabel
}

// BuildChart lays out four bars per condition: simulated and human granola,
// then simulated and human chocolate. Heights scale linearly from 0 to MaxScore.
func BuildChart(sim, ref models.OutcomePair) Chart {
	baseline := chartTop + plotHeight
	scale := func(v float64) float64 {
		v = math.Max(0, math.Min(v, simulation.MaxScore))
		return v / simulation.MaxScore * plotHeight
	}

	c := Chart{Width: chartWidth, Height: chartHeight, Baseline: baseline}
	for v := 0.0; v <= simulation.MaxScore; v += tickStep {
		c.Ticks = append(c.Ticks, Tick{Y: baseline - scale(v), Value: v})
	}

	for i, cond := range models.Conditions() {
		s, _ := sim.ByCondition(cond)
		r, _ := ref.ByCondition(cond)
		x := chartLeft + 20 + float64(i)*groupSpacing

		series := []struct {
			value float64
			label string
			class string
		}{
			{s.Granola, "Granola (simulated)", "sim-granola"},
			{r.Granola, "Granola (human)", "ref-granola"},
			{s.Chocolate, "Chocolate (simulated)", "sim-chocolate"},
			{r.Chocolate, "Chocolate (human)", "ref-chocolate"},
		}
		for j, sr := range series {
			h := scale(sr.value)
			c.Bars = append(c.Bars, Bar{
				X:      x + float64(j)*(barWidth+barGap),
				Y:      baseline - h,
				Width:  barWidth,
				Height: h,
				Value:  sr.value,
				Label:  sr.label,
				Class:  sr.class,
			})
		}
		c.Groups = append(c.Groups, GroupLabel{
			X:     x + 2*(barWidth+barGap) - barGap/2,
			Label: string(cond),
		})
	}
	return c
}

type slider struct {
	interpretation.Param
	Value float64
}

type sliderGroup struct {
	Name    string
	Sliders []slider
}

// pageData holds data passed to the HTML template.
type pageData struct {
	Interpretations []interpretation.Interpretation
	Selected        interpretation.Interpretation
	HasSelection    bool
	Groups          []sliderGroup
	Outcomes        []models.OutcomeRecord
	Reference       []models.OutcomeRecord
	Chart           *Chart
	ReportText      string
	Verdict         string
	Preset          string
	Error           string
}

// newPageData builds the page for a session. An unselected session yields
// the interpretation cards only.
func newPageData(s session.Session) pageData {
	data := pageData{
		Interpretations: interpretation.All(),
		Reference:       models.ReferenceDataset().Records(),
	}
	if !s.Selected() {
		return data
	}

	in, err := interpretation.Lookup(s.Interpretation())
	if err != nil {
		data.Error = err.Error()
		return data
	}
	data.Selected = in
	data.HasSelection = true

	params := s.Params()
	for _, g := range in.Groups() {
		group := sliderGroup{Name: g}
		for _, p := range in.ParamsInGroup(g) {
			group.Sliders = append(group.Sliders, slider{Param: p, Value: params[p.Name]})
		}
		data.Groups = append(data.Groups, group)
	}

	if out, ok := s.Outcomes(); ok {
		data.Outcomes = out.Records()
		chart := BuildChart(out, models.ReferenceDataset())
		data.Chart = &chart
	}
	if report, ok := s.Report(); ok {
		data.ReportText = report.Text()
		data.Verdict = string(report.Verdict)
	}
	return data
}

//go:embed templates/index.html.tmpl
var pageFS embed.FS

var pageTemplate = template.Must(template.New("index.html.tmpl").Funcs(template.FuncMap{
	"num": func(v float64) string { return fmt.Sprintf("%g", v) },
}).ParseFS(pageFS, "templates/index.html.tmpl"))

func renderPageData(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}
