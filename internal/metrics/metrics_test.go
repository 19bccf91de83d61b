package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nvandessel/selfsim/internal/analysis"
	"github.com/nvandessel/selfsim/internal/interpretation"
)

func TestRecorder_Simulated(t *testing.T) {
	r := NewRecorder()
	r.Simulated(interpretation.GoalGoal)
	r.Simulated(interpretation.GoalGoal)
	r.Simulated(interpretation.Utility)

	if got := testutil.ToFloat64(r.simulations.WithLabelValues("goal-goal")); got != 2 {
		t.Errorf("goal-goal simulations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.simulations.WithLabelValues("utility")); got != 1 {
		t.Errorf("utility simulations = %v, want 1", got)
	}
}

func TestRecorder_Compared(t *testing.T) {
	r := NewRecorder()
	r.Compared(analysis.Report{Interpretation: interpretation.GoalGoal, Verdict: analysis.VerdictSimulationStronger})
	r.Compared(analysis.Report{Interpretation: interpretation.Utility})

	if got := testutil.ToFloat64(r.comparisons.WithLabelValues("goal-goal", "simulation stronger")); got != 1 {
		t.Errorf("simulation stronger = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.comparisons.WithLabelValues("utility", "none")); got != 1 {
		t.Errorf("no verdict = %v, want 1", got)
	}
}

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	r.Observe(ctx, "simulate", true, 2*time.Millisecond)
	r.Observe(ctx, "simulate", false, time.Millisecond)
	r.Observe(ctx, "", true, time.Millisecond)

	if got := testutil.ToFloat64(r.operations.WithLabelValues("simulate", "success")); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.operations.WithLabelValues("simulate", "error")); got != 1 {
		t.Errorf("error = %v, want 1", got)
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.Simulated(interpretation.ExplicitImplicit)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `selfsim_simulations_total{interpretation="explicit-implicit"} 1`) {
		t.Errorf("metrics output missing simulation counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("metrics output missing Go runtime collector")
	}
}

func TestRecorder_NilSafety(t *testing.T) {
	var r *Recorder
	r.Simulated(interpretation.Utility)
	r.Compared(analysis.Report{})
	r.Observe(context.Background(), "x", true, time.Second)
	if r.Registry() != nil {
		t.Error("nil recorder should have nil registry")
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil handler status = %d, want 404", rec.Code)
	}
}
