package main

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/nvandessel/selfsim/internal/metrics"
)

func TestServeMetrics(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.Simulated("utility")

	addr, stop, err := serveMetrics("127.0.0.1:0", rec)
	if err != nil {
		t.Fatalf("serveMetrics: %v", err)
	}
	defer stop()

	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `selfsim_simulations_total{interpretation="utility"} 1`) {
		t.Errorf("metrics missing simulation counter:\n%s", body)
	}
}

func TestServeMetrics_BadAddr(t *testing.T) {
	if _, _, err := serveMetrics("not-an-address", metrics.NewRecorder()); err == nil {
		t.Error("expected listen error")
	}
}
