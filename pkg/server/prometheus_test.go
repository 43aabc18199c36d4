package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, s *Server) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	s.handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	body, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	return string(body)
}

func TestMetrics_CountBuilds(t *testing.T) {
	s := testServer(t)

	perf := cmanPerfdata + " cmgw001_uptime=5"
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		s.handleGraphs(w, httptest.NewRequest("GET", graphsURL("db01", "CMAN", perf), nil))
	}
	w := httptest.NewRecorder()
	s.handleGraphs(w, httptest.NewRequest("GET", graphsURL("", "CMAN", perf), nil))

	out := scrape(t, s)
	for _, want := range []string{
		"cmangraph_graphs_built_total 4",
		`cmangraph_records_total{stat="current"} 2`,
		`cmangraph_records_total{stat="established"} 2`,
		`cmangraph_records_total{stat="refused"} 2`,
		`cmangraph_records_total{stat="unrecognized"} 2`,
		`cmangraph_requests_total{code="200"} 2`,
		`cmangraph_requests_total{code="400"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected metrics to contain %q\n%s", want, out)
		}
	}
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a := testServer(t)
	b := testServer(t)

	w := httptest.NewRecorder()
	a.handleGraphs(w, httptest.NewRequest("GET", graphsURL("db01", "CMAN", cmanPerfdata), nil))

	if out := scrape(t, b); strings.Contains(out, "cmangraph_graphs_built_total 2") {
		t.Error("metrics leaked between servers")
	}
}
