package server

import (
	"net/http"
	"strconv"

	"github.com/kylerisse/cmangraph/pkg/cman"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the collectors exposed on /metrics.
type metrics struct {
	registry     *prometheus.Registry
	graphsBuilt  prometheus.Counter
	records      *prometheus.CounterVec
	requests     *prometheus.CounterVec
	graphsDrawn  prometheus.Counter
	drawFailures prometheus.Counter
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		registry: reg,
		graphsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cmangraph_graphs_built_total",
			Help: "Graph definitions produced.",
		}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cmangraph_records_total",
			Help: "Data source records seen, by statistic class.",
		}, []string{"stat"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cmangraph_requests_total",
			Help: "Graph API requests, by response code.",
		}, []string{"code"}),
		graphsDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cmangraph_graphs_drawn_total",
			Help: "PNG files written by rrdtool.",
		}),
		drawFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cmangraph_draw_failures_total",
			Help: "Graphs rrdtool failed to draw.",
		}),
	}
	reg.MustRegister(m.graphsBuilt, m.records, m.requests, m.graphsDrawn, m.drawFailures)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observeBuild(tally map[cman.Stat]int, graphs int) {
	for stat, n := range tally {
		m.records.WithLabelValues(stat.String()).Add(float64(n))
	}
	m.graphsBuilt.Add(float64(graphs))
}

func (m *metrics) observeRequest(code int) {
	m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
}
