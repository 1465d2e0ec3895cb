package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	fetchDuration    *prom.HistogramVec
	sidebarLookups   *prom.CounterVec
	staleDiscards    *prom.CounterVec
	navigations      *prom.CounterVec
	documentOutcomes *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the docnav collectors on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docnav",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of JSON resource fetches including decode",
			Buckets:   prom.DefBuckets,
		}, []string{"kind", "result"}),
		sidebarLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docnav",
			Name:      "sidebar_lookups_total",
			Help:      "Sidebar cache ensure outcomes",
		}, []string{"result"}),
		staleDiscards: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docnav",
			Name:      "stale_results_discarded_total",
			Help:      "Asynchronous results dropped because a newer fetch superseded them",
		}, []string{"kind"}),
		navigations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docnav",
			Name:      "navigations_total",
			Help:      "Navigations by resolved route kind",
		}, []string{"route"}),
		documentOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docnav",
			Name:      "document_outcomes_total",
			Help:      "Settled document resources by final status",
		}, []string{"status"}),
	}
	reg.MustRegister(pr.fetchDuration, pr.sidebarLookups, pr.staleDiscards, pr.navigations, pr.documentOutcomes)
	return pr
}

func (p *PrometheusRecorder) ObserveFetchDuration(kind FetchKind, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.fetchDuration.WithLabelValues(string(kind), res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSidebarLookup(result LookupResult) {
	if p == nil {
		return
	}
	p.sidebarLookups.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncStaleDiscard(kind FetchKind) {
	if p == nil {
		return
	}
	p.staleDiscards.WithLabelValues(string(kind)).Inc()
}

func (p *PrometheusRecorder) IncNavigation(route string) {
	if p == nil {
		return
	}
	p.navigations.WithLabelValues(route).Inc()
}

func (p *PrometheusRecorder) IncDocumentOutcome(status string) {
	if p == nil {
		return
	}
	p.documentOutcomes.WithLabelValues(status).Inc()
}
