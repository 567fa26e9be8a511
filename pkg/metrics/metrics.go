package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mchmarny/bureau/pkg/finding"
)

const (
	namespace = "bureau"

	ResultSuccess = "success"
	ResultError   = "error"
)

// Recorder holds the pipeline metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	findings       *prometheus.CounterVec
	reports        *prometheus.CounterVec
	loads          *prometheus.CounterVec
	rows           prometheus.Gauge
	loadDuration   prometheus.Histogram
	reportDuration prometheus.Histogram
}

// New registers the pipeline collectors, plus the Go and process collectors
// when runtime is true.
func New(runtime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Findings emitted by severity.",
		}, []string{"severity"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Borrower reports computed by result.",
		}, []string{"result"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "loads_total",
			Help:      "Tradeline source loads by result.",
		}, []string{"result"}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "rows",
			Help:      "Tradeline rows held by the last successful load.",
		}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "load_duration_seconds",
			Help:      "Tradeline source load latency.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		reportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Borrower report latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	r.registry.MustRegister(r.findings, r.reports, r.loads, r.rows, r.loadDuration, r.reportDuration)
	if runtime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	for _, s := range finding.Severities() {
		r.findings.WithLabelValues(string(s))
	}

	return r
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveLoad records a source load attempt.
func (r *Recorder) ObserveLoad(_ string, rows int, d time.Duration, err error) {
	r.loadDuration.Observe(d.Seconds())
	if err != nil {
		r.loads.WithLabelValues(ResultError).Inc()
		return
	}
	r.loads.WithLabelValues(ResultSuccess).Inc()
	r.rows.Set(float64(rows))
}

// ObserveReport records one computed borrower report.
func (r *Recorder) ObserveReport(d time.Duration, list []finding.Finding, err error) {
	r.reportDuration.Observe(d.Seconds())
	if err != nil {
		r.reports.WithLabelValues(ResultError).Inc()
		return
	}
	r.reports.WithLabelValues(ResultSuccess).Inc()
	for s, n := range finding.CountBySeverity(list) {
		r.findings.WithLabelValues(string(s)).Add(float64(n))
	}
}
