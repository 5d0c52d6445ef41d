// Package metrics holds the Prometheus collectors exported at /metrics.
//
// Every method is nil-safe so callers (and their tests) may run without a
// registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "courtside"

// Metrics owns a private registry and the application collectors.
type Metrics struct {
	registry           *prometheus.Registry
	invoiceTransitions *prometheus.CounterVec
	plansCreated       prometheus.Counter
	planRejections     *prometheus.CounterVec
	queryDuration      *prometheus.HistogramVec
	requestDuration    *prometheus.HistogramVec
}

// New creates and registers all collectors, plus the Go runtime and process collectors.
// POST: Returns a Metrics whose Handler serves every collector
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invoiceTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_transitions_total",
			Help:      "Successful invoice lifecycle events by event name.",
		}, []string{"event"}),
		plansCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_plans_created_total",
			Help:      "Session plans created.",
		}),
		planRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_rejections_total",
			Help:      "Session plan writes refused, by reason.",
		}, []string{"reason"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database call latency by operation.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "pattern", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.invoiceTransitions,
		m.plansCreated,
		m.planRejections,
		m.queryDuration,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// InvoiceTransition counts one successful invoice event (generate, submit, approve, ...).
func (m *Metrics) InvoiceTransition(event string) {
	if m == nil {
		return
	}
	m.invoiceTransitions.WithLabelValues(event).Inc()
}

// PlanCreated counts one created session plan.
func (m *Metrics) PlanCreated() {
	if m == nil {
		return
	}
	m.plansCreated.Inc()
}

// PlanRejected counts one refused plan write.
func (m *Metrics) PlanRejected(reason string) {
	if m == nil {
		return
	}
	m.planRejections.WithLabelValues(reason).Inc()
}

// ObserveQuery records the latency of one database call.
func (m *Metrics) ObserveQuery(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, pattern string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, pattern, strconv.Itoa(status)).Observe(d.Seconds())
}
