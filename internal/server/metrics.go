package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/placement-cell/internal/eligibility"
	"github.com/jonathan/placement-cell/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "placement"

// Metrics holds the Prometheus collectors for the API, eligibility checks and
// status transitions. It implements eligibility.Recorder and transition.Observer.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	eligibilityChecks  *prometheus.CounterVec
	eligibilityReasons *prometheus.CounterVec

	companyTransitions     *prometheus.CounterVec
	applicationTransitions *prometheus.CounterVec
	placements             prometheus.Counter
}

// NewMetrics registers every collector on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		eligibilityChecks: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "eligibility",
			Name:      "checks_total",
			Help:      "Eligibility evaluations by outcome",
		}, []string{"outcome"}),
		eligibilityReasons: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "eligibility",
			Name:      "failed_rules_total",
			Help:      "Failed eligibility rules by rule",
		}, []string{"rule"}),
		companyTransitions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "transition",
			Name:      "company_total",
			Help:      "Applied company status transitions",
		}, []string{"from", "to"}),
		applicationTransitions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "transition",
			Name:      "application_total",
			Help:      "Applied application status transitions",
		}, []string{"from", "to"}),
		placements: auto.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "transition",
			Name:      "placements_total",
			Help:      "Students marked placed by a Selected application",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEligibility implements eligibility.Recorder.
func (m *Metrics) ObserveEligibility(result eligibility.Result) {
	outcome := "ineligible"
	if result.IsEligible {
		outcome = "eligible"
	}
	m.eligibilityChecks.WithLabelValues(outcome).Inc()
	for _, rule := range result.Failed {
		m.eligibilityReasons.WithLabelValues(string(rule)).Inc()
	}
}

// ObserveCompanyTransition implements transition.Observer.
func (m *Metrics) ObserveCompanyTransition(from, to types.CompanyStatus) {
	m.companyTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveApplicationTransition implements transition.Observer.
func (m *Metrics) ObserveApplicationTransition(from, to types.ApplicationStatus, placedStudent bool) {
	m.applicationTransitions.WithLabelValues(string(from), string(to)).Inc()
	if placedStudent {
		m.placements.Inc()
	}
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMetrics records request counts and latency. Routes are labelled with the
// matched ServeMux pattern so path IDs do not explode label cardinality.
func (m *Metrics) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
