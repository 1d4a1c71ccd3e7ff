package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	PatientsRegisteredTotal prometheus.Counter
	AppointmentsTotal       *prometheus.CounterVec
	DrugChecksTotal         *prometheus.CounterVec
	ChatRepliesTotal        prometheus.Counter
	AnalysesTotal           *prometheus.CounterVec
	LoginsTotal             *prometheus.CounterVec

	StoreOpDuration *prometheus.HistogramVec
	EventsTotal     *prometheus.CounterVec

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter
}

// NewCollector registers the service collectors with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewCollector(serviceName string, reg prometheus.Registerer) *Collector {
	ns := strings.NewReplacer("-", "_", ".", "_").Replace(serviceName)
	f := promauto.With(reg)

	return &Collector{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		PatientsRegisteredTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "portal",
			Name:      "patients_registered_total",
			Help:      "Total number of walk-in patient registrations.",
		}),

		AppointmentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "portal",
			Name:      "appointments_total",
			Help:      "Appointment state changes by resulting status.",
		}, []string{"status"}),

		DrugChecksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "portal",
			Name:      "drug_checks_total",
			Help:      "Drug interaction checks by overall risk level.",
		}, []string{"risk"}),

		ChatRepliesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "portal",
			Name:      "chat_replies_total",
			Help:      "Doctor replies delivered to conversations.",
		}),

		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "portal",
			Name:      "dermatology_analyses_total",
			Help:      "Dermatology analyses by outcome.",
		}, []string{"outcome"}),

		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),

		StoreOpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Record store operation latency distribution.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"operation"}),

		EventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events by type and publish outcome.",
		}, []string{"type", "outcome"}),

		AuditEntriesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

// Middleware records request counts and latency labelled by route template,
// so path parameters do not explode label cardinality.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		c.InFlightGauge.Inc()
		defer c.InFlightGauge.Dec()

		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())
		c.RequestsTotal.WithLabelValues(ctx.Request.Method, path, status).Inc()
		c.RequestDuration.WithLabelValues(ctx.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor serves the metrics gathered by g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
