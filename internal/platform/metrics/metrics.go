package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EnrollmentOperations *prometheus.CounterVec
	EnrollmentDuration   *prometheus.HistogramVec
	PersistenceConflicts *prometheus.CounterVec
	Compensations        *prometheus.CounterVec
	CourseChanges        *prometheus.CounterVec
	LoginAttempts        *prometheus.CounterVec
	AuditEventsDropped   prometheus.Counter
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EnrollmentOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_enrollment_operations_total",
			Help: "Register and drop operations by outcome code",
		}, []string{"operation", "outcome"}),
		EnrollmentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registrar_enrollment_duration_seconds",
			Help:    "Latency of enrollment operations including lock wait",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		PersistenceConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_persistence_conflicts_total",
			Help: "Optimistic version conflicts detected while saving aggregates",
		}, []string{"operation"}),
		Compensations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_compensations_total",
			Help: "Course write-backs after a failed student write, by result",
		}, []string{"result"}),
		CourseChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_course_changes_total",
			Help: "Course management operations by kind",
		}, []string{"kind"}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registrar_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		AuditEventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "registrar_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full",
		}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registrar_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) ObserveEnrollment(operation, outcome string, d time.Duration) {
	m.EnrollmentOperations.WithLabelValues(operation, outcome).Inc()
	m.EnrollmentDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) IncrementConflict(operation string) {
	m.PersistenceConflicts.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncrementCompensation(result string) {
	m.Compensations.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementCourseChange(kind string) {
	m.CourseChanges.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementLogin(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementAuditDropped() {
	m.AuditEventsDropped.Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
