package metrics

import "github.com/prometheus/client_golang/prometheus"

// Booking outcomes.
const (
	OutcomeCreated    = "created"
	OutcomeConflict   = "conflict"
	OutcomeInvalid    = "invalid"
	OutcomeNoDoctor   = "no_doctor"
	OutcomeError      = "error"
	ClassifierSuccess = "success"
	ClassifierFailure = "fallback"
)

// Metrics exposes counters/histograms for the booking flow and HTTP surface.
type Metrics struct {
	BookingsTotal      *prometheus.CounterVec
	ClassifierTotal    *prometheus.CounterVec
	ClassifierLatency  prometheus.Histogram
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// New registers the collectors on reg, or on the default registerer when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "bookings",
			Name:      "total",
			Help:      "Appointment booking attempts by outcome",
		}, []string{"outcome"}),
		ClassifierTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "classifier",
			Name:      "requests_total",
			Help:      "Classifier calls by result (success or fallback)",
		}, []string{"result"}),
		ClassifierLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "classifier",
			Name:      "latency_seconds",
			Help:      "Latency of classifier calls including fallbacks",
			Buckets:   prometheus.DefBuckets,
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.BookingsTotal, m.ClassifierTotal, m.ClassifierLatency, m.HTTPRequestsTotal, m.HTTPRequestLatency)
	return m
}

func (m *Metrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveClassifier(result string, seconds float64) {
	if m == nil {
		return
	}
	m.ClassifierTotal.WithLabelValues(result).Inc()
	m.ClassifierLatency.Observe(seconds)
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestLatency.WithLabelValues(method, route).Observe(seconds)
}
