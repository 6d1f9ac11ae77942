package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBooking(OutcomeCreated)
	m.ObserveBooking(OutcomeCreated)
	m.ObserveBooking(OutcomeConflict)
	m.ObserveClassifier(ClassifierFailure, 0.2)
	m.ObserveHTTP("POST", "/api/appointments", "201", 0.05)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues(OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues(OutcomeConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassifierTotal.WithLabelValues(ClassifierFailure)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ClassifierTotal.WithLabelValues(ClassifierSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/appointments", "201")))

	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBooking(OutcomeCreated)
		m.ObserveClassifier(ClassifierSuccess, 0.1)
		m.ObserveHTTP("GET", "/", "200", 0.01)
	})
}
