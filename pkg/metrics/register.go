package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics records per-register activity: committed checks, refunds,
// and request latency for the HTTP surface.
type RegisterMetrics struct {
	requestDuration *prometheus.HistogramVec
	checksCommitted *prometheus.CounterVec
	returnsResolved *prometheus.CounterVec
	shiftsClosed    prometheus.Counter
}

// NewRegisterMetrics registers the POS metrics on the provided registerer.
func NewRegisterMetrics(reg prometheus.Registerer) *RegisterMetrics {
	if reg == nil {
		return &RegisterMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of handled HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	checksCommitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checks_committed_total",
		Help: "Committed sale checks by payment type.",
	}, []string{"payment_type"})
	returnsResolved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "returns_resolved_total",
		Help: "Resolved return checks by refund payment type.",
	}, []string{"payment_type"})
	shiftsClosed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shifts_closed_total",
		Help: "Closed register shifts.",
	})
	reg.MustRegister(requestDuration, checksCommitted, returnsResolved, shiftsClosed)
	return &RegisterMetrics{
		requestDuration: requestDuration,
		checksCommitted: checksCommitted,
		returnsResolved: returnsResolved,
		shiftsClosed:    shiftsClosed,
	}
}

// ObserveRequest records the duration of a handled HTTP request.
func (m *RegisterMetrics) ObserveRequest(method, route, status string, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.WithLabelValues(normalizeLabel(method), normalizeLabel(route), normalizeLabel(status)).Observe(duration.Seconds())
}

// IncCheckCommitted increments the committed-check counter for the payment type.
func (m *RegisterMetrics) IncCheckCommitted(paymentType string) {
	if m == nil || m.checksCommitted == nil {
		return
	}
	m.checksCommitted.WithLabelValues(normalizeLabel(paymentType)).Inc()
}

// IncReturnResolved increments the resolved-return counter for the refund type.
func (m *RegisterMetrics) IncReturnResolved(paymentType string) {
	if m == nil || m.returnsResolved == nil {
		return
	}
	m.returnsResolved.WithLabelValues(normalizeLabel(paymentType)).Inc()
}

// IncShiftClosed increments the closed-shift counter.
func (m *RegisterMetrics) IncShiftClosed() {
	if m == nil || m.shiftsClosed == nil {
		return
	}
	m.shiftsClosed.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
