package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "smilecare"
	subsystem = "booking"
)

// Wizard label values.
const (
	WizardConsultation = "consultation"
	WizardAppointment  = "appointment"
)

// BookingMetrics exposes counters/histograms for the booking flows.
type BookingMetrics struct {
	recommendations *prometheus.CounterVec
	wizardOpens     *prometheus.CounterVec
	gateRejections  *prometheus.CounterVec
	submissions     *prometheus.CounterVec
	handoffLatency  *prometheus.HistogramVec
	activeSessions  prometheus.Gauge
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "recommendations_total",
			Help:      "Completed consultations by recommended urgency",
		}, []string{"urgency"}),
		wizardOpens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "wizard_opens_total",
			Help:      "Wizard opens by entry mode",
		}, []string{"wizard", "entry"}),
		gateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "gate_rejections_total",
			Help:      "Rejected Next/Complete/Confirm transitions by step",
		}, []string{"wizard", "step"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "submissions_total",
			Help:      "Confirmed bookings by payment method and hand-off status",
		}, []string{"payment", "status"}),
		handoffLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handoff_latency_seconds",
			Help:      "Latency of booking hand-off adapters",
			Buckets:   prometheus.DefBuckets,
		}, []string{"adapter"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_sessions",
			Help:      "Booking sessions currently held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.recommendations, m.wizardOpens, m.gateRejections, m.submissions, m.handoffLatency, m.activeSessions)
	return m
}

func (m *BookingMetrics) ObserveRecommendation(urgency string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(urgency).Inc()
}

func (m *BookingMetrics) ObserveWizardOpen(wizard, entry string) {
	if m == nil {
		return
	}
	m.wizardOpens.WithLabelValues(wizard, entry).Inc()
}

func (m *BookingMetrics) ObserveGateRejection(wizard string, step int) {
	if m == nil {
		return
	}
	m.gateRejections.WithLabelValues(wizard, stepLabel(step)).Inc()
}

func (m *BookingMetrics) ObserveSubmission(payment, status string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(payment, status).Inc()
}

func (m *BookingMetrics) ObserveHandoffLatency(adapter string, seconds float64) {
	if m == nil {
		return
	}
	m.handoffLatency.WithLabelValues(adapter).Observe(seconds)
}

func (m *BookingMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func stepLabel(step int) string {
	switch step {
	case 1:
		return "1"
	case 2:
		return "2"
	case 3:
		return "3"
	case 4:
		return "4"
	default:
		return "invalid"
	}
}
