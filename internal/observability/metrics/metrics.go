package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics counts scheduling activity.
type DispatchMetrics struct {
	commandsTotal        *prometheus.CounterVec
	recommendationsTotal *prometheus.CounterVec
}

func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	m := &DispatchMetrics{
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hvac",
			Subsystem: "dispatch",
			Name:      "commands_total",
			Help:      "Interpreted scheduling commands by resolved action",
		}, []string{"action"}),
		recommendationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hvac",
			Subsystem: "dispatch",
			Name:      "recommendations_total",
			Help:      "Recommendation and analysis queries served",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.commandsTotal, m.recommendationsTotal)
	return m
}

func (m *DispatchMetrics) ObserveCommand(action string) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(action).Inc()
}

// ObserveRecommendation records one query; kind is technicians, dates or efficiency.
func (m *DispatchMetrics) ObserveRecommendation(kind string) {
	if m == nil {
		return
	}
	m.recommendationsTotal.WithLabelValues(kind).Inc()
}

// BookingMailMetrics exposes counters/histograms for the booking notifier.
type BookingMailMetrics struct {
	deliveriesTotal *prometheus.CounterVec
	sendLatency     *prometheus.HistogramVec
}

func NewBookingMailMetrics(reg prometheus.Registerer) *BookingMailMetrics {
	m := &BookingMailMetrics{
		deliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hvac",
			Subsystem: "bookingmail",
			Name:      "deliveries_total",
			Help:      "Booking deliveries by mail kind and outcome",
		}, []string{"kind", "outcome"}),
		sendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hvac",
			Subsystem: "bookingmail",
			Name:      "send_seconds",
			Help:      "Latency of mail provider sends",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.deliveriesTotal, m.sendLatency)
	return m
}

// ObserveDelivery records a processed delivery. outcome is sent, duplicate,
// unprocessable or failed.
func (m *BookingMailMetrics) ObserveDelivery(kind, outcome string) {
	if m == nil {
		return
	}
	m.deliveriesTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *BookingMailMetrics) ObserveSend(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.sendLatency.WithLabelValues(provider).Observe(d.Seconds())
}
