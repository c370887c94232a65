package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	require.Failf(t, "metric family missing", "%s", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestDispatchMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDispatchMetrics(reg)
	m.ObserveCommand("cancel")
	m.ObserveCommand("cancel")
	m.ObserveRecommendation("dates")

	commands := gather(t, reg, "hvac_dispatch_commands_total")
	require.Len(t, commands.GetMetric(), 1)
	assert.Equal(t, "cancel", labelValue(commands.GetMetric()[0], "action"))
	assert.Equal(t, 2.0, commands.GetMetric()[0].GetCounter().GetValue())

	recs := gather(t, reg, "hvac_dispatch_recommendations_total")
	assert.Equal(t, "dates", labelValue(recs.GetMetric()[0], "kind"))
}

func TestBookingMailMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMailMetrics(reg)
	m.ObserveDelivery("user", "sent")
	m.ObserveSend("gmail", 250*time.Millisecond)

	deliveries := gather(t, reg, "hvac_bookingmail_deliveries_total")
	metric := deliveries.GetMetric()[0]
	assert.Equal(t, "user", labelValue(metric, "kind"))
	assert.Equal(t, "sent", labelValue(metric, "outcome"))
	assert.Equal(t, 1.0, metric.GetCounter().GetValue())

	latency := gather(t, reg, "hvac_bookingmail_send_seconds")
	hist := latency.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), hist.GetSampleCount())
	assert.InDelta(t, 0.25, hist.GetSampleSum(), 1e-9)
}

func TestMetricsNilSafe(t *testing.T) {
	var d *DispatchMetrics
	d.ObserveCommand("create")
	d.ObserveRecommendation("technicians")

	var b *BookingMailMetrics
	b.ObserveDelivery("admin", "failed")
	b.ObserveSend("ses", time.Second)
}
