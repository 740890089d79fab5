package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rollclock/protocol"
)

// Metrics exports a Timer's report stream to Prometheus
type Metrics struct {
	Reports     prometheus.Counter
	FrameErrors prometheus.Counter
	DeviceTicks prometheus.Gauge
	DeviceRate  prometheus.Gauge
}

// NewMetrics registers the tick probe metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Reports: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tickprobe",
			Name:      "reports_total",
			Help:      "Tick reports decoded from the device.",
		}),
		FrameErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tickprobe",
			Name:      "frame_errors_total",
			Help:      "Corrupt tick report blocks dropped.",
		}),
		DeviceTicks: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tickprobe",
			Name:      "device_ticks",
			Help:      "Last tick value reported by the device.",
		}),
		DeviceRate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tickprobe",
			Name:      "device_ticks_per_second",
			Help:      "Tick rate reported by the device.",
		}),
	}
}

// Attach hooks m into t. Call before t.Run; it replaces any OnReport and
// OnFrameError already set, calling them afterwards.
func (m *Metrics) Attach(t *Timer) {
	onReport, onFrameError := t.OnReport, t.OnFrameError

	t.OnReport = func(r protocol.TickReport) {
		m.Reports.Inc()
		m.DeviceTicks.Set(float64(r.Ticks))
		m.DeviceRate.Set(float64(r.Rate))
		if onReport != nil {
			onReport(r)
		}
	}
	t.OnFrameError = func(err error) {
		m.FrameErrors.Inc()
		if onFrameError != nil {
			onFrameError(err)
		}
	}
}
