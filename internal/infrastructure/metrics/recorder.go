// Package metrics экспорт показателей конвейера в Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wrinkle-monitor/internal/domain/entity"
	"wrinkle-monitor/internal/domain/port"
)

const namespace = "wrinkle"

// Recorder держит собственный реестр, чтобы тесты не делили глобальный.
type Recorder struct {
	registry *prometheus.Registry

	defects     prometheus.Gauge
	wrinkle     prometheus.Gauge
	recording   prometheus.Gauge
	ticks       prometheus.Counter
	skipped     prometheus.Counter
	captures    prometheus.Counter
	persistFail *prometheus.CounterVec
}

// NewRecorder регистрирует все показатели. Рантайм Go добавляется по флагу.
func NewRecorder(withRuntime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		defects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "defect_count",
			Help:      "Number of defect areas in the last analysed frame",
		}),
		wrinkle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "percent",
			Help:      "Share of defect pixels inside the ROI, percent",
		}),
		recording: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recording_active",
			Help:      "1 while a recording session is open",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Total number of analysed frames",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_skipped_total",
			Help:      "Ticks skipped because the main camera had no frame",
		}),
		captures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captures_total",
			Help:      "Automatic secondary captures fired",
		}),
		persistFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed writes by kind",
		}, []string{"kind"}), // kind: log, capture, snapshot
	}

	r.registry.MustRegister(r.defects, r.wrinkle, r.recording, r.ticks, r.skipped, r.captures, r.persistFail)
	if withRuntime {
		r.registry.MustRegister(collectors.NewGoCollector())
		r.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return r
}

// Registry возвращает реестр.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler отдаёт /metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (r *Recorder) Observe(m entity.Metrics) {
	r.ticks.Inc()
	r.defects.Set(float64(m.DefectCount))
	r.wrinkle.Set(m.WrinklePercent)
}

func (r *Recorder) TickSkipped() {
	r.skipped.Inc()
}

func (r *Recorder) CaptureFired() {
	r.captures.Inc()
}

func (r *Recorder) PersistFailed(kind string) {
	r.persistFail.WithLabelValues(kind).Inc()
}

func (r *Recorder) SetRecording(active bool) {
	if active {
		r.recording.Set(1)
		return
	}
	r.recording.Set(0)
}

var _ port.MetricsRecorder = (*Recorder)(nil)
