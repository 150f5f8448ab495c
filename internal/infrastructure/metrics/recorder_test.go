package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wrinkle-monitor/internal/domain/entity"
)

func gather(t *testing.T, r *Recorder) map[string]float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)

	out := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			key := f.GetName()
			for _, l := range m.GetLabel() {
				key += "{" + l.GetName() + "=" + l.GetValue() + "}"
			}
			switch {
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			}
		}
	}
	return out
}

func TestRecorderObserve(t *testing.T) {
	r := NewRecorder(false)
	r.Observe(entity.Metrics{DefectCount: 7, WrinklePercent: 12.5, Timestamp: time.Now()})
	r.Observe(entity.Metrics{DefectCount: 3, WrinklePercent: 1.25, Timestamp: time.Now()})
	r.TickSkipped()
	r.CaptureFired()
	r.PersistFailed("capture")
	r.PersistFailed("capture")
	r.SetRecording(true)

	got := gather(t, r)
	require.Equal(t, 3.0, got["wrinkle_defect_count"])
	require.Equal(t, 1.25, got["wrinkle_percent"])
	require.Equal(t, 2.0, got["wrinkle_ticks_total"])
	require.Equal(t, 1.0, got["wrinkle_ticks_skipped_total"])
	require.Equal(t, 1.0, got["wrinkle_captures_total"])
	require.Equal(t, 2.0, got["wrinkle_persist_failures_total{kind=capture}"])
	require.Equal(t, 1.0, got["wrinkle_recording_active"])

	r.SetRecording(false)
	require.Equal(t, 0.0, gather(t, r)["wrinkle_recording_active"])
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder(false)
	r.CaptureFired()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "wrinkle_captures_total"))
}
