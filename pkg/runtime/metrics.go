package runtime

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics records per-frame statistics through client_golang, mirroring
// the teacher's monitoring.PrometheusMetrics (pkg/bubbly/monitoring/prometheus.go):
// same "register everything eagerly against a caller-supplied Registerer,
// panic on duplicate registration" shape, repointed at frame-cycle
// counters instead of composable/cache counters (spec.md §10.1).
type metrics struct {
	frames          prometheus.Counter
	frameDuration   prometheus.Histogram
	reconcileEvents prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fluxui_frames_total",
			Help: "Total number of frame-cycle iterations run.",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fluxui_frame_duration_seconds",
			Help:    "Wall-clock duration of each frame-cycle iteration.",
			Buckets: prometheus.DefBuckets,
		}),
		reconcileEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fluxui_reconcile_events_total",
			Help: "Total number of subscription events reconciled across all frames.",
		}),
	}
	reg.MustRegister(m.frames, m.frameDuration, m.reconcileEvents)
	return m
}

func (m *metrics) observeFrame(d time.Duration) {
	m.frames.Inc()
	m.frameDuration.Observe(d.Seconds())
}
