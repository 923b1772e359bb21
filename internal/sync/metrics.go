package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "activitysync"

// metrics records sync activity. A nil *metrics is valid and records nothing.
type metrics struct {
	events          *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	hasNew          prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	factory := promauto.With(reg)
	return &metrics{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "events_total",
			Help:      "Push events seen by the syncer, by outcome.",
		}, []string{"outcome"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "refreshes_total",
			Help:      "Provider refreshes, by result.",
		}, []string{"result"}),
		refreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of a provider refresh.",
			Buckets:   prometheus.DefBuckets,
		}),
		hasNew: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "sync",
			Name:      "has_new",
			Help:      "1 while the latest notification is flagged new.",
		}),
	}
}

func (m *metrics) recordEvent(relevant bool) {
	if m == nil {
		return
	}
	outcome := "ignored"
	if relevant {
		outcome = "relevant"
	}
	m.events.WithLabelValues(outcome).Inc()
}

func (m *metrics) recordRefresh(seconds float64, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.refreshes.WithLabelValues(result).Inc()
	m.refreshDuration.Observe(seconds)
}

func (m *metrics) recordHasNew(hasNew bool) {
	if m == nil {
		return
	}
	if hasNew {
		m.hasNew.Set(1)
		return
	}
	m.hasNew.Set(0)
}

// PushCounters is implemented by the push listener.
type PushCounters interface {
	Received() uint64
	Dropped() uint64
}

// RegisterPushMetrics exposes the listener's frame counters on reg.
func RegisterPushMetrics(reg prometheus.Registerer, src PushCounters) error {
	received := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "push",
		Name:      "events_received_total",
		Help:      "Well-formed push events received.",
	}, func() float64 { return float64(src.Received()) })
	dropped := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "push",
		Name:      "events_dropped_total",
		Help:      "Malformed push payloads discarded.",
	}, func() float64 { return float64(src.Dropped()) })

	for _, c := range []prometheus.Collector{received, dropped} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
