package state

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	fetchResultSuccess = "success"
	fetchResultError   = "error"
	fetchResultStale   = "stale"
)

type fetchMetrics struct {
	fetches      *prometheus.CounterVec
	stale        prometheus.Counter
	duration     prometheus.Histogram
	eventsLoaded prometheus.Gauge
	favorites    prometheus.Gauge
}

var (
	metricsInstance *fetchMetrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newFetchMetrics() *fetchMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &fetchMetrics{
			fetches: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "neoevents_event_fetches_total",
				Help: "Event fetches by result",
			}, []string{"result"}),
			stale: promauto.With(defaultRegistry).NewCounter(prometheus.CounterOpts{
				Name: "neoevents_event_fetch_stale_total",
				Help: "Fetch responses discarded because a newer fetch was already applied",
			}),
			duration: promauto.With(defaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "neoevents_event_fetch_duration_seconds",
				Help:    "Time taken by the event source to answer",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			}),
			eventsLoaded: promauto.With(defaultRegistry).NewGauge(prometheus.GaugeOpts{
				Name: "neoevents_events_loaded",
				Help: "Number of events in the current list",
			}),
			favorites: promauto.With(defaultRegistry).NewGauge(prometheus.GaugeOpts{
				Name: "neoevents_favorites",
				Help: "Number of favorited event ids",
			}),
		}
	})
	return metricsInstance
}

// resetMetricsForTesting swaps in a fresh registry and returns it.
func resetMetricsForTesting() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	defaultRegistry = reg
	metricsInstance = nil
	metricsOnce = sync.Once{}
	return reg
}
