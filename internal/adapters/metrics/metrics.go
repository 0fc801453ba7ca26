package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/teamboard/popcache/internal/domain"
)

// Recorder exposes cache subsystem counters on a Prometheus registry.
type Recorder struct {
	registry  *prometheus.Registry
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	refreshes *prometheus.CounterVec
	decays    prometheus.Counter
	pruned    prometheus.Counter
}

// NewRecorder creates a recorder with its own registry so tests and multiple
// runtimes never collide on the global default.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Recorder{
		registry: registry,
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "popcache",
			Name:      "listing_hits_total",
			Help:      "Category listing reads served from the cache store.",
		}, []string{"category"}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "popcache",
			Name:      "listing_misses_total",
			Help:      "Category listing reads that fell back to the durable store.",
		}, []string{"category"}),
		fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "popcache",
			Name:      "fallback_served_total",
			Help:      "Realtime reads served by a degraded tier.",
		}, []string{"tier"}),
		refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "popcache",
			Name:      "refresh_total",
			Help:      "Listing rebuild attempts by outcome.",
		}, []string{"category", "outcome"}),
		decays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "popcache",
			Name:      "decay_cycles_total",
			Help:      "Completed realtime score decay cycles.",
		}),
		pruned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "popcache",
			Name:      "decay_pruned_total",
			Help:      "Realtime score entries pruned at or below the floor.",
		}),
	}
}

func (r *Recorder) CacheHit(category domain.Category) {
	r.hits.WithLabelValues(category.String()).Inc()
}

func (r *Recorder) CacheMiss(category domain.Category) {
	r.misses.WithLabelValues(category.String()).Inc()
}

func (r *Recorder) FallbackServed(tier string) {
	r.fallbacks.WithLabelValues(tier).Inc()
}

func (r *Recorder) RefreshCompleted(category domain.Category, outcome string) {
	r.refreshes.WithLabelValues(category.String(), outcome).Inc()
}

func (r *Recorder) DecayCycle(pruned int64) {
	r.decays.Inc()
	r.pruned.Add(float64(pruned))
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
