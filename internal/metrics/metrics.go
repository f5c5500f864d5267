package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	reqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	reqInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "In-flight HTTP requests",
		},
	)

	reqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	cacheItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_cache_items",
			Help: "Approximate number of snapshots in cache",
		},
	)

	activeVisitors = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_visitors",
			Help: "Visitors inside the presence window",
		},
	)

	aggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregation_duration_seconds",
			Help:    "Time spent aggregating a snapshot on cache miss",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

func init() {
	Registry.MustRegister(reqTotal, reqInFlight, reqDuration, cacheItems, activeVisitors, aggregationDuration)
}

// StatsSource provides the shared-state gauges.
// Implemented by internal/service SnapshotService.
type StatsSource interface {
	CacheSize() int
	VisitorCount() int
}

// UpdateStats refreshes the cache and presence gauges
func UpdateStats(s StatsSource) {
	if s == nil {
		return
	}
	cacheItems.Set(float64(s.CacheSize()))
	activeVisitors.Set(float64(s.VisitorCount()))
}

// ObserveAggregation records one aggregation run
func ObserveAggregation(kind string, d time.Duration) {
	aggregationDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// Middleware instruments HTTP requests
func Middleware(next http.Handler, stats StatsSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqInFlight.Inc()
		defer reqInFlight.Dec()

		// Capture status code
		rw := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(rw, r)

		dur := time.Since(start).Seconds()
		reqDuration.WithLabelValues(r.Method, r.URL.Path).Observe(dur)
		reqTotal.WithLabelValues(r.Method, r.URL.Path, http.StatusText(rw.status)).Inc()

		// Update shared-state gauges opportunistically
		UpdateStats(stats)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Handler returns a promhttp handler for the Registry
func Handler() http.Handler { return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}) }
