// Package metrics exposes Prometheus instrumentation for the tile and
// condition pipelines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TileRequestsTotal counts tile requests by outcome.
	TileRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailcast_tile_requests_total",
			Help: "Total condition tile requests",
		},
		[]string{"outcome"}, // hit, miss, out_of_zoom
	)

	// TileRenderDuration tracks how long a full tile render takes.
	TileRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trailcast_tile_render_duration_seconds",
			Help:    "Duration of tile fetch+render+encode on cache miss",
			Buckets: prometheus.DefBuckets,
		},
	)

	// PointCacheLookupsTotal counts point weather cache lookups.
	PointCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailcast_point_cache_lookups_total",
			Help: "Point weather cache lookups",
		},
		[]string{"outcome"}, // hit, miss
	)

	// UpstreamFetchesTotal counts batched weather provider calls.
	UpstreamFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trailcast_upstream_fetches_total",
			Help: "Batched upstream weather fetches",
		},
		[]string{"provider", "status"}, // ok, error
	)

	// AppStartTime records when the process started.
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trailcast_app_start_time_seconds",
			Help: "Unix timestamp of process start",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

// ObserveTileRender records one cache-miss render.
func ObserveTileRender(d time.Duration) {
	TileRenderDuration.Observe(d.Seconds())
}

// RecordUpstreamFetch records one batched provider call.
func RecordUpstreamFetch(provider string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	UpstreamFetchesTotal.WithLabelValues(provider, status).Inc()
}
