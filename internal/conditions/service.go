package conditions

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailcast/trailcast/internal/cache"
	"github.com/trailcast/trailcast/internal/metrics"
	"github.com/trailcast/trailcast/internal/weather"
)

// unavailableInference is substituted for every point an upstream failure
// left unscored. Tiles must always render something.
func unavailableInference() Inference {
	return Inference{
		Condition: ConditionClear,
		Reasons:   []string{"Weather data unavailable"},
	}
}

// ServiceConfig holds configuration for the condition service.
type ServiceConfig struct {
	// Provider is the upstream weather source.
	Provider weather.Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// PointTTL is how long per-point inferences stay cached. Default: 15
	// minutes — overlapping tiles' sample grids reuse recent points.
	PointTTL time.Duration

	// HistoryTTL is how long full history responses stay cached.
	// Default: 30 minutes.
	HistoryTTL time.Duration
}

// Service infers trail conditions with a point-level TTL cache in front of
// the batch weather provider.
type Service struct {
	provider   weather.Provider
	logger     zerolog.Logger
	pointTTL   time.Duration
	historyTTL time.Duration

	points  *cache.TTLCache[Inference]
	history *cache.TTLCache[History]
}

// History pairs a full weather series with its inference, for the history
// endpoint.
type History struct {
	Series    weather.Series
	Inference Inference
}

// NewService creates a condition service.
func NewService(cfg ServiceConfig) *Service {
	pointTTL := cfg.PointTTL
	if pointTTL == 0 {
		pointTTL = 15 * time.Minute
	}
	historyTTL := cfg.HistoryTTL
	if historyTTL == 0 {
		historyTTL = 30 * time.Minute
	}

	return &Service{
		provider:   cfg.Provider,
		logger:     cfg.Logger,
		pointTTL:   pointTTL,
		historyTTL: historyTTL,
		points:     cache.New[Inference](),
		history:    cache.New[History](cache.WithSweepThreshold[History](500)),
	}
}

// PointConditions infers a condition for every coordinate, in input order.
// Cached points (keyed by coordinate rounded to 2 decimal degrees) are
// served directly; the misses go upstream in a single batch request. On
// upstream failure the uncached points degrade to a clear/"data unavailable"
// inference rather than surfacing an error.
func (s *Service) PointConditions(ctx context.Context, coords []weather.Coord) []Inference {
	results := make([]Inference, len(coords))
	var missIdx []int

	for i, coord := range coords {
		if inf, ok := s.points.Get(coord.Key()); ok {
			metrics.PointCacheLookupsTotal.WithLabelValues("hit").Inc()
			results[i] = inf
			continue
		}
		metrics.PointCacheLookupsTotal.WithLabelValues("miss").Inc()
		missIdx = append(missIdx, i)
	}

	if len(missIdx) == 0 {
		return results
	}

	missCoords := make([]weather.Coord, len(missIdx))
	for j, i := range missIdx {
		missCoords[j] = coords[i]
	}

	series, err := s.provider.BatchForecast(ctx, missCoords)
	metrics.RecordUpstreamFetch(s.provider.Name(), err)
	if err != nil {
		s.logger.Warn().Err(err).
			Int("points", len(missCoords)).
			Msg("batch weather fetch failed, substituting defaults")
		for _, i := range missIdx {
			results[i] = unavailableInference()
		}
		return results
	}

	for j, i := range missIdx {
		inf := Infer(series[j])
		results[i] = inf
		s.points.Put(coords[i].Key(), inf, s.pointTTL)
	}
	return results
}

// GridConditions samples a samples×samples grid of cell centers across the
// bounding box and returns one scored point per sample. Cell-center
// sampling avoids edge bias between neighboring tiles.
func (s *Service) GridConditions(ctx context.Context, latS, latN, lonW, lonE float64, samples int) []ScoredPoint {
	coords := make([]weather.Coord, 0, samples*samples)
	for row := 0; row < samples; row++ {
		for col := 0; col < samples; col++ {
			lat := latS + (latN-latS)*(float64(row)+0.5)/float64(samples)
			lon := lonW + (lonE-lonW)*(float64(col)+0.5)/float64(samples)
			coords = append(coords, weather.Coord{Lat: round3(lat), Lon: round3(lon)})
		}
	}

	inferences := s.PointConditions(ctx, coords)

	points := make([]ScoredPoint, len(coords))
	for i, coord := range coords {
		points[i] = ScoredPoint{Coord: coord, Score: inferences[i].Condition.Score()}
	}
	return points
}

// History fetches the full 8-day series and inference for one coordinate,
// cached for the history TTL.
func (s *Service) History(ctx context.Context, coord weather.Coord) (History, error) {
	if err := coord.Validate(); err != nil {
		return History{}, err
	}

	key := "wxh:" + coord.Key()
	if h, ok := s.history.Get(key); ok {
		return h, nil
	}

	series, err := s.provider.BatchForecast(ctx, []weather.Coord{coord})
	metrics.RecordUpstreamFetch(s.provider.Name(), err)
	if err != nil {
		return History{}, err
	}
	if len(series) == 0 {
		return History{}, weather.ErrProviderUnavailable
	}

	h := History{Series: series[0], Inference: Infer(series[0])}
	s.history.Put(key, h, s.historyTTL)
	return h, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
