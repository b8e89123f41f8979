package tiles

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/trailcast/trailcast/internal/cache"
	"github.com/trailcast/trailcast/internal/conditions"
	"github.com/trailcast/trailcast/internal/metrics"
)

// Renderable zoom range. Below it a tile spans too much terrain for
// per-tile weather to mean anything; above it tiles are visually redundant.
const (
	MinZoom = 4
	MaxZoom = 14
)

// TileTTL is how long rendered tiles stay cached; it doubles as the
// Cache-Control max-age. Weather doesn't change fast.
const TileTTL = 30 * time.Minute

// GridSource supplies scored sample points for a bounding box.
type GridSource interface {
	GridConditions(ctx context.Context, latS, latN, lonW, lonE float64, samples int) []conditions.ScoredPoint
}

// ServiceConfig holds configuration for the tile service.
type ServiceConfig struct {
	// Grid supplies scored sample points.
	Grid GridSource

	// Logger for service operations.
	Logger zerolog.Logger

	// Rasterizer paints the tiles. Nil uses defaults.
	Rasterizer *Rasterizer

	// TileTTL overrides the cache TTL. Default: TileTTL.
	TileTTL time.Duration

	// Cache overrides the tile cache, for tests.
	Cache *cache.TTLCache[[]byte]
}

// Service serves PNG condition tiles with a TTL cache and per-address
// single-flight deduplication.
type Service struct {
	grid       GridSource
	logger     zerolog.Logger
	rasterizer *Rasterizer
	ttl        time.Duration

	tiles  *cache.TTLCache[[]byte]
	flight singleflight.Group

	transparent []byte
}

// NewService creates a tile service.
func NewService(cfg ServiceConfig) (*Service, error) {
	rasterizer := cfg.Rasterizer
	if rasterizer == nil {
		rasterizer = NewRasterizer(DefaultRasterConfig())
	}

	ttl := cfg.TileTTL
	if ttl == 0 {
		ttl = TileTTL
	}

	tileCache := cfg.Cache
	if tileCache == nil {
		tileCache = cache.New[[]byte]()
	}

	transparent, err := encodePNG(image.NewNRGBA(image.Rect(0, 0, 256, 256)))
	if err != nil {
		return nil, fmt.Errorf("encoding transparent tile: %w", err)
	}

	return &Service{
		grid:        cfg.Grid,
		logger:      cfg.Logger,
		rasterizer:  rasterizer,
		ttl:         ttl,
		tiles:       tileCache,
		transparent: transparent,
	}, nil
}

// Tile returns the PNG bytes for the tile address. Zoom outside
// [MinZoom, MaxZoom] short-circuits to a fully transparent tile before any
// geometry or fetching happens. Concurrent misses for the same address
// share one render.
func (s *Service) Tile(ctx context.Context, zoom, x, y int) ([]byte, error) {
	if zoom < MinZoom || zoom > MaxZoom {
		metrics.TileRequestsTotal.WithLabelValues("out_of_zoom").Inc()
		return s.transparent, nil
	}

	key := fmt.Sprintf("%d/%d/%d", zoom, x, y)
	if data, ok := s.tiles.Get(key); ok {
		metrics.TileRequestsTotal.WithLabelValues("hit").Inc()
		return data, nil
	}
	metrics.TileRequestsTotal.WithLabelValues("miss").Inc()

	data, err, _ := s.flight.Do(key, func() (interface{}, error) {
		// Double-check under the flight: another waiter may have just
		// populated the cache.
		if cached, ok := s.tiles.Get(key); ok {
			return cached, nil
		}
		return s.render(ctx, key, zoom, x, y)
	})
	if err != nil {
		return nil, err
	}
	return data.([]byte), nil
}

func (s *Service) render(ctx context.Context, key string, zoom, x, y int) ([]byte, error) {
	start := time.Now()

	bbox := TileBBox(zoom, x, y)
	samples := sampleDensity(zoom)
	points := s.grid.GridConditions(ctx, bbox.LatS, bbox.LatN, bbox.LonW, bbox.LonE, samples)

	img := s.rasterizer.Render(points, bbox)
	data, err := encodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("encoding tile %s: %w", key, err)
	}

	s.tiles.Put(key, data, s.ttl)
	metrics.ObserveTileRender(time.Since(start))

	s.logger.Debug().
		Str("tile", key).
		Int("samples", samples*samples).
		Dur("render", time.Since(start)).
		Msg("tile rendered")
	return data, nil
}

// TransparentTile returns the cached fully transparent 256×256 PNG.
func (s *Service) TransparentTile() []byte {
	return s.transparent
}

// MaxAge returns the cache TTL in whole seconds, for Cache-Control headers.
func (s *Service) MaxAge() int {
	return int(s.ttl / time.Second)
}

// sampleDensity trades accuracy for upstream request volume: coarse grids
// on wide-area tiles, denser grids as the area shrinks.
func sampleDensity(zoom int) int {
	switch {
	case zoom <= 7:
		return 3
	case zoom <= 10:
		return 4
	default:
		return 5
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
