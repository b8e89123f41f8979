package tiles

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/trailcast/trailcast/internal/conditions"
)

// Per-level overlay colors, straight (non-premultiplied) alpha, indexed by
// condition score: dry/clear green, wet tan, muddy brown, snowy blue,
// icy red.
var levelColors = [5]color.NRGBA{
	{R: 82, G: 183, B: 136, A: 90},
	{R: 176, G: 137, B: 104, A: 100},
	{R: 127, G: 85, B: 57, A: 110},
	{R: 74, G: 144, B: 217, A: 110},
	{R: 196, G: 69, B: 54, A: 120},
}

// RasterConfig holds configuration for the IDW rasterizer.
type RasterConfig struct {
	// Size is the output tile edge in pixels. Default: 256.
	Size int

	// Power is the IDW exponent; higher gives nearby samples more pull.
	// Default: 2.5.
	Power float64

	// BlurSigma is the Gaussian blur applied after scoring to hide the
	// interpolation grid. Default: 8.
	BlurSigma float64

	// KmPerDegLat/KmPerDegLon convert degree deltas to the flat-earth km
	// used for IDW distances. The longitude constant is a mid-latitude US
	// approximation kept for parity with the original tuning, not
	// cos(lat)-corrected. Defaults: 111 and 85.
	KmPerDegLat float64
	KmPerDegLon float64
}

// DefaultRasterConfig returns the production rasterizer settings.
func DefaultRasterConfig() RasterConfig {
	return RasterConfig{
		Size:        256,
		Power:       2.5,
		BlurSigma:   8,
		KmPerDegLat: 111,
		KmPerDegLon: 85,
	}
}

// Rasterizer paints condition scores onto tile images by inverse distance
// weighting over scattered sample points.
type Rasterizer struct {
	config RasterConfig
}

// NewRasterizer creates a Rasterizer, filling zero config fields with
// defaults.
func NewRasterizer(cfg RasterConfig) *Rasterizer {
	def := DefaultRasterConfig()
	if cfg.Size <= 0 {
		cfg.Size = def.Size
	}
	if cfg.Power <= 0 {
		cfg.Power = def.Power
	}
	if cfg.BlurSigma <= 0 {
		cfg.BlurSigma = def.BlurSigma
	}
	if cfg.KmPerDegLat <= 0 {
		cfg.KmPerDegLat = def.KmPerDegLat
	}
	if cfg.KmPerDegLon <= 0 {
		cfg.KmPerDegLon = def.KmPerDegLon
	}
	return &Rasterizer{config: cfg}
}

// Render rasterizes the scored points over the bounding box and applies the
// smoothing blur.
func (r *Rasterizer) Render(points []conditions.ScoredPoint, bbox BBox) *image.NRGBA {
	return imaging.Blur(r.Rasterize(points, bbox), r.config.BlurSigma)
}

// Rasterize computes the unblurred raster: every pixel gets the IDW-blended
// color of the sample scores. Row 0 is the northern edge. With no points
// (or none contributing weight) pixels fall back to score 0.
//
// This is O(pixels × points); with 9-25 samples on a 256² tile it is the
// dominant per-tile CPU cost, which is why results are cached upstream.
func (r *Rasterizer) Rasterize(points []conditions.ScoredPoint, bbox BBox) *image.NRGBA {
	size := r.config.Size
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	latRange := bbox.LatN - bbox.LatS
	lonRange := bbox.LonE - bbox.LonW
	halfPower := r.config.Power / 2

	for py := 0; py < size; py++ {
		lat := bbox.LatN - float64(py)/float64(size)*latRange
		for px := 0; px < size; px++ {
			lon := bbox.LonW + float64(px)/float64(size)*lonRange

			var totalW, weighted float64
			for _, pt := range points {
				dlat := (lat - pt.Coord.Lat) * r.config.KmPerDegLat
				dlon := (lon - pt.Coord.Lon) * r.config.KmPerDegLon
				distSq := dlat*dlat + dlon*dlon

				// Essentially coincident with a sample (<~100m): use its
				// exact score instead of letting the weight blow up.
				if distSq < 0.01 {
					weighted = float64(pt.Score)
					totalW = 1
					break
				}

				w := 1 / math.Pow(distSq, halfPower)
				totalW += w
				weighted += w * float64(pt.Score)
			}

			score := 0.0
			if totalW > 0 {
				score = weighted / totalW
			}
			img.SetNRGBA(px, py, lerpColor(score))
		}
	}
	return img
}

// lerpColor maps a continuous score to a color by piecewise-linear
// interpolation between the two adjacent level colors, alpha included.
func lerpColor(score float64) color.NRGBA {
	lo := int(score)
	if lo < 0 {
		lo = 0
	}
	if lo > 3 {
		lo = 3
	}
	hi := lo + 1
	t := score - float64(lo)

	a, b := levelColors[lo], levelColors[hi]
	return color.NRGBA{
		R: lerp8(a.R, b.R, t),
		G: lerp8(a.G, b.G, t),
		B: lerp8(a.B, b.B, t),
		A: lerp8(a.A, b.A, t),
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
