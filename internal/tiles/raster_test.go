package tiles_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailcast/trailcast/internal/conditions"
	"github.com/trailcast/trailcast/internal/tiles"
	"github.com/trailcast/trailcast/internal/weather"
)

var testBBox = tiles.BBox{LatS: 39.0, LatN: 40.0, LonW: -106.0, LonE: -105.0}

func point(lat, lon float64, score int) conditions.ScoredPoint {
	return conditions.ScoredPoint{Coord: weather.Coord{Lat: lat, Lon: lon}, Score: score}
}

func TestRasterize_SinglePointUniformColor(t *testing.T) {
	r := tiles.NewRasterizer(tiles.RasterConfig{Size: 64})

	img := r.Rasterize([]conditions.ScoredPoint{point(39.5, -105.5, 3)}, testBBox)

	// With a single sample every pixel's IDW average is exactly that
	// sample's score, so the whole raster is the snowy level color.
	want := img.NRGBAAt(32, 32)
	assert.Equal(t, color.NRGBA{R: 74, G: 144, B: 217, A: 110}, want)
	for _, px := range [][2]int{{0, 0}, {63, 0}, {0, 63}, {63, 63}, {10, 50}} {
		assert.Equal(t, want, img.NRGBAAt(px[0], px[1]), "pixel %v", px)
	}
}

func TestRasterize_CoincidentPixelUsesExactScore(t *testing.T) {
	r := tiles.NewRasterizer(tiles.RasterConfig{Size: 64})

	// One sample exactly at the NW pixel, one far away with a different
	// score. The coincident pixel must not be an average.
	points := []conditions.ScoredPoint{
		point(testBBox.LatN, testBBox.LonW, 4),
		point(39.1, -105.1, 0),
	}
	img := r.Rasterize(points, testBBox)

	assert.Equal(t, color.NRGBA{R: 196, G: 69, B: 54, A: 120}, img.NRGBAAt(0, 0))
}

func TestRasterize_NoPointsFallsBackToScoreZero(t *testing.T) {
	r := tiles.NewRasterizer(tiles.RasterConfig{Size: 16})

	img := r.Rasterize(nil, testBBox)
	assert.Equal(t, color.NRGBA{R: 82, G: 183, B: 136, A: 90}, img.NRGBAAt(8, 8))
}

func TestRasterize_BlendsTowardNearerPoint(t *testing.T) {
	r := tiles.NewRasterizer(tiles.RasterConfig{Size: 64})

	points := []conditions.ScoredPoint{
		point(39.5, -105.9, 0), // west, dry
		point(39.5, -105.1, 4), // east, icy
	}
	img := r.Rasterize(points, testBBox)

	west := img.NRGBAAt(8, 32)
	east := img.NRGBAAt(56, 32)

	// The dry level is greener, the icy level redder.
	assert.Greater(t, west.G, west.R)
	assert.Greater(t, east.R, east.G)
}

func TestRasterize_NorthIsRowZero(t *testing.T) {
	r := tiles.NewRasterizer(tiles.RasterConfig{Size: 64})

	points := []conditions.ScoredPoint{
		point(39.9, -105.5, 4), // near the north edge
		point(39.1, -105.5, 0), // near the south edge
	}
	img := r.Rasterize(points, testBBox)

	north := img.NRGBAAt(32, 4)
	south := img.NRGBAAt(32, 60)
	assert.Greater(t, north.R, north.G, "north row should lean icy")
	assert.Greater(t, south.G, south.R, "south row should lean dry")
}

func TestRender_AppliesBlurAndKeepsSize(t *testing.T) {
	r := tiles.NewRasterizer(tiles.RasterConfig{})

	img := r.Render([]conditions.ScoredPoint{point(39.5, -105.5, 2)}, testBBox)
	require.NotNil(t, img)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestNewRasterizer_Defaults(t *testing.T) {
	r := tiles.NewRasterizer(tiles.RasterConfig{})
	img := r.Rasterize(nil, testBBox)
	assert.Equal(t, 256, img.Bounds().Dx())
}
