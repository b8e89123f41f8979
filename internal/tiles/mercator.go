// Package tiles renders and serves trail condition overlay tiles under the
// standard slippy-map Web Mercator tiling scheme.
package tiles

import (
	"math"
)

// BBox is a geographic bounding box in WGS84 degrees.
type BBox struct {
	LatS float64
	LatN float64
	LonW float64
	LonE float64
}

// TileBBox converts a (zoom, x, y) tile address to its bounding box using
// the inverse Web Mercator projection. It accepts any integers; zoom range
// enforcement is the tile service's job.
func TileBBox(zoom, x, y int) BBox {
	n := math.Exp2(float64(zoom))
	return BBox{
		LatS: tileLat(float64(y+1), n),
		LatN: tileLat(float64(y), n),
		LonW: float64(x)/n*360 - 180,
		LonE: float64(x+1)/n*360 - 180,
	}
}

// TileAt returns the tile address containing the coordinate at the given
// zoom, the forward companion of TileBBox.
func TileAt(lat, lon float64, zoom int) (x, y int) {
	n := math.Exp2(float64(zoom))
	latRad := lat * math.Pi / 180

	x = int(math.Floor((lon + 180) / 360 * n))
	y = int(math.Floor((1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2 * n))

	// Clamp edge coordinates (lat=±85.05..., lon=180) into the grid.
	max := int(n) - 1
	if x > max {
		x = max
	}
	if y > max {
		y = max
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

func tileLat(y, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
}
