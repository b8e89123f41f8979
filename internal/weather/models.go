// Package weather provides weather series models and the provider interface
// for the condition inference pipeline.
package weather

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Coord is a WGS84 latitude/longitude pair in degrees.
type Coord struct {
	Lat float64
	Lon float64
}

// Key returns the coordinate rounded to 2 decimal degrees (~1.1km), used as
// the point cache key. Intentionally coarse so nearby tiles share entries.
func (c Coord) Key() string {
	return fmt.Sprintf("%.2f,%.2f", c.Lat, c.Lon)
}

// Validate checks the coordinate is on the globe.
func (c Coord) Validate() error {
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// DailyRecord is one day of the historical/forecast series. Fields are
// pointers because the provider returns null for days or variables it has
// no data for; consumers substitute defaults.
type DailyRecord struct {
	Date string

	Rain          *float64 // mm
	Snowfall      *float64 // cm
	Precipitation *float64 // mm, rain + snow water equivalent
	TempMax       *float64 // °C
	TempMin       *float64 // °C
	Solar         *float64 // shortwave radiation sum, MJ/m²
	ET0           *float64 // reference evapotranspiration, mm
	WindMax       *float64 // km/h
}

// Current is the instantaneous reading attached to a series.
type Current struct {
	SnowDepthM  *float64 // meters; nil when the sensor has no data
	Temperature *float64 // °C
	WindSpeed   *float64 // km/h
	WeatherCode *int
}

// Series is the per-point weather input to condition inference: 8 daily
// records (7 past + today) plus the current reading and terrain elevation.
type Series struct {
	Coord      Coord
	ElevationM float64
	Days       []DailyRecord
	Current    Current
	FetchedAt  time.Time
}

// Provider fetches weather series from an external forecast API.
type Provider interface {
	// BatchForecast fetches one series per coordinate in a single upstream
	// request, returned in input order. A coordinate missing from a partial
	// upstream response yields an empty series, not an error.
	BatchForecast(ctx context.Context, coords []Coord) ([]Series, error)

	// Name identifies the provider for logging.
	Name() string
}
