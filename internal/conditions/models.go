// Package conditions infers trail conditions from weather series and serves
// scored sample grids for tile rendering.
package conditions

import (
	"github.com/trailcast/trailcast/internal/weather"
)

// Condition classifies the state of the trail surface.
type Condition string

const (
	ConditionDry   Condition = "dry"
	ConditionClear Condition = "clear"
	ConditionWet   Condition = "wet"
	ConditionMuddy Condition = "muddy"
	ConditionSnowy Condition = "snowy"
	ConditionIcy   Condition = "icy"
)

// Score returns the ordinal hazard score of the condition. The ordering is
// linear and evenly spaced; interpolation and color blending depend on that.
// Dry and clear share score 0.
func (c Condition) Score() int {
	switch c {
	case ConditionWet:
		return 1
	case ConditionMuddy:
		return 2
	case ConditionSnowy:
		return 3
	case ConditionIcy:
		return 4
	default:
		return 0
	}
}

// Badge maps the condition to the three-level UI badge.
func (c Condition) Badge() string {
	switch c {
	case ConditionWet, ConditionMuddy:
		return "yellow"
	case ConditionSnowy, ConditionIcy:
		return "red"
	default:
		return "green"
	}
}

// Hex returns the display color for the condition.
func (c Condition) Hex() string {
	switch c {
	case ConditionWet:
		return "#b08968"
	case ConditionMuddy:
		return "#7f5539"
	case ConditionSnowy:
		return "#4a90d9"
	case ConditionIcy:
		return "#c44536"
	default:
		return "#2d6a4f"
	}
}

// Inference is the result of running the moisture budget over one series.
type Inference struct {
	Condition Condition `json:"condition"`
	Reasons   []string  `json:"reasons"`

	TotalPrecipMM float64 `json:"total_precip_mm"`
	TotalSnowCM   float64 `json:"total_snow_cm"`
	TotalRainMM   float64 `json:"total_rain_mm"`
}

// ScoredPoint is one interpolation input: a sample coordinate with its
// condition score.
type ScoredPoint struct {
	Coord weather.Coord
	Score int
}
