package conditions

import (
	"fmt"
	"math"

	"github.com/trailcast/trailcast/internal/weather"
)

// Neutral fallbacks for daily fields the provider returned null for.
const (
	defaultAvgTempC = 10.0
	defaultET0MM    = 1.5
	defaultSolarMJ  = 10.0
	defaultWindKMH  = 10.0
)

// Moisture budget tuning.
const (
	meltThresholdC  = 2.0  // degree-day melt starts above this average temp
	meltRateCMPerC  = 0.5  // cm of snow melted per degree above threshold
	snowWaterEquiv  = 0.8  // mm of moisture per cm of melted snow
	highElevFt      = 8000 // drying slows hard above this
	midElevFt       = 6000 // drying slows moderately above this
	metersToFeet    = 3.281
	metersToInches  = 39.37
	muddyMoistureMM = 12.0
	wetMoistureMM   = 5.0
	clearMoistureMM = 2.0
	snowOnGroundCM  = 5.0 // simulated pack that still counts as snowy
	weekSnowfallCM  = 8.0 // cumulative snowfall that counts as snowy
)

// Infer runs the moisture budget simulation over a weather series and
// classifies the trail condition. It is a pure function of its input.
//
// Rather than summing 7-day precipitation (which cannot tell "rained hard a
// week ago, dry since" from "light rain yesterday, still soaked"), it walks
// the series day by day, accumulating rain and snowfall, melting snow with a
// degree-day model, and evaporating moisture at an ET0-based drying rate
// scaled by temperature, solar radiation, wind, and elevation.
func Infer(s weather.Series) Inference {
	if len(s.Days) == 0 {
		return Inference{
			Condition: ConditionClear,
			Reasons:   []string{"No recent weather data for this area"},
		}
	}

	var (
		moisture     float64 // mm of effective surface wetness
		snowOnGround float64 // cm
		totalRain    float64
		totalSnow    float64
		totalPrecip  float64
		dryingSum    float64

		lowSum   float64
		lowCount int
	)

	elevFt := s.ElevationM * metersToFeet

	for _, day := range s.Days {
		rain := orDefault(day.Rain, 0)
		snowfall := orDefault(day.Snowfall, 0)
		avgTemp := dayAvgTemp(day)

		totalRain += rain
		totalSnow += snowfall
		totalPrecip += orDefault(day.Precipitation, rain+snowfall)
		if day.TempMin != nil {
			lowSum += *day.TempMin
			lowCount++
		}

		moisture += rain
		snowOnGround += snowfall

		if avgTemp > meltThresholdC && snowOnGround > 0 {
			melt := math.Min(snowOnGround, (avgTemp-meltThresholdC)*meltRateCMPerC)
			snowOnGround -= melt
			moisture += melt * snowWaterEquiv
		}

		drying := orDefault(day.ET0, defaultET0MM) *
			tempFactor(avgTemp) *
			solarFactor(orDefault(day.Solar, defaultSolarMJ)) *
			windFactor(orDefault(day.WindMax, defaultWindKMH)) *
			elevationFactor(elevFt)
		dryingSum += drying

		moisture = math.Max(0, moisture-drying)
	}

	avgLow := 0.0
	if lowCount > 0 {
		avgLow = lowSum / float64(lowCount)
	}
	avgDrying := dryingSum / float64(len(s.Days))

	inf := classify(s, simState{
		moisture:     moisture,
		snowOnGround: snowOnGround,
		totalRain:    totalRain,
		totalSnow:    totalSnow,
		avgLow:       avgLow,
		avgDrying:    avgDrying,
		elevFt:       elevFt,
	})
	inf.TotalPrecipMM = round1(totalPrecip)
	inf.TotalSnowCM = round1(totalSnow)
	inf.TotalRainMM = round1(totalRain)

	if elevFt > 5000 {
		inf.Reasons = append(inf.Reasons, fmt.Sprintf("Elevation: %.0fft", elevFt))
	}
	if len(inf.Reasons) == 0 {
		inf.Reasons = append(inf.Reasons, "Conditions look good")
	}
	return inf
}

type simState struct {
	moisture     float64
	snowOnGround float64
	totalRain    float64
	totalSnow    float64
	avgLow       float64
	avgDrying    float64
	elevFt       float64
}

// classify turns the final simulation state into a condition. The live snow
// depth sensor is checked first: it is the most direct signal and overrides
// the modeled estimate.
func classify(s weather.Series, st simState) Inference {
	currentTemp := orDefault(s.Current.Temperature, defaultAvgTempC)

	if s.Current.SnowDepthM != nil {
		depthIn := *s.Current.SnowDepthM * metersToInches
		switch {
		case depthIn > 12:
			reasons := []string{fmt.Sprintf("%.0f\" snow depth on ground", depthIn)}
			if currentTemp < -2 {
				reasons = append(reasons, fmt.Sprintf("Currently %.0f°C — packed/icy snow likely", currentTemp))
			}
			return Inference{Condition: ConditionSnowy, Reasons: reasons}
		case depthIn > 3:
			if currentTemp < 0 {
				return Inference{
					Condition: ConditionIcy,
					Reasons:   []string{fmt.Sprintf("%.0f\" snow + freezing (%.0f°C)", depthIn, currentTemp)},
				}
			}
			return Inference{
				Condition: ConditionSnowy,
				Reasons:   []string{fmt.Sprintf("%.0f\" snow on ground", depthIn)},
			}
		}
	}

	if st.snowOnGround > snowOnGroundCM || st.totalSnow > weekSnowfallCM {
		if st.avgLow < 0 && st.snowOnGround > 0 {
			return Inference{
				Condition: ConditionIcy,
				Reasons: []string{fmt.Sprintf("%.1fcm snow with freezing temps (avg low %.0f°C)",
					st.totalSnow, st.avgLow)},
			}
		}
		return Inference{
			Condition: ConditionSnowy,
			Reasons: []string{fmt.Sprintf("%.1fcm snowfall in last 7 days, ~%.0fcm still on the ground",
				st.totalSnow, st.snowOnGround)},
		}
	}

	switch {
	case st.moisture > muddyMoistureMM:
		return Inference{
			Condition: ConditionMuddy,
			Reasons: []string{fmt.Sprintf("%.1fmm rain with slow drying (%.1fmm/day) — expect mud",
				st.totalRain, st.avgDrying)},
		}
	case st.moisture > wetMoistureMM:
		return Inference{
			Condition: ConditionWet,
			Reasons:   []string{fmt.Sprintf("%.1fmm rain in last 7 days, still drying out", st.totalRain)},
		}
	case st.moisture > clearMoistureMM:
		return Inference{Condition: ConditionClear, Reasons: nil}
	default:
		return Inference{
			Condition: ConditionDry,
			Reasons:   []string{"Minimal ground moisture — trails likely dry"},
		}
	}
}

// tempFactor scales drying by average temperature: warm days dry faster,
// cold days slow drying toward a 0.3 floor.
func tempFactor(avgTemp float64) float64 {
	if avgTemp > 10 {
		return 1 + (avgTemp-10)*0.08
	}
	return math.Max(0.3, 0.5+avgTemp*0.05)
}

// solarFactor scales drying by shortwave radiation, floored at 0.5 for deep
// overcast.
func solarFactor(solar float64) float64 {
	return math.Max(0.5, solar/15.0)
}

// windFactor adds 2% drying per km/h of wind above 10 km/h.
func windFactor(wind float64) float64 {
	return 1 + math.Max(0, wind-10)*0.02
}

// elevationFactor slows drying at altitude where trails stay shaded and cool.
func elevationFactor(elevFt float64) float64 {
	switch {
	case elevFt > highElevFt:
		return 0.6
	case elevFt > midElevFt:
		return 0.8
	default:
		return 1.0
	}
}

func dayAvgTemp(day weather.DailyRecord) float64 {
	if day.TempMax == nil && day.TempMin == nil {
		return defaultAvgTempC
	}
	if day.TempMax == nil {
		return *day.TempMin
	}
	if day.TempMin == nil {
		return *day.TempMax
	}
	return (*day.TempMax + *day.TempMin) / 2
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
