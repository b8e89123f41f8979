package conditions_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailcast/trailcast/internal/conditions"
	"github.com/trailcast/trailcast/internal/weather"
)

func f(v float64) *float64 { return &v }

// day builds a daily record with explicit rain/snow and shared temps/solar.
func day(rain, snow, tempMax, tempMin, solar float64) weather.DailyRecord {
	return weather.DailyRecord{
		Rain:     f(rain),
		Snowfall: f(snow),
		TempMax:  f(tempMax),
		TempMin:  f(tempMin),
		Solar:    f(solar),
	}
}

func seriesOf(days ...weather.DailyRecord) weather.Series {
	return weather.Series{Days: days}
}

func TestInfer_EmptySeries(t *testing.T) {
	inf := conditions.Infer(weather.Series{})
	assert.Equal(t, conditions.ConditionClear, inf.Condition)
	require.NotEmpty(t, inf.Reasons)
}

func TestInfer_Idempotent(t *testing.T) {
	s := seriesOf(
		day(5, 0, 15, 5, 12),
		day(0, 2, 2, -4, 6),
		day(10, 0, 18, 8, 20),
	)
	s.ElevationM = 2400
	s.Current.SnowDepthM = f(0.05)
	s.Current.Temperature = f(3)

	first := conditions.Infer(s)
	second := conditions.Infer(s)
	assert.Equal(t, first, second)
}

func TestInfer_RainMonotonicity(t *testing.T) {
	base := func(rainPerDay float64) weather.Series {
		days := make([]weather.DailyRecord, 7)
		for i := range days {
			days[i] = day(rainPerDay, 0, 12, 4, 10)
		}
		return seriesOf(days...)
	}

	prev := -1
	for _, rain := range []float64{0, 1, 3, 6, 12} {
		score := conditions.Infer(base(rain)).Condition.Score()
		assert.GreaterOrEqual(t, score, prev, "rain %vmm/day must not improve conditions", rain)
		prev = score
	}
}

func TestInfer_WarmerSunnierNeverWetter(t *testing.T) {
	build := func(tempMax, tempMin, solar float64) weather.Series {
		days := make([]weather.DailyRecord, 7)
		for i := range days {
			days[i] = day(4, 0, tempMax, tempMin, solar)
		}
		return seriesOf(days...)
	}

	cold := conditions.Infer(build(4, -2, 4))
	hot := conditions.Infer(build(32, 20, 28))

	assert.LessOrEqual(t, hot.Condition.Score(), cold.Condition.Score())
}

func TestInfer_SnowDepthOverride(t *testing.T) {
	// A week of hot dry weather, but the snow sensor reads 16 inches.
	days := make([]weather.DailyRecord, 7)
	for i := range days {
		days[i] = day(0, 0, 30, 18, 28)
	}
	s := seriesOf(days...)
	s.Current.SnowDepthM = f(0.41) // ~16"
	s.Current.Temperature = f(8)

	inf := conditions.Infer(s)
	assert.Equal(t, conditions.ConditionSnowy, inf.Condition)
}

func TestInfer_DeepSnowPackedNote(t *testing.T) {
	s := seriesOf(day(0, 0, -4, -10, 4))
	s.Current.SnowDepthM = f(0.5)
	s.Current.Temperature = f(-6)

	inf := conditions.Infer(s)
	assert.Equal(t, conditions.ConditionSnowy, inf.Condition)
	require.Len(t, inf.Reasons, 2)
	assert.Contains(t, inf.Reasons[1], "packed/icy")
}

func TestInfer_ModerateSnowDepth(t *testing.T) {
	s := seriesOf(day(0, 0, 2, -4, 6))
	s.Current.SnowDepthM = f(0.15) // ~6"

	s.Current.Temperature = f(-1)
	assert.Equal(t, conditions.ConditionIcy, conditions.Infer(s).Condition)

	s.Current.Temperature = f(4)
	assert.Equal(t, conditions.ConditionSnowy, conditions.Infer(s).Condition)
}

func TestInfer_HeavyRainYesterdayStaysMuddy(t *testing.T) {
	// 20mm yesterday, cold and overcast since: the moisture has nowhere to go.
	days := []weather.DailyRecord{
		day(0, 0, 7.5, 2.5, 5),
		day(0, 0, 7.5, 2.5, 5),
		day(0, 0, 7.5, 2.5, 5),
		day(0, 0, 7.5, 2.5, 5),
		day(0, 0, 7.5, 2.5, 5),
		day(0, 0, 7.5, 2.5, 5),
		day(20, 0, 7.5, 2.5, 5),
	}
	inf := conditions.Infer(seriesOf(days...))
	assert.Contains(t, []conditions.Condition{conditions.ConditionMuddy, conditions.ConditionWet}, inf.Condition)
}

func TestInfer_RainThenHotWeekDriesOut(t *testing.T) {
	// Same 20mm, but early, followed by hot sunny days.
	days := []weather.DailyRecord{
		day(20, 0, 34, 22, 28),
		day(0, 0, 34, 22, 28),
		day(0, 0, 34, 22, 28),
		day(0, 0, 34, 22, 28),
		day(0, 0, 34, 22, 28),
		day(0, 0, 34, 22, 28),
		day(0, 0, 34, 22, 28),
	}
	inf := conditions.Infer(seriesOf(days...))
	assert.Contains(t, []conditions.Condition{conditions.ConditionDry, conditions.ConditionClear}, inf.Condition)
}

func TestInfer_WeekOfSnowWithFreezingLowsIsIcy(t *testing.T) {
	days := make([]weather.DailyRecord, 7)
	for i := range days {
		days[i] = day(0, 10.0/7.0, 0, -5, 6)
	}
	s := seriesOf(days...)
	s.Current.Temperature = f(-3)
	// No snow depth sensor data.

	inf := conditions.Infer(s)
	assert.Equal(t, conditions.ConditionIcy, inf.Condition)
}

func TestInfer_SnowmeltFeedsMoisture(t *testing.T) {
	// A modest dump followed by a warm spell: the pack melts away, but the
	// meltwater keeps the ground from reading fully dry.
	days := []weather.DailyRecord{
		day(0, 0, 12, 4, 10),
		day(0, 0, 12, 4, 10),
		day(0, 0, 12, 4, 10),
		day(0, 0, 12, 4, 10),
		day(0, 7, -2, -8, 4),
		day(0, 0, 16, 6, 8),
		day(0, 0, 16, 6, 8),
	}
	inf := conditions.Infer(seriesOf(days...))
	assert.Equal(t, conditions.ConditionClear, inf.Condition)
}

func TestInfer_MissingFieldsUseNeutralDefaults(t *testing.T) {
	days := make([]weather.DailyRecord, 8)
	inf := conditions.Infer(seriesOf(days...))
	assert.Equal(t, conditions.ConditionDry, inf.Condition)
	assert.Zero(t, inf.TotalRainMM)
}

func TestInfer_ElevationSlowsDrying(t *testing.T) {
	build := func(elevM float64) weather.Series {
		days := []weather.DailyRecord{
			day(0, 0, 12, 4, 10),
			day(0, 0, 12, 4, 10),
			day(8, 0, 12, 4, 10),
			day(0, 0, 12, 4, 10),
			day(0, 0, 12, 4, 10),
			day(0, 0, 12, 4, 10),
			day(0, 0, 12, 4, 10),
		}
		s := seriesOf(days...)
		s.ElevationM = elevM
		return s
	}

	low := conditions.Infer(build(300))
	high := conditions.Infer(build(2600)) // ~8500ft

	assert.GreaterOrEqual(t, high.Condition.Score(), low.Condition.Score())
}

func TestInfer_HighElevationReason(t *testing.T) {
	s := seriesOf(day(0, 0, 20, 8, 20))
	s.ElevationM = 2000 // ~6560ft

	inf := conditions.Infer(s)
	found := false
	for _, r := range inf.Reasons {
		if strings.HasPrefix(r, "Elevation") {
			found = true
		}
	}
	assert.True(t, found, "expected an elevation reason, got %v", inf.Reasons)
}

func TestInfer_Totals(t *testing.T) {
	days := []weather.DailyRecord{
		{Rain: f(3.2), Snowfall: f(1.0), Precipitation: f(4.2)},
		{Rain: f(1.8), Snowfall: f(0), Precipitation: f(1.8)},
	}
	inf := conditions.Infer(seriesOf(days...))
	assert.Equal(t, 5.0, inf.TotalRainMM)
	assert.Equal(t, 1.0, inf.TotalSnowCM)
	assert.Equal(t, 6.0, inf.TotalPrecipMM)
}
