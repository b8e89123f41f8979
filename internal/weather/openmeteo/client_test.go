package openmeteo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailcast/trailcast/internal/provider/resilience"
	"github.com/trailcast/trailcast/internal/weather"
	"github.com/trailcast/trailcast/internal/weather/openmeteo"
)

const batchPayload = `[
  {
    "latitude": 39.55, "longitude": -105.78, "elevation": 3100.0,
    "daily": {
      "time": ["2026-08-24","2026-08-25"],
      "rain_sum": [4.2, null],
      "snowfall_sum": [0, 1.5],
      "precipitation_sum": [4.2, 1.5],
      "temperature_2m_max": [18.0, 6.0],
      "temperature_2m_min": [4.0, -2.0],
      "shortwave_radiation_sum": [22.1, 8.4],
      "et0_fao_evapotranspiration": [3.4, 1.1],
      "wind_speed_10m_max": [14.0, 31.0]
    },
    "current": {"snow_depth": 0.08, "temperature_2m": 2.5, "wind_speed_10m": 12.0, "weather_code": 71}
  },
  {
    "latitude": 39.60, "longitude": -105.70, "elevation": 2700.0,
    "daily": {
      "time": ["2026-08-24","2026-08-25"],
      "rain_sum": [0, 0],
      "snowfall_sum": [0, 0],
      "precipitation_sum": [0, 0],
      "temperature_2m_max": [20.0, 21.0],
      "temperature_2m_min": [8.0, 9.0],
      "shortwave_radiation_sum": [25.0, 26.0],
      "et0_fao_evapotranspiration": [4.0, 4.2],
      "wind_speed_10m_max": [10.0, 9.0]
    },
    "current": {"snow_depth": null, "temperature_2m": 15.0, "wind_speed_10m": 6.0, "weather_code": 0}
  }
]`

func TestClient_BatchForecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "39.550,39.600", q.Get("latitude"))
		assert.Equal(t, "-105.780,-105.700", q.Get("longitude"))
		assert.Contains(t, q.Get("daily"), "et0_fao_evapotranspiration")
		assert.Contains(t, q.Get("current"), "snow_depth")
		assert.Equal(t, "7", q.Get("past_days"))
		assert.Equal(t, "1", q.Get("forecast_days"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(batchPayload))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})

	coords := []weather.Coord{
		{Lat: 39.55, Lon: -105.78},
		{Lat: 39.60, Lon: -105.70},
	}

	series, err := client.BatchForecast(context.Background(), coords)
	require.NoError(t, err)
	require.Len(t, series, 2)

	first := series[0]
	assert.Equal(t, 3100.0, first.ElevationM)
	require.Len(t, first.Days, 2)
	require.NotNil(t, first.Days[0].Rain)
	assert.Equal(t, 4.2, *first.Days[0].Rain)
	assert.Nil(t, first.Days[1].Rain, "null daily value stays nil")
	require.NotNil(t, first.Current.SnowDepthM)
	assert.Equal(t, 0.08, *first.Current.SnowDepthM)

	second := series[1]
	assert.Nil(t, second.Current.SnowDepthM, "missing snow sensor stays nil")
	require.NotNil(t, second.Current.Temperature)
	assert.Equal(t, 15.0, *second.Current.Temperature)
}

func TestClient_BatchForecast_SingleObjectResponse(t *testing.T) {
	// Open-Meteo returns a bare object, not an array, for one location.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"latitude": 44.27, "longitude": -71.30, "elevation": 1900.0,
			"daily": {
				"time": ["2026-08-31"],
				"rain_sum": [2.0],
				"snowfall_sum": [0],
				"precipitation_sum": [2.0],
				"temperature_2m_max": [16.0],
				"temperature_2m_min": [7.0],
				"shortwave_radiation_sum": [18.0],
				"et0_fao_evapotranspiration": [2.8],
				"wind_speed_10m_max": [22.0]
			},
			"current": {"snow_depth": 0, "temperature_2m": 12.0}
		}`))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})

	series, err := client.BatchForecast(context.Background(), []weather.Coord{{Lat: 44.27, Lon: -71.30}})
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 1900.0, series[0].ElevationM)
	require.Len(t, series[0].Days, 1)
}

func TestClient_BatchForecast_PartialResponse(t *testing.T) {
	// Two coordinates requested, the API only answered for one.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"latitude": 40.0, "longitude": -105.0, "elevation": 1600.0,
			"daily": {"time": ["2026-08-31"], "rain_sum": [1.0]}, "current": {}}]`))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})

	coords := []weather.Coord{{Lat: 40.0, Lon: -105.0}, {Lat: 40.1, Lon: -105.1}}
	series, err := client.BatchForecast(context.Background(), coords)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.NotEmpty(t, series[0].Days)
	assert.Empty(t, series[1].Days, "unanswered coordinate yields an empty series")
}

func TestClient_BatchForecast_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.DefaultClientConfig("test")),
	})

	_, err := client.BatchForecast(context.Background(), []weather.Coord{{Lat: 40, Lon: -105}})
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrProviderUnavailable)
}

func TestClient_BatchForecast_EmptyCoords(t *testing.T) {
	client := openmeteo.NewClient(openmeteo.ClientConfig{})
	series, err := client.BatchForecast(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, series)
}
