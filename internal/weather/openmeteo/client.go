// Package openmeteo implements the weather.Provider interface against the
// Open-Meteo forecast API. Open-Meteo supports multi-location batch queries
// via comma-joined coordinate lists, which keeps the request count at one
// per tile regardless of sample density.
package openmeteo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trailcast/trailcast/internal/provider/resilience"
	"github.com/trailcast/trailcast/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "open-meteo"

	// DefaultBaseURL is the Open-Meteo forecast endpoint.
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
)

// Daily and current variables requested for the moisture budget simulation.
var (
	dailyFields = []string{
		"rain_sum",
		"snowfall_sum",
		"precipitation_sum",
		"temperature_2m_max",
		"temperature_2m_min",
		"shortwave_radiation_sum",
		"et0_fao_evapotranspiration",
		"wind_speed_10m_max",
	}
	currentFields = []string{
		"snow_depth",
		"temperature_2m",
		"wind_speed_10m",
		"weather_code",
	}
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string

	// HTTPClient is the resilient HTTP client. Nil uses defaults.
	HTTPClient *resilience.Client

	// PastDays is how many historical days to request. Default: 7.
	PastDays int

	// ForecastDays is how many future days to request. Default: 1.
	ForecastDays int

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo API client.
type Client struct {
	baseURL      string
	httpClient   *resilience.Client
	pastDays     int
	forecastDays int
	logger       zerolog.Logger
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	pastDays := cfg.PastDays
	if pastDays == 0 {
		pastDays = 7
	}
	forecastDays := cfg.ForecastDays
	if forecastDays == 0 {
		forecastDays = 1
	}

	return &Client{
		baseURL:      baseURL,
		httpClient:   httpClient,
		pastDays:     pastDays,
		forecastDays: forecastDays,
		logger:       cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// BatchForecast fetches a weather series for every coordinate in a single
// request. The result is in input order; coordinates the API omitted come
// back as empty series.
func (c *Client) BatchForecast(ctx context.Context, coords []weather.Coord) ([]weather.Series, error) {
	if len(coords) == 0 {
		return nil, nil
	}

	lats := make([]string, len(coords))
	lons := make([]string, len(coords))
	for i, coord := range coords {
		lats[i] = fmt.Sprintf("%.3f", coord.Lat)
		lons[i] = fmt.Sprintf("%.3f", coord.Lon)
	}

	params := url.Values{}
	params.Set("latitude", strings.Join(lats, ","))
	params.Set("longitude", strings.Join(lons, ","))
	params.Set("daily", strings.Join(dailyFields, ","))
	params.Set("current", strings.Join(currentFields, ","))
	params.Set("past_days", fmt.Sprintf("%d", c.pastDays))
	params.Set("forecast_days", fmt.Sprintf("%d", c.forecastDays))
	params.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", weather.ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	locations, err := decodeLocations(body)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	now := time.Now()
	series := make([]weather.Series, len(coords))
	for i, coord := range coords {
		series[i] = weather.Series{Coord: coord, FetchedAt: now}
		if i < len(locations) {
			fillSeries(&series[i], &locations[i])
		}
	}
	return series, nil
}

// decodeLocations handles Open-Meteo's shape variance: a bare object for a
// single location, an array for a batch.
func decodeLocations(body []byte) ([]locationResponse, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var locations []locationResponse
		if err := json.Unmarshal(trimmed, &locations); err != nil {
			return nil, err
		}
		return locations, nil
	}

	var single locationResponse
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []locationResponse{single}, nil
}

// fillSeries converts one API location payload into the domain series.
func fillSeries(s *weather.Series, loc *locationResponse) {
	s.ElevationM = loc.Elevation
	s.Current = weather.Current{
		SnowDepthM:  loc.Current.SnowDepth,
		Temperature: loc.Current.Temperature,
		WindSpeed:   loc.Current.WindSpeed,
		WeatherCode: loc.Current.WeatherCode,
	}

	days := len(loc.Daily.Time)
	s.Days = make([]weather.DailyRecord, days)
	for i := 0; i < days; i++ {
		s.Days[i] = weather.DailyRecord{
			Date:          loc.Daily.Time[i],
			Rain:          at(loc.Daily.RainSum, i),
			Snowfall:      at(loc.Daily.SnowfallSum, i),
			Precipitation: at(loc.Daily.PrecipitationSum, i),
			TempMax:       at(loc.Daily.TemperatureMax, i),
			TempMin:       at(loc.Daily.TemperatureMin, i),
			Solar:         at(loc.Daily.ShortwaveRadiationSum, i),
			ET0:           at(loc.Daily.ET0Evapotranspiration, i),
			WindMax:       at(loc.Daily.WindSpeedMax, i),
		}
	}
}

// at returns the i-th element or nil when the API returned a short or
// missing array for that variable.
func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

// Open-Meteo API response structures.

type locationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Daily     struct {
		Time                  []string   `json:"time"`
		RainSum               []*float64 `json:"rain_sum"`
		SnowfallSum           []*float64 `json:"snowfall_sum"`
		PrecipitationSum      []*float64 `json:"precipitation_sum"`
		TemperatureMax        []*float64 `json:"temperature_2m_max"`
		TemperatureMin        []*float64 `json:"temperature_2m_min"`
		ShortwaveRadiationSum []*float64 `json:"shortwave_radiation_sum"`
		ET0Evapotranspiration []*float64 `json:"et0_fao_evapotranspiration"`
		WindSpeedMax          []*float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
	Current struct {
		SnowDepth   *float64 `json:"snow_depth"`
		Temperature *float64 `json:"temperature_2m"`
		WindSpeed   *float64 `json:"wind_speed_10m"`
		WeatherCode *int     `json:"weather_code"`
	} `json:"current"`
}
