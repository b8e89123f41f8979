package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/trailcast/trailcast/internal/api/response"
	"github.com/trailcast/trailcast/internal/conditions"
	"github.com/trailcast/trailcast/internal/weather"
)

// maxGridPoints caps the number of coordinates one grid request may carry.
const maxGridPoints = 100

// WeatherHandler serves condition inference endpoints.
type WeatherHandler struct {
	conditions *conditions.Service
}

// NewWeatherHandler creates a new weather handler.
func NewWeatherHandler(svc *conditions.Service) *WeatherHandler {
	return &WeatherHandler{conditions: svc}
}

type gridCell struct {
	Condition conditions.Condition `json:"condition"`
	Reasons   []string             `json:"reasons"`
}

// GetGrid handles GET /api/weather/grid?lats=<csv>&lons=<csv>. The response
// is one condition per coordinate, in input order.
func (h *WeatherHandler) GetGrid(w http.ResponseWriter, r *http.Request) {
	lats, err := parseFloatList(r.URL.Query().Get("lats"))
	if err != nil {
		response.BadRequest(w, r, "invalid lats parameter")
		return
	}
	lons, err := parseFloatList(r.URL.Query().Get("lons"))
	if err != nil {
		response.BadRequest(w, r, "invalid lons parameter")
		return
	}

	if len(lats) == 0 || len(lats) != len(lons) {
		response.BadRequest(w, r, "lats and lons must be non-empty lists of equal length")
		return
	}
	if len(lats) > maxGridPoints {
		response.BadRequest(w, r, "too many points")
		return
	}

	coords := make([]weather.Coord, len(lats))
	for i := range lats {
		coords[i] = weather.Coord{Lat: lats[i], Lon: lons[i]}
		if err := coords[i].Validate(); err != nil {
			response.BadRequest(w, r, "coordinates out of range")
			return
		}
	}

	inferences := h.conditions.PointConditions(r.Context(), coords)

	cells := make([]gridCell, len(inferences))
	for i, inf := range inferences {
		cells[i] = gridCell{Condition: inf.Condition, Reasons: inf.Reasons}
	}
	response.JSON(w, r, http.StatusOK, cells)
}

type currentDTO struct {
	SnowDepthM  *float64 `json:"snow_depth_m"`
	Temperature *float64 `json:"temperature_c"`
	WindSpeed   *float64 `json:"wind_speed_kmh"`
	WeatherCode *int     `json:"weather_code"`
}

type dailyDTO struct {
	Date          string   `json:"date"`
	Rain          *float64 `json:"rain_mm"`
	Snowfall      *float64 `json:"snowfall_cm"`
	Precipitation *float64 `json:"precipitation_mm"`
	TempMax       *float64 `json:"temp_max_c"`
	TempMin       *float64 `json:"temp_min_c"`
	Solar         *float64 `json:"solar_mj_m2"`
	ET0           *float64 `json:"et0_mm"`
	WindMax       *float64 `json:"wind_max_kmh"`
}

type inferenceDTO struct {
	conditions.Inference
	Badge string `json:"badge"`
	Color string `json:"color"`
}

type historyResponse struct {
	Current    currentDTO   `json:"current"`
	Daily      []dailyDTO   `json:"daily"`
	ElevationM float64      `json:"elevation_m"`
	Inference  inferenceDTO `json:"inference"`
}

// GetHistory handles GET /api/weather/history?lat=&lon=: the raw 8-day
// series for one point plus the condition inferred from it.
func (h *WeatherHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		response.BadRequest(w, r, "lat and lon are required")
		return
	}

	hist, err := h.conditions.History(r.Context(), weather.Coord{Lat: lat, Lon: lon})
	if err != nil {
		if errors.Is(err, weather.ErrInvalidCoordinates) {
			response.BadRequest(w, r, "coordinates out of range")
			return
		}
		response.Error(w, r, http.StatusBadGateway, "weather data unavailable")
		return
	}

	daily := make([]dailyDTO, len(hist.Series.Days))
	for i, d := range hist.Series.Days {
		daily[i] = dailyDTO{
			Date:          d.Date,
			Rain:          d.Rain,
			Snowfall:      d.Snowfall,
			Precipitation: d.Precipitation,
			TempMax:       d.TempMax,
			TempMin:       d.TempMin,
			Solar:         d.Solar,
			ET0:           d.ET0,
			WindMax:       d.WindMax,
		}
	}

	response.JSON(w, r, http.StatusOK, historyResponse{
		Current: currentDTO{
			SnowDepthM:  hist.Series.Current.SnowDepthM,
			Temperature: hist.Series.Current.Temperature,
			WindSpeed:   hist.Series.Current.WindSpeed,
			WeatherCode: hist.Series.Current.WeatherCode,
		},
		Daily:      daily,
		ElevationM: hist.Series.ElevationM,
		Inference: inferenceDTO{
			Inference: hist.Inference,
			Badge:     hist.Inference.Condition.Badge(),
			Color:     hist.Inference.Condition.Hex(),
		},
	})
}

// parseFloatList splits a comma-separated list of floats. An empty string
// yields an empty list.
func parseFloatList(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
