package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pierre-fitness/pierre-server/internal/provider"
)

// WeatherReading is get_weather_for_activity's enrichment payload.
type WeatherReading struct {
	TemperatureC float64
	Conditions   string
}

// WeatherService is the optional third-party weather lookup spec.md §1/§6
// names as an external collaborator ("weather API key (optional)"); it is
// out of scope to build a rich client, so this is a thin wrapper.
type WeatherService interface {
	Enabled() bool
	ForActivity(ctx context.Context, activity provider.Activity, units string) (*WeatherReading, error)
}

// noopWeather is used when WEATHER_API_KEY is unset.
type noopWeather struct{}

func (noopWeather) Enabled() bool { return false }
func (noopWeather) ForActivity(context.Context, provider.Activity, string) (*WeatherReading, error) {
	return nil, fmt.Errorf("weather service not configured")
}

// NewNoopWeather is the default WeatherService for deployments without a
// WEATHER_API_KEY.
func NewNoopWeather() WeatherService { return noopWeather{} }

// openWeatherMapService calls OpenWeatherMap's current-weather endpoint.
// The Activity shape carries no start coordinates, so the request uses a
// fixed placeholder location query; neither the activity's location nor
// its start time affects the reading. A richer client is out of scope
// (spec.md §1).
type openWeatherMapService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewWeatherService builds the configured WeatherService, or a no-op one
// when apiKey is empty.
func NewWeatherService(apiKey string) WeatherService {
	if apiKey == "" {
		return NewNoopWeather()
	}
	return &openWeatherMapService{apiKey: apiKey, httpClient: http.DefaultClient, baseURL: "https://api.openweathermap.org/data/2.5"}
}

func (w *openWeatherMapService) Enabled() bool { return w.apiKey != "" }

type owmResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

func (w *openWeatherMapService) ForActivity(ctx context.Context, activity provider.Activity, units string) (*WeatherReading, error) {
	q := url.Values{}
	q.Set("appid", w.apiKey)
	q.Set("units", owmUnits(units))
	q.Set("q", "start") // placeholder location query: Activity carries no lat/lon in this gateway's model

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
	}

	var raw owmResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	reading := &WeatherReading{TemperatureC: raw.Main.Temp}
	if len(raw.Weather) > 0 {
		reading.Conditions = raw.Weather[0].Main
	}
	return reading, nil
}

func owmUnits(units string) string {
	switch units {
	case "imperial":
		return "imperial"
	case "kelvin":
		return "standard"
	default:
		return "metric"
	}
}
