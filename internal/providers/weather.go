package providers

import (
	"context"
	"math"
	"math/rand"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/supplyradar/supplyradar/internal/config"
	"github.com/supplyradar/supplyradar/internal/domain/signal"
	"github.com/supplyradar/supplyradar/internal/randutil"
)

// Hub is a supply chain hub city monitored for weather disruption.
type Hub struct {
	Name   string
	Lat    float64
	Lng    float64
	Region string
}

// SupplyChainHubs are the major Indian logistics hub cities.
var SupplyChainHubs = []Hub{
	{"Mumbai", 19.076, 72.877, "Maharashtra"},
	{"Delhi", 28.704, 77.102, "Delhi"},
	{"Chennai", 13.083, 80.271, "Tamil Nadu"},
	{"Kolkata", 22.573, 88.364, "West Bengal"},
	{"Bangalore", 12.972, 77.595, "Karnataka"},
	{"Ahmedabad", 23.023, 72.571, "Gujarat"},
	{"Hyderabad", 17.385, 78.487, "Telangana"},
	{"Pune", 18.521, 73.855, "Maharashtra"},
	{"Lucknow", 26.847, 80.947, "Uttar Pradesh"},
	{"Jaipur", 26.913, 75.787, "Rajasthan"},
}

// disruptionConditions maps OpenWeatherMap condition groups to base
// disruption severity.
var disruptionConditions = map[string]float64{
	"Thunderstorm": 0.8,
	"Rain":         0.4,
	"Heavy Rain":   0.7,
	"Drizzle":      0.1,
	"Snow":         0.6,
	"Mist":         0.2,
	"Fog":          0.4,
	"Haze":         0.2,
	"Dust":         0.3,
	"Tornado":      1.0,
	"Squall":       0.7,
	"Extreme":      0.9,
}

// owmResponse is the subset of the OpenWeatherMap current weather payload
// the provider reads.
type owmResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility float64 `json:"visibility"`
}

// WeatherProvider fetches current conditions for each hub city and derives
// a disruption severity in [0,1]. Hubs whose fetch fails get synthetic
// mild-weather observations rather than dropping out of the scan.
type WeatherProvider struct {
	client  *Client
	baseURL string
	apiKey  string
	hubs    []Hub
	rng     *randutil.Locked
}

func NewWeatherProvider(cfg config.WeatherConfig, cache Cache, ttl time.Duration, rng *rand.Rand) *WeatherProvider {
	return &WeatherProvider{
		client:  NewClient("weather", cfg.Timeout, cache, ttl),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		hubs:    SupplyChainHubs,
		rng:     randutil.New(rng),
	}
}

func (p *WeatherProvider) Source() signal.Source { return signal.SourceWeather }

func (p *WeatherProvider) Fetch(ctx context.Context, f Filters) ([]signal.Signal, error) {
	now := time.Now().UTC()
	out := make([]signal.Signal, 0, len(p.hubs))
	for _, hub := range p.hubs {
		if f.State != "" && hub.Region != f.State {
			continue
		}
		params := url.Values{}
		params.Set("lat", strconv.FormatFloat(hub.Lat, 'f', 3, 64))
		params.Set("lon", strconv.FormatFloat(hub.Lng, 'f', 3, 64))
		params.Set("appid", p.apiKey)
		params.Set("units", "metric")

		var resp owmResponse
		if err := p.client.GetJSON(ctx, p.baseURL+"/weather", params, &resp); err != nil {
			log.Warn().Err(err).Str("city", hub.Name).Msg("weather fetch failed, synthesizing observation")
			out = append(out, p.fallbackWeather(hub, now))
			continue
		}
		out = append(out, normalizeWeather(resp, hub, now))
	}
	return out, nil
}

func normalizeWeather(resp owmResponse, hub Hub, now time.Time) signal.Signal {
	condition := "Clear"
	description := ""
	if len(resp.Weather) > 0 {
		condition = resp.Weather[0].Main
		description = resp.Weather[0].Description
	}
	severity := disruptionSeverity(condition, resp.Wind.Speed, resp.Visibility, resp.Main.Temp)
	return weatherSignal(hub, now, signal.WeatherReport{
		Condition:          condition,
		Description:        description,
		TemperatureC:       resp.Main.Temp,
		Humidity:           resp.Main.Humidity,
		WindSpeed:          resp.Wind.Speed,
		VisibilityM:        resp.Visibility,
		DisruptionSeverity: severity,
		IsDisruptive:       severity > 0.3,
	})
}

// disruptionSeverity combines the condition's base severity with wind,
// visibility and extreme temperature adjustments, capped at 1.0.
func disruptionSeverity(condition string, windSpeed, visibility, temp float64) float64 {
	base := disruptionConditions[condition]
	windFactor := math.Min(windSpeed/50.0, 1.0) * 0.3
	visFactor := math.Max(0, (1000-visibility)/1000) * 0.2
	tempFactor := 0.0
	if temp > 45 || temp < 0 {
		tempFactor = 0.3
	}
	return round3(math.Min(base+windFactor+visFactor+tempFactor, 1.0))
}

func (p *WeatherProvider) fallbackWeather(hub Hub, now time.Time) signal.Signal {
	conditions := []string{"Clear", "Clouds", "Rain", "Haze", "Mist"}
	condition := conditions[p.rng.Intn(len(conditions))]
	base := disruptionConditions[condition]
	severity := round3(math.Min(base+p.rng.Float64()*0.2, 1.0))
	return weatherSignal(hub, now, signal.WeatherReport{
		Condition:          condition,
		Description:        condition,
		TemperatureC:       round1(18 + p.rng.Float64()*24),
		Humidity:           float64(30 + p.rng.Intn(61)),
		WindSpeed:          round1(p.rng.Float64() * 30),
		VisibilityM:        float64(2000 + p.rng.Intn(8001)),
		DisruptionSeverity: severity,
		IsDisruptive:       base > 0.3,
	})
}

func weatherSignal(hub Hub, now time.Time, w signal.WeatherReport) signal.Signal {
	w.Lat = hub.Lat
	w.Lng = hub.Lng
	return signal.Signal{
		Source:    signal.SourceWeather,
		Region:    hub.Region,
		City:      hub.Name,
		Timestamp: now,
		Weather:   &w,
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
