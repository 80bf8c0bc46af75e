package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-telegram-bot/internal/weather"
)

const yandexAPIKeyHeader = "X-Yandex-API-Key"

// YandexProvider implements weather.Fetcher for the Yandex Weather API.
// The variant decides the endpoint and which top-level sections are required.
type YandexProvider struct {
	name    string
	apiKey  string
	baseURL string
	lang    string
	variant weather.Variant
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewYandexProvider(client *http.Client, apiKey string, variant weather.Variant) *YandexProvider {
	return &YandexProvider{
		name:    "yandex",
		apiKey:  apiKey,
		baseURL: "https://api.weather.yandex.ru/v2",
		lang:    "ru_RU",
		variant: variant,
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newCircuitBreaker("yandex"),
	}
}

// SetBaseURL overrides the API root (useful for testing).
func (p *YandexProvider) SetBaseURL(baseURL string) {
	p.baseURL = baseURL
}

// SetLanguage overrides the lang query parameter.
func (p *YandexProvider) SetLanguage(lang string) {
	p.lang = lang
}

func (p *YandexProvider) Name() string {
	return p.name
}

func (p *YandexProvider) Status() weather.ProviderStatus {
	return breakerStatus(p.name, p.circuit)
}

func (p *YandexProvider) buildURL(coord weather.Coordinate) (string, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath(string(p.variant))

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	values.Set("lang", p.lang)
	u.RawQuery = values.Encode()
	return u.String(), nil
}

func (p *YandexProvider) Fetch(ctx context.Context, coord weather.Coordinate) (weather.WeatherSnapshot, error) {
	u, err := p.buildURL(coord)
	if err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("build weather url: %w", err)
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set(yandexAPIKeyHeader, p.apiKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	resp, err := doRequest(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("weather request failed: %w", err)
	}

	log.Printf("DEBUG: yandex: request %s", u)
	log.Printf("DEBUG: yandex: status %d, body %s", resp.StatusCode, resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("ERROR: yandex: status %d: %s", resp.StatusCode, resp.Body)
		return weather.WeatherSnapshot{}, &weather.APIError{
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}

	return parseYandex(p.variant, resp.Body)
}

type yandexFact struct {
	Condition  string              `json:"condition"`
	Temp       weather.Measurement `json:"temp"`
	Icon       string              `json:"icon"`
	WindDir    string              `json:"wind_dir"`
	PressureMm weather.Measurement `json:"pressure_mm"`
	Humidity   weather.Measurement `json:"humidity"`
}

type yandexForecast struct {
	Hours []struct {
		HourTS weather.Measurement `json:"hour_ts"`
		Temp   weather.Measurement `json:"temp"`
	} `json:"hours"`
}

type yandexInfo struct {
	URL string `json:"url"`
}

// requiredSections lists the top-level keys each variant cannot do without.
func requiredSections(v weather.Variant) []string {
	if v == weather.VariantForecast {
		return []string{"fact", "info"}
	}
	return []string{"fact", "forecast"}
}

// parseYandex validates the payload and normalizes it into a snapshot.
// Only the required sections are hard requirements; every field inside
// them falls back to the variant's sentinel.
func parseYandex(variant weather.Variant, body []byte) (weather.WeatherSnapshot, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("decode weather response: %w", err)
	}

	for _, key := range requiredSections(variant) {
		if _, ok := top[key]; !ok {
			return weather.WeatherSnapshot{}, &weather.MalformedResponseError{Key: key}
		}
	}

	// Only the forecast endpoint reports failures inside a 200 body.
	if raw, ok := top["error"]; ok && variant == weather.VariantForecast {
		var apiErr struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Message != "" {
			return weather.WeatherSnapshot{}, &weather.APIError{
				StatusCode: http.StatusOK,
				Message:    apiErr.Message,
			}
		}
	}

	var fact yandexFact
	if err := json.Unmarshal(top["fact"], &fact); err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("decode fact: %w", err)
	}

	snapshot := weather.WeatherSnapshot{
		Variant:      variant,
		Condition:    variant.Condition(fact.Condition),
		TemperatureC: fact.Temp,
		WindDir:      fact.WindDir,
		PressureMm:   fact.PressureMm,
		Humidity:     fact.Humidity,
	}

	switch variant {
	case weather.VariantForecast:
		var info yandexInfo
		if err := json.Unmarshal(top["info"], &info); err != nil {
			return weather.WeatherSnapshot{}, fmt.Errorf("decode info: %w", err)
		}
		snapshot.DetailURL = info.URL
	default:
		var forecast yandexForecast
		if err := json.Unmarshal(top["forecast"], &forecast); err != nil {
			return weather.WeatherSnapshot{}, fmt.Errorf("decode forecast: %w", err)
		}

		// An absent temperature is treated as 0°C for the derived value.
		celsius, _ := fact.Temp.Float64()
		fahrenheit := weather.CelsiusToFahrenheit(celsius)
		snapshot.TemperatureF = &fahrenheit
		snapshot.Icon = fact.Icon

		points := make([]weather.ForecastPoint, 0, len(forecast.Hours))
		for _, h := range forecast.Hours {
			points = append(points, weather.ForecastPoint{
				Timestamp:   h.HourTS,
				Temperature: h.Temp,
			})
		}
		snapshot.Forecast = weather.TruncateForecast(points)
	}

	return snapshot, nil
}
