package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-telegram-bot/internal/weather"
)

// NominatimGeocoder implements weather.Geocoder with OpenStreetMap Nominatim.
type NominatimGeocoder struct {
	name      string
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

func NewNominatimGeocoder(client *http.Client, userAgent string) *NominatimGeocoder {
	return &NominatimGeocoder{
		name:      "nominatim",
		baseURL:   "https://nominatim.openstreetmap.org",
		userAgent: userAgent,
		httpCfg:   HTTPClientConfig{Client: client},
		circuit:   newCircuitBreaker("nominatim"),
	}
}

// SetBaseURL overrides the service root (useful for testing).
func (g *NominatimGeocoder) SetBaseURL(baseURL string) {
	g.baseURL = baseURL
}

func (g *NominatimGeocoder) Name() string {
	return g.name
}

func (g *NominatimGeocoder) Status() weather.ProviderStatus {
	return breakerStatus(g.name, g.circuit)
}

func (g *NominatimGeocoder) Resolve(ctx context.Context, place string) (weather.Coordinate, error) {
	buildRequest := func() (*http.Request, error) {
		u, err := url.Parse(g.baseURL)
		if err != nil {
			return nil, err
		}
		u = u.JoinPath("search")

		values := url.Values{}
		values.Set("q", place)
		values.Set("format", "json")
		values.Set("limit", "1")
		u.RawQuery = values.Encode()

		req, err := http.NewRequest(http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		// Nominatim's usage policy requires an identifying User-Agent.
		req.Header.Set("User-Agent", g.userAgent)
		return req, nil
	}

	resp, err := doRequest(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return weather.Coordinate{}, &weather.GeocodingError{Message: "превышено время ожидания", Err: err}
		}
		return weather.Coordinate{}, &weather.GeocodingError{Message: err.Error(), Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return weather.Coordinate{}, &weather.GeocodingError{
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Body),
		}
	}

	var places []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.Unmarshal(resp.Body, &places); err != nil {
		return weather.Coordinate{}, &weather.GeocodingError{Message: err.Error(), Err: err}
	}
	if len(places) == 0 {
		return weather.Coordinate{}, weather.ErrNotFound
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return weather.Coordinate{}, &weather.GeocodingError{Message: fmt.Sprintf("invalid latitude %q", places[0].Lat), Err: err}
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return weather.Coordinate{}, &weather.GeocodingError{Message: fmt.Sprintf("invalid longitude %q", places[0].Lon), Err: err}
	}

	return weather.Coordinate{Lat: lat, Lon: lon}, nil
}
