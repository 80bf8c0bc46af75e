package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-telegram-bot/internal/common"
	"github.com/i474232898/weather-telegram-bot/internal/weather"
)

// The geocoder package is configured through package globals.
var googleMu sync.Mutex

// GoogleGeocoder implements weather.Geocoder with the Google Geocoding API.
type GoogleGeocoder struct {
	name    string
	apiKey  string
	apiURL  string
	circuit *gobreaker.CircuitBreaker
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{
		name:    "google",
		apiKey:  apiKey,
		apiURL:  geocoder.ApiUrl,
		circuit: newCircuitBreaker("google"),
	}
}

// SetAPIURL overrides the endpoint; it must end with "?" (useful for testing).
func (g *GoogleGeocoder) SetAPIURL(apiURL string) {
	g.apiURL = apiURL
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

func (g *GoogleGeocoder) Status() weather.ProviderStatus {
	return breakerStatus(g.name, g.circuit)
}

// Resolve does not observe ctx once the call is in flight; the geocoder
// package builds its own HTTP client.
func (g *GoogleGeocoder) Resolve(ctx context.Context, place string) (weather.Coordinate, error) {
	if ctx.Err() != nil {
		return weather.Coordinate{}, &weather.GeocodingError{Message: ctx.Err().Error(), Err: ctx.Err()}
	}

	result, err := g.circuit.Execute(func() (loc interface{}, err error) {
		googleMu.Lock()
		defer googleMu.Unlock()

		// Geocoding indexes the first result without checking for unknown statuses.
		defer func() {
			if r := recover(); r != nil {
				loc, err = nil, fmt.Errorf("%w: %v", errGeocoderPanic, r)
			}
		}()

		geocoder.ApiKey = g.apiKey
		geocoder.ApiUrl = g.apiURL
		l, err := geocoder.Geocoding(geocoder.Address{City: place})
		if err != nil {
			if isNoResults(err) {
				// A miss is a valid answer; do not count it against the breaker.
				return nil, nil
			}
			return nil, err
		}
		return l, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = fmt.Errorf("%w: %v", weather.ErrUnavailable, err)
		} else if isNoResults(err) {
			return weather.Coordinate{}, weather.ErrNotFound
		}
		return weather.Coordinate{}, &weather.GeocodingError{Message: err.Error(), Err: err}
	}

	l, ok := result.(geocoder.Location)
	if !ok {
		return weather.Coordinate{}, weather.ErrNotFound
	}
	return weather.Coordinate{Lat: l.Latitude, Lon: l.Longitude}, nil
}

var errGeocoderPanic = errors.New("некорректный ответ геокодера")

func isNoResults(err error) bool {
	return common.HasAny(err.Error(), "No results found", "ZERO_RESULTS")
}
