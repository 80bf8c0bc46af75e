package weather

import (
	"context"
)

// Geocoder resolves a free-text place name to coordinates.
// It returns ErrNotFound when nothing matches and *GeocodingError on provider failure.
type Geocoder interface {
	Name() string
	Resolve(ctx context.Context, place string) (Coordinate, error)
}

// Fetcher retrieves current conditions (and, depending on variant, a forecast).
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, coord Coordinate) (WeatherSnapshot, error)
}

// ProviderStatus describes the health of one outbound provider.
type ProviderStatus struct {
	Provider            string `json:"provider"`
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	TotalFailures       uint32 `json:"totalFailures"`
	ConsecutiveFailures uint32 `json:"consecutiveFailures"`
}

// StatusReporter is implemented by providers guarded by a circuit breaker.
type StatusReporter interface {
	Status() ProviderStatus
}
