package weather

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Service runs one lookup: geocode the place, then fetch its weather.
// It keeps no state between lookups.
type Service struct {
	geocoder Geocoder
	fetcher  Fetcher
}

// NewService creates a new Service.
func NewService(geocoder Geocoder, fetcher Fetcher) *Service {
	return &Service{
		geocoder: geocoder,
		fetcher:  fetcher,
	}
}

// Report is the outcome of a successful lookup.
type Report struct {
	Place      string          `json:"place"`
	Coordinate Coordinate      `json:"coordinate"`
	Snapshot   WeatherSnapshot `json:"snapshot"`
}

// Reply renders the report with the template matching its variant.
func (r Report) Reply() string {
	return Format(r.Place, r.Snapshot)
}

// NormalizePlace trims surrounding whitespace and applies Unicode NFC so that
// decomposed input (e.g. "й" as "и"+U+0306) geocodes like composed input.
func NormalizePlace(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Lookup geocodes place and fetches weather for it, stopping at the first failure.
// place must already be normalized and non-empty.
func (s *Service) Lookup(ctx context.Context, place string) (Report, error) {
	if place == "" {
		return Report{}, fmt.Errorf("place name is empty")
	}

	coord, err := s.geocoder.Resolve(ctx, place)
	if err != nil {
		return Report{}, err
	}
	log.Printf("INFO: coordinates for %q via %s: %v, %v", place, s.geocoder.Name(), coord.Lat, coord.Lon)

	snapshot, err := s.fetcher.Fetch(ctx, coord)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Place:      place,
		Coordinate: coord,
		Snapshot:   snapshot,
	}, nil
}

// Statuses returns the circuit state of every provider that reports one.
func (s *Service) Statuses() []ProviderStatus {
	var out []ProviderStatus
	for _, p := range []any{s.geocoder, s.fetcher} {
		if r, ok := p.(StatusReporter); ok {
			out = append(out, r.Status())
		}
	}
	return out
}
