package weather

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Variant selects which Yandex Weather endpoint is queried and, with it,
// which reply template is rendered.
type Variant string

const (
	// VariantInformers queries /informers: `fact` + `forecast.hours`, Fahrenheit derived.
	VariantInformers Variant = "informers"
	// VariantForecast queries /forecast: `fact` + `info` with a details link.
	VariantForecast Variant = "forecast"
)

// Sentinel values rendered in place of fields the provider omitted.
const (
	NotAvailable     = "Данные отсутствуют"
	UnknownCondition = "неизвестно"
	NA               = "N/A"
)

// ForecastHours is the maximum number of hourly points kept from a forecast.
const ForecastHours = 48

// Sentinel returns the placeholder used for missing fields in this variant.
func (v Variant) Sentinel() string {
	if v == VariantForecast {
		return NA
	}
	return NotAvailable
}

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Measurement is a numeric provider field. It keeps the provider's own
// rendering so that 20 and 20.5 are echoed back exactly as received.
// The zero value means the field was absent.
type Measurement json.Number

// Valid reports whether the provider supplied the field.
func (m Measurement) Valid() bool {
	return m != ""
}

// UnmarshalJSON accepts a JSON number (or numeric string); null leaves it absent.
func (m *Measurement) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*m = Measurement(n)
	return nil
}

// MarshalJSON writes the number verbatim, or null when absent.
func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Valid() {
		return []byte("null"), nil
	}
	return []byte(m), nil
}

// Float64 returns the numeric value when present.
func (m Measurement) Float64() (float64, bool) {
	if !m.Valid() {
		return 0, false
	}
	f, err := json.Number(m).Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// Or renders the measurement, or the sentinel when absent.
func (m Measurement) Or(sentinel string) string {
	if !m.Valid() {
		return sentinel
	}
	return string(m)
}

// ForecastPoint is one hourly sample of the short-range forecast.
type ForecastPoint struct {
	Timestamp   Measurement `json:"timestamp"`
	Temperature Measurement `json:"temperature"`
}

// WeatherSnapshot is the normalized result of one weather lookup.
// Absent optional fields stay zero-valued and render as the variant sentinel.
type WeatherSnapshot struct {
	Variant   Variant `json:"variant"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon,omitempty"`

	TemperatureC Measurement `json:"temperatureC"`
	// TemperatureF is only derived by the informers variant.
	TemperatureF *float64 `json:"temperatureF,omitempty"`

	WindDir    string      `json:"windDir,omitempty"`
	PressureMm Measurement `json:"pressureMm,omitempty"`
	Humidity   Measurement `json:"humidity,omitempty"`
	DetailURL  string      `json:"detailUrl,omitempty"`

	Forecast []ForecastPoint `json:"forecast,omitempty"`
}

// CelsiusToFahrenheit converts and rounds to two decimal places.
func CelsiusToFahrenheit(c float64) float64 {
	return math.Round((c*9/5+32)*100) / 100
}

// formatDecimal renders f with at least one fractional digit ("68.0", "-0.0").
func formatDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// TruncateForecast keeps at most the first ForecastHours points, in order.
func TruncateForecast(points []ForecastPoint) []ForecastPoint {
	if len(points) > ForecastHours {
		return points[:ForecastHours]
	}
	return points
}
