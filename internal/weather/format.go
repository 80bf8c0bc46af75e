package weather

import (
	"fmt"
	"strings"
)

// Format renders a snapshot as the chat reply for place.
// Informers snapshots use the hourly template, forecast snapshots the detailed one.
func Format(place string, s WeatherSnapshot) string {
	if s.Variant == VariantForecast {
		return formatDetailed(place, s)
	}
	return formatHourly(place, s)
}

func formatHourly(place string, s WeatherSnapshot) string {
	na := s.Variant.Sentinel()

	tempF := na
	if s.TemperatureF != nil {
		tempF = formatDecimal(*s.TemperatureF)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Погода в %s:\n", place)
	fmt.Fprintf(&b, "Температура: %s°C / %s°F\n", s.TemperatureC.Or(na), tempF)
	fmt.Fprintf(&b, "Описание: %s\n", orSentinel(s.Condition, na))
	fmt.Fprintf(&b, "Иконка: %s\n", orSentinel(s.Icon, na))
	b.WriteString("Прогноз на 48 часов:\n")
	for _, p := range s.Forecast {
		fmt.Fprintf(&b, "  Время: %s, Температура: %s°C\n", p.Timestamp.Or(na), p.Temperature.Or(na))
	}
	return b.String()
}

func formatDetailed(place string, s WeatherSnapshot) string {
	na := s.Variant.Sentinel()

	var b strings.Builder
	fmt.Fprintf(&b, "Погода в %s:\n", place)
	fmt.Fprintf(&b, "Температура: %s°C\n", s.TemperatureC.Or(na))
	fmt.Fprintf(&b, "Описание: %s\n", orSentinel(s.Condition, na))
	fmt.Fprintf(&b, "Давление: %s мм рт.ст.\n", s.PressureMm.Or(na))
	fmt.Fprintf(&b, "Влажность: %s%%\n", s.Humidity.Or(na))
	fmt.Fprintf(&b, "Подробнее: %s", orSentinel(s.DetailURL, na))
	return b.String()
}

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}
