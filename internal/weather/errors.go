package weather

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the geocoder has no match for a place name.
var ErrNotFound = errors.New("Город не найден")

// ErrUnavailable is returned while a provider's circuit breaker is open and
// no outbound request is attempted.
var ErrUnavailable = errors.New("Сервис временно недоступен")

// GeocodingError reports a geocoder timeout or service-side failure.
type GeocodingError struct {
	Message string
	Err     error
}

func (e *GeocodingError) Error() string {
	return fmt.Sprintf("Ошибка геокодирования: %s", e.Message)
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

// APIError reports a non-success answer from the weather provider.
// Message is set instead of Body when the provider reported the error inside
// an otherwise successful response.
type APIError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("Ошибка API: %s", e.Message)
	}
	return fmt.Sprintf("Ошибка API: Код ответа %d. Ответ: %s", e.StatusCode, e.Body)
}

// Unauthorized reports whether the provider rejected the API key.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusForbidden
}

// MalformedResponseError reports a payload missing a required top-level key.
type MalformedResponseError struct {
	Key string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("Некорректная структура данных: отсутствует ключ '%s'", e.Key)
}
