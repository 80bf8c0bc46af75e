package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/i474232898/weather-telegram-bot/internal/weather"
	"github.com/i474232898/weather-telegram-bot/internal/weather/providers"
)

type fakeLookup struct {
	report weather.Report
	err    error
	calls  []string
}

func (f *fakeLookup) Lookup(_ context.Context, place string) (weather.Report, error) {
	f.calls = append(f.calls, place)
	if f.err != nil {
		return weather.Report{}, f.err
	}
	r := f.report
	r.Place = place
	return r, nil
}

func TestDispatcherGreeting(t *testing.T) {
	for _, cmd := range []string{"start", "help"} {
		lookup := &fakeLookup{}
		d := NewDispatcher(lookup)

		got := d.Handle(context.Background(), Message{Text: "/" + cmd, Command: cmd, SenderName: "Анна"})
		want := "Привет, Анна! Напиши название города для прогноза погоды."
		if got != want {
			t.Fatalf("/%s: expected %q, got %q", cmd, want, got)
		}
		if len(lookup.calls) != 0 {
			t.Fatalf("/%s must not trigger a lookup", cmd)
		}
	}
}

func TestDispatcherEmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		lookup := &fakeLookup{}
		d := NewDispatcher(lookup)

		got := d.Handle(context.Background(), Message{Text: text})
		if got != replyEmptyCity {
			t.Fatalf("text %q: expected empty-city prompt, got %q", text, got)
		}
		if len(lookup.calls) != 0 {
			t.Fatalf("text %q: no lookup expected, got %v", text, lookup.calls)
		}
	}
}

func TestDispatcherTrimsPlace(t *testing.T) {
	lookup := &fakeLookup{report: weather.Report{Snapshot: weather.WeatherSnapshot{Variant: weather.VariantForecast}}}
	d := NewDispatcher(lookup)

	got := d.Handle(context.Background(), Message{Text: "  Казань \n"})
	if len(lookup.calls) != 1 || lookup.calls[0] != "Казань" {
		t.Fatalf("expected trimmed lookup, got %v", lookup.calls)
	}
	if !strings.HasPrefix(got, "Погода в Казань:\n") {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestDispatcherUnknownCommandIsText(t *testing.T) {
	lookup := &fakeLookup{err: weather.ErrNotFound}
	d := NewDispatcher(lookup)

	d.Handle(context.Background(), Message{Text: "/weather", Command: "weather"})
	if len(lookup.calls) != 1 || lookup.calls[0] != "/weather" {
		t.Fatalf("expected unknown command to be looked up as text, got %v", lookup.calls)
	}
}

func TestDispatcherErrorReplies(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		details   bool
		want      string
		wantParts []string
	}{
		{
			name:    "not found",
			err:     weather.ErrNotFound,
			details: true,
			want:    "Ошибка: Город не найден. Проверьте название города.",
		},
		{
			name:    "geocoding",
			err:     &weather.GeocodingError{Message: "timed out"},
			details: true,
			want:    "Ошибка: Ошибка геокодирования: timed out. Проверьте название города.",
		},
		{
			name:    "geocoding sanitized",
			err:     &weather.GeocodingError{Message: "timed out"},
			details: false,
			want:    "Ошибка: Ошибка геокодирования. Проверьте название города.",
		},
		{
			name:    "unauthorized",
			err:     &weather.APIError{StatusCode: 403, Body: "Forbidden"},
			details: true,
			want:    "Произошла ошибка авторизации к API. Проверьте токен.",
		},
		{
			name:    "unauthorized wrapped",
			err:     fmt.Errorf("fetch: %w", &weather.APIError{StatusCode: 403}),
			details: false,
			want:    "Произошла ошибка авторизации к API. Проверьте токен.",
		},
		{
			name:      "api error",
			err:       &weather.APIError{StatusCode: 500, Body: "boom"},
			details:   true,
			wantParts: []string{"Код ответа 500", "boom"},
		},
		{
			name:    "api error sanitized",
			err:     &weather.APIError{StatusCode: 500, Body: "boom"},
			details: false,
			want:    "Ошибка: Ошибка API: Код ответа 500. Проверьте название города.",
		},
		{
			name:    "api error in body",
			err:     &weather.APIError{StatusCode: 200, Message: "quota exceeded"},
			details: true,
			want:    "Ошибка: Ошибка API: quota exceeded. Проверьте название города.",
		},
		{
			name:    "api error in body sanitized",
			err:     &weather.APIError{StatusCode: 200, Message: "quota exceeded"},
			details: false,
			want:    "Ошибка: Ошибка API. Проверьте название города.",
		},
		{
			name:    "provider unavailable",
			err:     fmt.Errorf("weather request failed: %w", weather.ErrUnavailable),
			details: true,
			want:    replyUnavailable,
		},
		{
			name:    "geocoder unavailable",
			err:     &weather.GeocodingError{Message: "unavailable", Err: weather.ErrUnavailable},
			details: false,
			want:    replyUnavailable,
		},
		{
			name:    "malformed",
			err:     &weather.MalformedResponseError{Key: "fact"},
			details: true,
			want:    "Ошибка: Некорректная структура данных: отсутствует ключ 'fact'. Проверьте название города.",
		},
		{
			name:    "unexpected",
			err:     errors.New("connection reset"),
			details: true,
			want:    "Произошла ошибка: connection reset",
		},
		{
			name:    "unexpected sanitized",
			err:     errors.New("connection reset"),
			details: false,
			want:    replyFailureShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(&fakeLookup{err: tt.err}, WithErrorDetails(tt.details))
			got := d.Handle(context.Background(), Message{Text: "Moscow"})

			if tt.want != "" && got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Fatalf("expected %q in %q", part, got)
				}
			}
		})
	}
}

func TestDispatcherEndToEnd(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"lat":"55.7558","lon":"37.6173"}]`)
	}))
	defer geo.Close()

	tests := []struct {
		variant weather.Variant
		body    string
		want    string
	}{
		{
			variant: weather.VariantInformers,
			body:    `{"fact":{"condition":"clear","temp":20},"forecast":{"hours":[]}}`,
			want:    "20°C / 68.0°F",
		},
		{
			variant: weather.VariantForecast,
			body:    `{"fact":{"condition":"clear","temp":20},"info":{"url":"https://yandex.ru/pogoda"}}`,
			want:    "Температура: 20°C\n",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			var gotLat, gotLon string
			ya := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotLat, gotLon = r.URL.Query().Get("lat"), r.URL.Query().Get("lon")
				fmt.Fprint(w, tt.body)
			}))
			defer ya.Close()

			g := providers.NewNominatimGeocoder(geo.Client(), "telebot")
			g.SetBaseURL(geo.URL)
			f := providers.NewYandexProvider(ya.Client(), "token", tt.variant)
			f.SetBaseURL(ya.URL)

			d := NewDispatcher(weather.NewService(g, f))
			got := d.Handle(context.Background(), Message{Text: "Moscow"})

			if gotLat != "55.7558" || gotLon != "37.6173" {
				t.Fatalf("weather requested for %s,%s", gotLat, gotLon)
			}
			if !strings.Contains(got, "ясно") || !strings.Contains(got, tt.want) {
				t.Fatalf("unexpected reply:\n%s", got)
			}
		})
	}
}

func TestDispatcherProviderOutage(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"lat":"55.7558","lon":"37.6173"}]`)
	}))
	defer geo.Close()

	var hits atomic.Int32
	ya := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message":"internal"}`)
	}))
	defer ya.Close()

	g := providers.NewNominatimGeocoder(geo.Client(), "telebot")
	g.SetBaseURL(geo.URL)
	f := providers.NewYandexProvider(ya.Client(), "token", weather.VariantInformers)
	f.SetBaseURL(ya.URL)
	d := NewDispatcher(weather.NewService(g, f))

	for i := 1; i <= 8; i++ {
		got := d.Handle(context.Background(), Message{ChatID: 1, Text: "Moscow"})
		if i <= 6 {
			if !strings.Contains(got, "Код ответа 500") {
				t.Fatalf("message %d: expected status in reply, got %q", i, got)
			}
			continue
		}
		if got != replyUnavailable {
			t.Fatalf("message %d: expected %q, got %q", i, replyUnavailable, got)
		}
	}
	if got := hits.Load(); got != 6 {
		t.Fatalf("expected 6 upstream calls, got %d", got)
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if RequestID(ctx) != "abc" {
		t.Fatalf("expected request id to round-trip")
	}
	if RequestID(context.Background()) != "" {
		t.Fatalf("expected empty request id")
	}
}
