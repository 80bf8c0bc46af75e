package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-telegram-bot/internal/weather"
)

const (
	UpdateModePolling = "polling"
	UpdateModeWebhook = "webhook"

	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
)

type AppConfig struct {
	TelegramBotToken   string `validate:"required"`
	YandexWeatherToken string `validate:"required"`

	// WeatherVariant selects the endpoint and the reply template.
	WeatherVariant weather.Variant `validate:"oneof=informers forecast"`
	WeatherLang    string          `validate:"required"`
	WeatherBaseURL string          `validate:"required,url"`

	Geocoder          string `validate:"oneof=nominatim google"`
	GeocoderUserAgent string `validate:"required"`
	NominatimBaseURL  string `validate:"required,url"`
	GoogleGeocoderKey string `validate:"required_if=Geocoder google"`

	// HTTPTimeout bounds outbound provider calls (0 = no timeout).
	HTTPTimeout time.Duration `validate:"gte=0"`

	UpdateMode     string `validate:"oneof=polling webhook"`
	WebhookURL     string `validate:"required_if=UpdateMode webhook"`
	PollingTimeout int    `validate:"gte=0"`
	Port           string `validate:"required,numeric"`
	WebhookSecret  string

	// ReplyErrorDetails includes provider error text in chat replies.
	ReplyErrorDetails bool

	StatusReportInterval time.Duration
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.YandexWeatherToken = os.Getenv("YANDEX_WEATHER_TOKEN")
	if cfg.TelegramBotToken == "" || cfg.YandexWeatherToken == "" {
		return nil, fmt.Errorf("required environment variables are not set: TELEGRAM_BOT_TOKEN or YANDEX_WEATHER_TOKEN")
	}

	cfg.WeatherVariant = weather.Variant(getenvDefault("WEATHER_VARIANT", string(weather.VariantInformers)))
	cfg.WeatherLang = getenvDefault("WEATHER_LANG", "ru_RU")
	cfg.WeatherBaseURL = getenvDefault("WEATHER_BASE_URL", "https://api.weather.yandex.ru/v2")

	cfg.Geocoder = getenvDefault("GEOCODER", GeocoderNominatim)
	cfg.GeocoderUserAgent = getenvDefault("GEOCODER_USER_AGENT", "telebot")
	cfg.NominatimBaseURL = getenvDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	cfg.GoogleGeocoderKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.UpdateMode = getenvDefault("UPDATE_MODE", UpdateModePolling)
	cfg.WebhookURL = os.Getenv("WEBHOOK_URL")
	cfg.WebhookSecret = os.Getenv("WEBHOOK_SECRET")
	cfg.PollingTimeout = getenvInt("POLLING_TIMEOUT", 60)
	cfg.Port = getenvDefault("PORT", "8080")

	details, err := strconv.ParseBool(getenvDefault("REPLY_ERROR_DETAILS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPLY_ERROR_DETAILS: %w", err)
	}
	cfg.ReplyErrorDetails = details

	interval, err := time.ParseDuration(getenvDefault("STATUS_REPORT_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATUS_REPORT_INTERVAL: %w", err)
	}
	cfg.StatusReportInterval = interval

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
