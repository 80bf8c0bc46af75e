package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-telegram-bot/internal/api/http"
	"github.com/i474232898/weather-telegram-bot/internal/bot"
	"github.com/i474232898/weather-telegram-bot/internal/config"
	"github.com/i474232898/weather-telegram-bot/internal/scheduler"
	"github.com/i474232898/weather-telegram-bot/internal/weather"
	"github.com/i474232898/weather-telegram-bot/internal/weather/providers"
)

func main() {
	// Load configuration (also reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	defer httpClient.CloseIdleConnections()

	service := weather.NewService(newGeocoder(cfg, httpClient), newFetcher(cfg, httpClient))
	dispatcher := bot.NewDispatcher(service, bot.WithErrorDetails(cfg.ReplyErrorDetails))

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("failed to connect to telegram: %v", err)
	}
	log.Printf("INFO: authorized as @%s", api.Self.UserName)
	telegram := bot.NewTelegram(api, dispatcher)

	sched := scheduler.New(cfg.StatusReportInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-telegram-bot",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	deps := httpapi.Deps{
		Service:       service,
		Dispatcher:    dispatcher,
		WebhookSecret: cfg.WebhookSecret,
	}
	if cfg.UpdateMode == config.UpdateModeWebhook {
		deps.Updates = telegram
	}
	httpapi.RegisterRoutes(app, deps)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("INFO: bot started")
	switch cfg.UpdateMode {
	case config.UpdateModeWebhook:
		if err := registerWebhook(api, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			log.Fatalf("failed to register webhook: %v", err)
		}
		<-ctx.Done()
	default:
		// Polling and webhooks are mutually exclusive on Telegram's side.
		if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.Printf("ERROR: failed to delete webhook: %v", err)
		}
		if err := telegram.Poll(ctx, api, cfg.PollingTimeout); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("ERROR: polling stopped: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func newGeocoder(cfg *config.AppConfig, client *http.Client) weather.Geocoder {
	if cfg.Geocoder == config.GeocoderGoogle {
		return providers.NewGoogleGeocoder(cfg.GoogleGeocoderKey)
	}
	g := providers.NewNominatimGeocoder(client, cfg.GeocoderUserAgent)
	g.SetBaseURL(cfg.NominatimBaseURL)
	return g
}

func newFetcher(cfg *config.AppConfig, client *http.Client) weather.Fetcher {
	p := providers.NewYandexProvider(client, cfg.YandexWeatherToken, cfg.WeatherVariant)
	p.SetBaseURL(cfg.WeatherBaseURL)
	p.SetLanguage(cfg.WeatherLang)
	return p
}

// registerWebhook calls setWebhook directly; WebhookConfig has no secret_token field.
func registerWebhook(api *tgbotapi.BotAPI, link, secret string) error {
	params := tgbotapi.Params{"url": link}
	params.AddNonEmpty("secret_token", secret)
	_, err := api.MakeRequest("setWebhook", params)
	return err
}
