package httpapi

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-telegram-bot/internal/bot"
	"github.com/i474232898/weather-telegram-bot/internal/weather"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

var validate = validator.New()

// UpdateHandler consumes a Telegram update delivered by webhook.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// Deps are the collaborators the HTTP routes need.
type Deps struct {
	Service    *weather.Service
	Dispatcher *bot.Dispatcher
	// Updates is nil when the bot runs in polling mode; the webhook is then not mounted.
	Updates       UpdateHandler
	WebhookSecret string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "weather-telegram-bot",
			"providers": deps.Service.Statuses(),
		})
	})

	if deps.Updates != nil {
		app.Post("/telegram/webhook", func(c *fiber.Ctx) error {
			if deps.WebhookSecret != "" && c.Get(secretTokenHeader) != deps.WebhookSecret {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid secret token")
			}

			var update tgbotapi.Update
			if err := json.Unmarshal(c.Body(), &update); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid update payload")
			}

			deps.Updates.HandleUpdate(c.UserContext(), update)
			return c.SendStatus(fiber.StatusOK)
		})
	}

	v1 := app.Group("/api/v1")

	// Diagnostic endpoint: runs the same pipeline as a chat message.
	v1.Get("/weather", func(c *fiber.Ctx) error {
		var q weatherQuery
		q.City = weather.NormalizePlace(c.Query("city"))
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required")
		}

		report, err := deps.Service.Lookup(c.UserContext(), q.City)
		if err != nil {
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
				"reply":   deps.Dispatcher.ErrorReply(err),
			})
		}

		return c.JSON(fiber.Map{
			"report": report,
			"reply":  report.Reply(),
		})
	})
}

// weatherQuery holds query parameters for the diagnostic endpoint.
type weatherQuery struct {
	City string `validate:"required"`
}

func statusFor(err error) int {
	var (
		apiErr       *weather.APIError
		geoErr       *weather.GeocodingError
		malformedErr *weather.MalformedResponseError
	)
	switch {
	case errors.Is(err, weather.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.As(err, &geoErr), errors.As(err, &apiErr), errors.As(err, &malformedErr):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
