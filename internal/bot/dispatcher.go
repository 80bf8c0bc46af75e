package bot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/i474232898/weather-telegram-bot/internal/weather"
)

// Reply texts.
const (
	replyGreeting     = "Привет, %s! Напиши название города для прогноза погоды."
	replyEmptyCity    = "Вы не указали город. Пожалуйста, введите название города."
	replyUnauthorized = "Произошла ошибка авторизации к API. Проверьте токен."
	replyUserError    = "Ошибка: %s. Проверьте название города."
	replyUnavailable  = "Ошибка: Сервис временно недоступен. Попробуйте позже."
	replyFailure      = "Произошла ошибка: %s"
	replyFailureShort = "Произошла ошибка. Попробуйте позже."
)

// Message is an inbound chat message reduced to what the dispatcher needs.
type Message struct {
	ChatID     int64
	MessageID  int
	Text       string
	Command    string // without the leading slash; empty for plain text
	SenderName string
}

// Lookup runs the geocode → weather pipeline for a place name.
type Lookup interface {
	Lookup(ctx context.Context, place string) (weather.Report, error)
}

// State is the dispatcher's position while handling one message.
type State int

const (
	StateIdle State = iota
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateProcessing:
		return "processing"
	default:
		return "idle"
	}
}

// Dispatcher turns one inbound message into exactly one reply text.
// It holds no per-chat state, so it is safe for concurrent use.
type Dispatcher struct {
	lookup       Lookup
	errorDetails bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithErrorDetails controls whether provider error text is included in replies.
func WithErrorDetails(enabled bool) Option {
	return func(d *Dispatcher) {
		d.errorDetails = enabled
	}
}

// NewDispatcher creates a Dispatcher. Error details are included by default.
func NewDispatcher(lookup Lookup, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		lookup:       lookup,
		errorDetails: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type requestIDKey struct{}

// WithRequestID attaches a request id used in log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Handle produces the reply for msg. It never fails: every error is turned
// into a one-line reply, and the dispatcher returns to idle afterwards.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) string {
	reqID := RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = WithRequestID(ctx, reqID)
	}

	switch msg.Command {
	case "start", "help":
		return fmt.Sprintf(replyGreeting, msg.SenderName)
	}

	place := weather.NormalizePlace(msg.Text)
	if place == "" {
		return replyEmptyCity
	}

	log.Printf("DEBUG: bot[%s]: chat %d %s -> %s (%q)", reqID, msg.ChatID, StateIdle, StateProcessing, place)
	defer log.Printf("DEBUG: bot[%s]: chat %d %s -> %s", reqID, msg.ChatID, StateProcessing, StateIdle)

	report, err := d.lookup.Lookup(ctx, place)
	if err != nil {
		log.Printf("ERROR: bot[%s]: lookup %q failed: %v", reqID, place, err)
		return d.ErrorReply(err)
	}
	return report.Reply()
}

// FailureReply is the reply for an unexpected failure outside the pipeline.
func (d *Dispatcher) FailureReply(cause any) string {
	if d.errorDetails {
		return fmt.Sprintf(replyFailure, cause)
	}
	return replyFailureShort
}

// ErrorReply maps a pipeline error to its one-line chat reply.
func (d *Dispatcher) ErrorReply(err error) string {
	var (
		apiErr       *weather.APIError
		geoErr       *weather.GeocodingError
		malformedErr *weather.MalformedResponseError
	)

	switch {
	case errors.As(err, &apiErr) && apiErr.Unauthorized():
		return replyUnauthorized
	case errors.Is(err, weather.ErrUnavailable):
		return replyUnavailable
	case errors.Is(err, weather.ErrNotFound):
		return fmt.Sprintf(replyUserError, weather.ErrNotFound.Error())
	case errors.As(err, &geoErr):
		if !d.errorDetails {
			return fmt.Sprintf(replyUserError, "Ошибка геокодирования")
		}
		return fmt.Sprintf(replyUserError, geoErr.Error())
	case errors.As(err, &apiErr):
		if d.errorDetails {
			return fmt.Sprintf(replyUserError, apiErr.Error())
		}
		if apiErr.Message != "" {
			return fmt.Sprintf(replyUserError, "Ошибка API")
		}
		return fmt.Sprintf(replyUserError, fmt.Sprintf("Ошибка API: Код ответа %d", apiErr.StatusCode))
	case errors.As(err, &malformedErr):
		return fmt.Sprintf(replyUserError, malformedErr.Error())
	default:
		return d.FailureReply(err)
	}
}
