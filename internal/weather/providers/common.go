package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-telegram-bot/internal/weather"
)

// HTTPClientConfig bundles the HTTP client and circuit breaker settings.
type HTTPClientConfig struct {
	Client *http.Client
}

var (
	errServerError  = errors.New("server error")
	errNoHTTPClient = errors.New("http client not configured")
)

// httpResult is a fully read HTTP response.
type httpResult struct {
	StatusCode int
	Body       []byte
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// breakerStatus converts the breaker state for health reporting.
func breakerStatus(provider string, cb *gobreaker.CircuitBreaker) weather.ProviderStatus {
	counts := cb.Counts()
	return weather.ProviderStatus{
		Provider:            provider,
		State:               cb.State().String(),
		Requests:            counts.Requests,
		TotalFailures:       counts.TotalFailures,
		ConsecutiveFailures: counts.ConsecutiveFailures,
	}
}

// doRequest executes one HTTP request through the circuit breaker and reads
// the whole body. Transport failures and 5xx answers count against the
// breaker; any answer that arrived is still returned so callers can report
// its status and body. There is no retry.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*httpResult, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	var result *httpResult
	_, err = cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("read response body: %w", readErr)
		}

		result = &httpResult{StatusCode: resp.StatusCode, Body: body}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		return nil, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", weather.ErrUnavailable, err)
	}
	if result != nil {
		return result, nil
	}
	return nil, err
}
