package adminapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const breakerCooldown = 30 * time.Second

// BreakerClient fails fast once the API has been unreachable for a number
// of consecutive requests. Only network failures count; any HTTP response,
// including a rejection, is a success as far as the breaker is concerned.
type BreakerClient struct {
	next    HTTPClient
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps next. It returns next unchanged when failures is 0.
func NewBreakerClient(next HTTPClient, failures int, logger *slog.Logger) HTTPClient {
	if failures <= 0 {
		return next
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BreakerClient{
		next: next,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "account-admin-api",
			Timeout: breakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(failures)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (c *BreakerClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (interface{}, error) {
		return c.next.Do(req)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*http.Response), nil
}
