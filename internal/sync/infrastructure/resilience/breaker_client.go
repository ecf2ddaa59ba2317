package resilience

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrolabs/patro/internal/sync/domain"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker wrapped around an external
// calendar client.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns conservative defaults suited to a
// remote calendar API.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "external-calendar",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerClient decorates a domain.ExternalClient with a circuit
// breaker so a flapping calendar provider fails fast instead of
// stalling every sync instance on its own timeout.
type BreakerClient struct {
	inner   domain.ExternalClient
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

// NewBreakerClient wraps the given client in a circuit breaker.
func NewBreakerClient(inner domain.ExternalClient, config BreakerConfig, logger *slog.Logger) *BreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Name == "" {
		config.Name = "external-calendar"
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerClient{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
		logger:  logger,
	}
}

// Create inserts an event through the breaker.
func (c *BreakerClient) Create(ctx context.Context, calendarID string, draft domain.EventDraft) (string, error) {
	externalID, err := c.breaker.Execute(func() (string, error) {
		return c.inner.Create(ctx, calendarID, draft)
	})
	if err != nil {
		return "", wrapBreakerError("create", err)
	}
	return externalID, nil
}

// Update overwrites an event through the breaker.
func (c *BreakerClient) Update(ctx context.Context, calendarID, externalID string, draft domain.EventDraft) error {
	_, err := c.breaker.Execute(func() (string, error) {
		return "", c.inner.Update(ctx, calendarID, externalID, draft)
	})
	if err != nil {
		return wrapBreakerError("update", err)
	}
	return nil
}

// Delete removes an event through the breaker.
func (c *BreakerClient) Delete(ctx context.Context, calendarID, externalID string) error {
	_, err := c.breaker.Execute(func() (string, error) {
		return "", c.inner.Delete(ctx, calendarID, externalID)
	})
	if err != nil {
		return wrapBreakerError("delete", err)
	}
	return nil
}

// State exposes the breaker state for diagnostics.
func (c *BreakerClient) State() gobreaker.State {
	return c.breaker.State()
}

func wrapBreakerError(op string, err error) error {
	switch err {
	case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
		return domain.NewTransportError(op, err)
	}
	return err
}
