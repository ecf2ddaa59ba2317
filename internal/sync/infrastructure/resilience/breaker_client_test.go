package resilience

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
	"github.com/patrolabs/patro/internal/sync/domain"
)

type flakyClient struct {
	failing bool
	calls   int
}

func (c *flakyClient) Create(ctx context.Context, calendarID string, draft domain.EventDraft) (string, error) {
	c.calls++
	if c.failing {
		return "", fmt.Errorf("upstream unavailable")
	}
	return "ext-1", nil
}

func (c *flakyClient) Update(ctx context.Context, calendarID, externalID string, draft domain.EventDraft) error {
	c.calls++
	if c.failing {
		return fmt.Errorf("upstream unavailable")
	}
	return nil
}

func (c *flakyClient) Delete(ctx context.Context, calendarID, externalID string) error {
	c.calls++
	if c.failing {
		return fmt.Errorf("upstream unavailable")
	}
	return nil
}

func testDraft() domain.EventDraft {
	return domain.EventDraft{
		Title: "Dashain",
		Date:  panchanga.NewGregorianDate(2024, 10, 11),
	}
}

func TestBreakerPassesThroughWhenClosed(t *testing.T) {
	inner := &flakyClient{}
	client := NewBreakerClient(inner, DefaultBreakerConfig(), nil)

	externalID, err := client.Create(context.Background(), "primary", testDraft())
	require.NoError(t, err)
	assert.Equal(t, "ext-1", externalID)

	assert.NoError(t, client.Update(context.Background(), "primary", "ext-1", testDraft()))
	assert.NoError(t, client.Delete(context.Background(), "primary", "ext-1"))
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, gobreaker.StateClosed, client.State())
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyClient{failing: true}
	config := BreakerConfig{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 3,
	}
	client := NewBreakerClient(inner, config, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.Create(ctx, "primary", testDraft())
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, client.State())

	// While open, calls fail fast without reaching the inner client.
	callsBefore := inner.calls
	_, err := client.Create(ctx, "primary", testDraft())
	require.Error(t, err)
	assert.Equal(t, callsBefore, inner.calls)

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
