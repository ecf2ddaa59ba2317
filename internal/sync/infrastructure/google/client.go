package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/patrolabs/patro/internal/sync/domain"
	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

const dateLayout = "2006-01-02"

// Client implements domain.ExternalClient against the Google Calendar
// REST API. Events are written as all-day events; the external ID is
// the event ID assigned by Google on insert.
type Client struct {
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	baseURL     string
	timeout     time.Duration
}

// NewClient creates a Google Calendar client.
func NewClient(tokenSource oauth2.TokenSource, logger *slog.Logger) *Client {
	return NewClientWithBaseURL(tokenSource, logger, defaultBaseURL)
}

// NewClientWithBaseURL creates a Google Calendar client with a custom
// base URL. Used by tests to point at a local server.
func NewClientWithBaseURL(tokenSource oauth2.TokenSource, logger *slog.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		tokenSource: tokenSource,
		logger:      logger,
		baseURL:     baseURL,
		timeout:     15 * time.Second,
	}
}

// Create inserts a new all-day event and returns the ID Google assigned.
func (c *Client) Create(ctx context.Context, calendarID string, draft domain.EventDraft) (string, error) {
	client, err := c.httpClient()
	if err != nil {
		return "", domain.NewTransportError("create", err)
	}

	body, err := json.Marshal(toGoogleEvent(draft))
	if err != nil {
		return "", domain.NewTransportError("create", err)
	}

	insertURL := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, calendarID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, insertURL, bytes.NewReader(body))
	if err != nil {
		return "", domain.NewTransportError("create", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", domain.NewTransportError("create", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewTransportError("create", responseError(resp))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", domain.NewTransportError("create", err)
	}
	if created.ID == "" {
		return "", domain.NewTransportError("create", fmt.Errorf("insert response missing event id"))
	}
	return created.ID, nil
}

// Update overwrites the event with the given ID.
func (c *Client) Update(ctx context.Context, calendarID, externalID string, draft domain.EventDraft) error {
	client, err := c.httpClient()
	if err != nil {
		return domain.NewTransportError("update", err)
	}

	body, err := json.Marshal(toGoogleEvent(draft))
	if err != nil {
		return domain.NewTransportError("update", err)
	}

	updateURL := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL, calendarID, externalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, updateURL, bytes.NewReader(body))
	if err != nil {
		return domain.NewTransportError("update", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return domain.NewTransportError("update", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.NewTransportError("update", responseError(resp))
	}
	return nil
}

// Delete removes the event with the given ID. An event already gone
// on the Google side counts as deleted.
func (c *Client) Delete(ctx context.Context, calendarID, externalID string) error {
	client, err := c.httpClient()
	if err != nil {
		return domain.NewTransportError("delete", err)
	}

	deleteURL := fmt.Sprintf("%s/calendars/%s/events/%s", c.baseURL, calendarID, externalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return domain.NewTransportError("delete", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return domain.NewTransportError("delete", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.NewTransportError("delete", responseError(resp))
	}
	return nil
}

func (c *Client) httpClient() (*http.Client, error) {
	if c.tokenSource == nil {
		return nil, fmt.Errorf("oauth token source not configured")
	}
	token, err := c.tokenSource.Token()
	if err != nil {
		c.logger.Warn("oauth token refresh failed", "error", err)
		return nil, err
	}
	if !token.Expiry.IsZero() && time.Until(token.Expiry) < 24*time.Hour {
		c.logger.Warn("oauth token nearing expiry", "expires_at", token.Expiry)
	}
	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauthTransport{
			base:   http.DefaultTransport,
			source: c.tokenSource,
		},
	}, nil
}

type googleEvent struct {
	Summary            string `json:"summary"`
	Description        string `json:"description,omitempty"`
	ExtendedProperties struct {
		Private map[string]string `json:"private,omitempty"`
	} `json:"extendedProperties,omitempty"`
	Reminders struct {
		UseDefault bool `json:"useDefault"`
		Overrides  []struct {
			Method  string `json:"method"`
			Minutes int    `json:"minutes"`
		} `json:"overrides,omitempty"`
	} `json:"reminders,omitempty"`
	Start struct {
		Date string `json:"date"`
	} `json:"start"`
	End struct {
		Date string `json:"date"`
	} `json:"end"`
}

func toGoogleEvent(draft domain.EventDraft) googleEvent {
	event := googleEvent{
		Summary:     draft.Title,
		Description: draft.Description,
	}
	event.ExtendedProperties.Private = map[string]string{
		"patro": "1",
	}

	day := draft.Date.Time()
	event.Start.Date = day.Format(dateLayout)
	event.End.Date = day.AddDate(0, 0, 1).Format(dateLayout)

	if draft.ReminderMinutes > 0 {
		event.Reminders.UseDefault = false
		event.Reminders.Overrides = []struct {
			Method  string `json:"method"`
			Minutes int    `json:"minutes"`
		}{
			{Method: "popup", Minutes: draft.ReminderMinutes},
		}
	}

	return event
}

func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("calendar request failed: status=%d body=%s", resp.StatusCode, string(body))
}

type oauthTransport struct {
	base   http.RoundTripper
	source oauth2.TokenSource
}

func (t *oauthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return t.base.RoundTrip(req)
}
