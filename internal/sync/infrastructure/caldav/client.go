package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	"github.com/patrolabs/patro/internal/sync/domain"
)

// Common CalDAV server URLs
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// PropXPatro marks events managed by this application.
const PropXPatro = "X-PATRO"

// Client implements domain.ExternalClient against a CalDAV server
// (Apple Calendar, Fastmail, Nextcloud, self-hosted). The external ID
// of an event is its object path on the server.
type Client struct {
	baseURL      string
	username     string
	password     string // App-specific password for Apple
	calendarPath string // Specific calendar path, or empty for default
	logger       *slog.Logger
	timeout      time.Duration
}

// NewClient creates a CalDAV external calendar client.
func NewClient(baseURL, username, password string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		logger:   logger,
		timeout:  30 * time.Second,
	}
}

// WithCalendarPath sets the specific calendar path to use.
func (c *Client) WithCalendarPath(path string) *Client {
	c.calendarPath = path
	return c
}

// Create inserts a new all-day event and returns its object path.
func (c *Client) Create(ctx context.Context, calendarID string, draft domain.EventDraft) (string, error) {
	client, err := c.getClient()
	if err != nil {
		return "", domain.NewTransportError("create", err)
	}

	calPath, err := c.findCalendarPath(ctx, client, calendarID)
	if err != nil {
		return "", domain.NewTransportError("create", err)
	}

	eventPath := fmt.Sprintf("%s%s.ics", calPath, uuid.New().String())
	if _, err := client.PutCalendarObject(ctx, eventPath, toICalendar(draft)); err != nil {
		return "", domain.NewTransportError("create", err)
	}
	return eventPath, nil
}

// Update overwrites the event stored at the given object path.
func (c *Client) Update(ctx context.Context, calendarID, externalID string, draft domain.EventDraft) error {
	client, err := c.getClient()
	if err != nil {
		return domain.NewTransportError("update", err)
	}

	if _, err := client.PutCalendarObject(ctx, externalID, toICalendar(draft)); err != nil {
		return domain.NewTransportError("update", err)
	}
	return nil
}

// Delete removes the event stored at the given object path.
func (c *Client) Delete(ctx context.Context, calendarID, externalID string) error {
	client, err := c.getClient()
	if err != nil {
		return domain.NewTransportError("delete", err)
	}

	if err := client.RemoveAll(ctx, externalID); err != nil {
		return domain.NewTransportError("delete", err)
	}
	return nil
}

func (c *Client) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{
		Timeout: c.timeout,
		Transport: &basicAuthTransport{
			username: c.username,
			password: c.password,
			base:     http.DefaultTransport,
		},
	}

	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, c.username, c.password), c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

// findCalendarPath resolves the calendar to write into. An explicit
// path wins; calendarID is matched against the discovered calendars;
// otherwise the first calendar is used.
func (c *Client) findCalendarPath(ctx context.Context, client *caldav.Client, calendarID string) (string, error) {
	if c.calendarPath != "" {
		return c.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	if calendarID != "" && calendarID != "primary" {
		for _, cal := range cals {
			if cal.Path == calendarID || cal.Name == calendarID {
				return cal.Path, nil
			}
		}
	}
	return cals[0].Path, nil
}

// toICalendar converts an EventDraft to an all-day iCalendar event.
func toICalendar(draft domain.EventDraft) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Patro//Calendar Sync//EN")

	day := draft.Date.Time()

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uuid.New().String())
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDate(ical.PropDateTimeStart, day)
	event.Props.SetDate(ical.PropDateTimeEnd, day.AddDate(0, 0, 1))
	event.Props.SetText(ical.PropSummary, draft.Title)
	if draft.Description != "" {
		event.Props.SetText(ical.PropDescription, draft.Description)
	}

	patroProp := ical.NewProp(PropXPatro)
	patroProp.Value = "1"
	event.Props[PropXPatro] = []ical.Prop{*patroProp}

	if draft.ReminderMinutes > 0 {
		alarm := &ical.Component{Name: ical.CompAlarm, Props: make(ical.Props)}
		alarm.Props.SetText(ical.PropAction, "DISPLAY")
		alarm.Props.SetText(ical.PropDescription, draft.Title)
		// TRIGGER is a duration, not text, so set the raw value.
		trigger := ical.NewProp(ical.PropTrigger)
		trigger.Value = fmt.Sprintf("-PT%dM", draft.ReminderMinutes)
		alarm.Props.Set(trigger)
		event.Children = append(event.Children, alarm)
	}

	cal.Children = append(cal.Children, event.Component)
	return cal
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}
