package domain

import (
	"context"

	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
)

// EventDraft is the provider-neutral shape of one calendar instance to
// be created or updated externally.
type EventDraft struct {
	Title           string
	Description     string
	Date            panchanga.GregorianDate
	ReminderMinutes int // 0 disables the reminder
}

// ExternalClient is the injected external-calendar capability. It is
// the only place the sync module performs I/O.
//
// Implementations wrap every failure in a *TransportError. No retry or
// backoff is built in; callers impose per-call timeouts through ctx.
type ExternalClient interface {
	// Create inserts a new event and returns its external ID.
	Create(ctx context.Context, calendarID string, draft EventDraft) (string, error)

	// Update overwrites the event stored under externalID.
	Update(ctx context.Context, calendarID, externalID string, draft EventDraft) error

	// Delete removes the event stored under externalID.
	Delete(ctx context.Context, calendarID, externalID string) error
}
