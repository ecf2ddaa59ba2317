package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrEventNotFound is returned when a lookup misses.
var ErrEventNotFound = errors.New("logical event not found")

// Repository defines persistence for logical events.
type Repository interface {
	// Save persists an event (create or update).
	Save(ctx context.Context, event *LogicalEvent) error

	// FindByID returns the event with the given ID, or ErrEventNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*LogicalEvent, error)

	// FindAll returns every stored event ordered by Gregorian date.
	FindAll(ctx context.Context) ([]*LogicalEvent, error)

	// FindByKind returns every stored event of the given kind.
	FindByKind(ctx context.Context, kind EventKind) ([]*LogicalEvent, error)

	// Delete removes an event. Deleting an absent event is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
