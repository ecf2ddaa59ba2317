package domain

import (
	"context"
	"errors"
)

// ErrMappingNotFound is returned when a derived ID has no stored
// external ID.
var ErrMappingNotFound = errors.New("sync mapping not found")

// MappingStore persists the derived-ID -> external-ID mapping that
// makes reconciliation idempotent. At most one external ID exists per
// key at any time; Upsert replaces the prior value for that key only.
//
// Entries must survive process restarts, and the reconciler persists
// them incrementally (per successful create), so an interrupted batch
// leaves completed mappings valid.
type MappingStore interface {
	// Get returns the external ID stored under key, or ErrMappingNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Upsert stores the external ID under key, preserving the
	// one-external-ID-per-key invariant.
	Upsert(ctx context.Context, key, externalID string) error

	// Delete removes the entry for key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// All returns a snapshot of every stored entry.
	All(ctx context.Context) (map[string]string, error)
}
