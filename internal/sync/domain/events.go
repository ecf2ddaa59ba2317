package domain

import (
	"github.com/google/uuid"
	sharedDomain "github.com/patrolabs/patro/internal/shared/domain"
)

const (
	// AggregateTypeSyncBatch is the aggregate type for sync batches.
	AggregateTypeSyncBatch = "sync_batch"

	// Event routing keys
	RoutingKeySyncCompleted = "sync.completed"
	RoutingKeyUnsynced      = "sync.unsynced"
)

// SyncCompletedEvent is published after a reconciliation batch finishes.
type SyncCompletedEvent struct {
	sharedDomain.BaseEvent
	CalendarID   string `json:"calendar_id"`
	SuccessCount int    `json:"success_count"`
	FailureCount int    `json:"failure_count"`
	SkippedCount int    `json:"skipped_count"`
}

// NewSyncCompletedEvent creates a sync completed event for a batch.
func NewSyncCompletedEvent(batchID uuid.UUID, calendarID string, success, failure, skipped int) SyncCompletedEvent {
	return SyncCompletedEvent{
		BaseEvent:    sharedDomain.NewBaseEvent(batchID, AggregateTypeSyncBatch, RoutingKeySyncCompleted),
		CalendarID:   calendarID,
		SuccessCount: success,
		FailureCount: failure,
		SkippedCount: skipped,
	}
}

// UnsyncedEvent is published after every mapping entry has been
// removed from the external calendar.
type UnsyncedEvent struct {
	sharedDomain.BaseEvent
	CalendarID   string `json:"calendar_id"`
	DeletedCount int    `json:"deleted_count"`
	FailureCount int    `json:"failure_count"`
}

// NewUnsyncedEvent creates an unsynced event for a cleanup run.
func NewUnsyncedEvent(batchID uuid.UUID, calendarID string, deleted, failed int) UnsyncedEvent {
	return UnsyncedEvent{
		BaseEvent:    sharedDomain.NewBaseEvent(batchID, AggregateTypeSyncBatch, RoutingKeyUnsynced),
		CalendarID:   calendarID,
		DeletedCount: deleted,
		FailureCount: failed,
	}
}
