package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/patrolabs/patro/internal/sync/domain"
)

// SQLiteMappingStore implements domain.MappingStore using SQLite.
type SQLiteMappingStore struct {
	db *sql.DB
}

// NewSQLiteMappingStore creates a new SQLite mapping store.
func NewSQLiteMappingStore(db *sql.DB) *SQLiteMappingStore {
	return &SQLiteMappingStore{db: db}
}

// Get returns the external ID stored under key.
func (s *SQLiteMappingStore) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT external_id FROM sync_mappings WHERE derived_id = ?`

	var externalID string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrMappingNotFound
	}
	if err != nil {
		return "", err
	}
	return externalID, nil
}

// Upsert stores the external ID under key, replacing any prior value
// for that key only.
func (s *SQLiteMappingStore) Upsert(ctx context.Context, key, externalID string) error {
	query := `
		INSERT INTO sync_mappings (derived_id, external_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (derived_id) DO UPDATE SET
			external_id = excluded.external_id,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, key, externalID, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Delete removes the entry for key. Absent keys are a no-op.
func (s *SQLiteMappingStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM sync_mappings WHERE derived_id = ?`
	_, err := s.db.ExecContext(ctx, query, key)
	return err
}

// All returns a snapshot of every stored entry.
func (s *SQLiteMappingStore) All(ctx context.Context) (map[string]string, error) {
	query := `SELECT derived_id, external_id FROM sync_mappings`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var derivedID, externalID string
		if err := rows.Scan(&derivedID, &externalID); err != nil {
			return nil, err
		}
		entries[derivedID] = externalID
	}
	return entries, rows.Err()
}
