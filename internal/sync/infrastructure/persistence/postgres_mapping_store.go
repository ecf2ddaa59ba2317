package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patrolabs/patro/internal/sync/domain"
)

// PostgresMappingStore implements domain.MappingStore using PostgreSQL.
type PostgresMappingStore struct {
	pool *pgxpool.Pool
}

// NewPostgresMappingStore creates a new PostgreSQL mapping store.
func NewPostgresMappingStore(pool *pgxpool.Pool) *PostgresMappingStore {
	return &PostgresMappingStore{pool: pool}
}

// Get returns the external ID stored under key.
func (s *PostgresMappingStore) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT external_id FROM sync_mappings WHERE derived_id = $1`

	var externalID string
	err := s.pool.QueryRow(ctx, query, key).Scan(&externalID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrMappingNotFound
	}
	if err != nil {
		return "", err
	}
	return externalID, nil
}

// Upsert stores the external ID under key.
func (s *PostgresMappingStore) Upsert(ctx context.Context, key, externalID string) error {
	query := `
		INSERT INTO sync_mappings (derived_id, external_id, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (derived_id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.pool.Exec(ctx, query, key, externalID, time.Now().UTC())
	return err
}

// Delete removes the entry for key. Absent keys are a no-op.
func (s *PostgresMappingStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM sync_mappings WHERE derived_id = $1`
	_, err := s.pool.Exec(ctx, query, key)
	return err
}

// All returns a snapshot of every stored entry.
func (s *PostgresMappingStore) All(ctx context.Context) (map[string]string, error) {
	query := `SELECT derived_id, external_id FROM sync_mappings`

	rows, err := s.pool.Query(ctx, query)
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
