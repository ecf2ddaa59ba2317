package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrolabs/patro/internal/shared/infrastructure/database"
	"github.com/patrolabs/patro/internal/shared/infrastructure/migrations"
	"github.com/patrolabs/patro/internal/sync/domain"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(ctx, db))
	return db
}

func TestSQLiteMappingStoreRoundTrip(t *testing.T) {
	store := NewSQLiteMappingStore(testDB(t))
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrMappingNotFound)

	require.NoError(t, store.Upsert(ctx, "event-1", "ext-a"))
	got, err := store.Get(ctx, "event-1")
	require.NoError(t, err)
	assert.Equal(t, "ext-a", got)

	// Upsert replaces the value for that key only.
	require.NoError(t, store.Upsert(ctx, "event-2", "ext-b"))
	require.NoError(t, store.Upsert(ctx, "event-1", "ext-c"))

	got, err = store.Get(ctx, "event-1")
	require.NoError(t, err)
	assert.Equal(t, "ext-c", got)

	got, err = store.Get(ctx, "event-2")
	require.NoError(t, err)
	assert.Equal(t, "ext-b", got)

	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLiteMappingStoreDelete(t *testing.T) {
	store := NewSQLiteMappingStore(testDB(t))
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "event-1", "ext-a"))
	require.NoError(t, store.Delete(ctx, "event-1"))

	_, err := store.Get(ctx, "event-1")
	assert.ErrorIs(t, err, domain.ErrMappingNotFound)

	// Deleting an absent key is a no-op.
	assert.NoError(t, store.Delete(ctx, "event-1"))
}
