package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrolabs/patro/internal/events/domain"
	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
	"github.com/patrolabs/patro/internal/shared/infrastructure/database"
	"github.com/patrolabs/patro/internal/shared/infrastructure/migrations"
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

func newEvent(t *testing.T, title string, kind domain.EventKind) *domain.LogicalEvent {
	t.Helper()
	event, err := domain.NewLogicalEvent(title, kind,
		panchanga.NewNepaliDate(2048, 3, 12),
		panchanga.NewGregorianDate(1991, 6, 26))
	require.NoError(t, err)
	return event
}

func TestSQLiteEventRepositorySaveAndFind(t *testing.T) {
	repo := NewSQLiteEventRepository(testDB(t))
	ctx := context.Background()

	event := newEvent(t, "Ram's Lunar Birthday", domain.KindBirthdayTithi)
	event.SetDescription("family calendar")
	require.NoError(t, event.EnableReminder(60))

	require.NoError(t, repo.Save(ctx, event))

	found, err := repo.FindByID(ctx, event.ID())
	require.NoError(t, err)
	assert.Equal(t, event.ID(), found.ID())
	assert.Equal(t, "Ram's Lunar Birthday", found.Title())
	assert.Equal(t, domain.KindBirthdayTithi, found.Kind())
	assert.Equal(t, panchanga.NewNepaliDate(2048, 3, 12), found.NepaliDate())
	assert.Equal(t, panchanga.NewGregorianDate(1991, 6, 26), found.GregorianDate())
	assert.Equal(t, "family calendar", found.Description())
	assert.True(t, found.Reminder().Enabled)
	assert.Equal(t, 60, found.Reminder().MinutesBefore)

	// Derived birth fields survive the round trip untouched.
	assert.Equal(t, event.TithiNumber(), found.TithiNumber())
	assert.Equal(t, event.BirthDayOfYear(), found.BirthDayOfYear())
}

func TestSQLiteEventRepositorySaveIsUpsert(t *testing.T) {
	repo := NewSQLiteEventRepository(testDB(t))
	ctx := context.Background()

	event := newEvent(t, "Office Puja", domain.KindCustom)
	require.NoError(t, repo.Save(ctx, event))

	event.SetDescription("updated")
	require.NoError(t, repo.Save(ctx, event))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "updated", all[0].Description())
}

func TestSQLiteEventRepositoryFindByKind(t *testing.T) {
	repo := NewSQLiteEventRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newEvent(t, "Dashain", domain.KindFestival)))
	require.NoError(t, repo.Save(ctx, newEvent(t, "Tihar", domain.KindFestival)))
	require.NoError(t, repo.Save(ctx, newEvent(t, "Office Puja", domain.KindCustom)))

	festivals, err := repo.FindByKind(ctx, domain.KindFestival)
	require.NoError(t, err)
	assert.Len(t, festivals, 2)

	custom, err := repo.FindByKind(ctx, domain.KindCustom)
	require.NoError(t, err)
	require.Len(t, custom, 1)
	assert.Equal(t, "Office Puja", custom[0].Title())
}

func TestSQLiteEventRepositoryDelete(t *testing.T) {
	repo := NewSQLiteEventRepository(testDB(t))
	ctx := context.Background()

	event := newEvent(t, "Dashain", domain.KindFestival)
	require.NoError(t, repo.Save(ctx, event))
	require.NoError(t, repo.Delete(ctx, event.ID()))

	_, err := repo.FindByID(ctx, event.ID())
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	// Absent IDs delete cleanly.
	assert.NoError(t, repo.Delete(ctx, uuid.New()))
}

func TestSQLiteEventRepositoryFindByIDNotFound(t *testing.T) {
	repo := NewSQLiteEventRepository(testDB(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
