package application

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventsDomain "github.com/patrolabs/patro/internal/events/domain"
	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
	syncDomain "github.com/patrolabs/patro/internal/sync/domain"
	"github.com/patrolabs/patro/internal/sync/infrastructure/persistence"
)

// stubClient records calls and can be told to fail creates for
// specific titles.
type stubClient struct {
	mu         sync.Mutex
	nextID     int
	creates    int
	updates    int
	deletes    int
	failCreate map[string]bool
	failDelete map[string]bool
}

func newStubClient() *stubClient {
	return &stubClient{
		failCreate: make(map[string]bool),
		failDelete: make(map[string]bool),
	}
}

func (c *stubClient) Create(ctx context.Context, calendarID string, draft syncDomain.EventDraft) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failCreate[draft.Title] {
		return "", fmt.Errorf("provider rejected %q", draft.Title)
	}
	c.creates++
	c.nextID++
	return fmt.Sprintf("ext-%d", c.nextID), nil
}

func (c *stubClient) Update(ctx context.Context, calendarID, externalID string, draft syncDomain.EventDraft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updates++
	return nil
}

func (c *stubClient) Delete(ctx context.Context, calendarID, externalID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failDelete[externalID] {
		return fmt.Errorf("delete failed for %s", externalID)
	}
	c.deletes++
	return nil
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC)
	}
}

func newTestReconciler(t *testing.T, client syncDomain.ExternalClient, store syncDomain.MappingStore) *Reconciler {
	t.Helper()
	table, err := panchanga.DefaultTable()
	require.NoError(t, err)
	converter := panchanga.NewConverter(table, nil)
	resolver := panchanga.NewLunarResolver()
	return NewReconciler(converter, resolver, client, store, nil, nil).WithClock(fixedClock())
}

func mustEvent(t *testing.T, title string, kind eventsDomain.EventKind, nepali panchanga.NepaliDate, gregorian panchanga.GregorianDate) *eventsDomain.LogicalEvent {
	t.Helper()
	event, err := eventsDomain.NewLogicalEvent(title, kind, nepali, gregorian)
	require.NoError(t, err)
	return event
}

func TestSyncIsIdempotent(t *testing.T) {
	client := newStubClient()
	store := persistence.NewMemoryMappingStore()
	reconciler := newTestReconciler(t, client, store)

	// Maghe Sankranti style custom event later in the current BS year.
	event := mustEvent(t, "Office Puja", eventsDomain.KindCustom,
		panchanga.NewNepaliDate(2080, 10, 15),
		panchanga.NewGregorianDate(2024, 1, 29))

	cfg := Config{SyncCustomEvents: true}

	first, err := reconciler.Sync(context.Background(), cfg, []*eventsDomain.LogicalEvent{event})
	require.NoError(t, err)
	assert.Equal(t, 1, first.SuccessCount)
	assert.Equal(t, 0, first.FailureCount)
	assert.Equal(t, 1, client.creates)
	assert.Equal(t, 0, client.updates)

	externalID, err := store.Get(context.Background(), event.ID().String())
	require.NoError(t, err)

	// Second run must update the existing external event, not create a
	// duplicate, and leave the mapping untouched.
	second, err := reconciler.Sync(context.Background(), cfg, []*eventsDomain.LogicalEvent{event})
	require.NoError(t, err)
	assert.Equal(t, 1, second.SuccessCount)
	assert.Equal(t, 1, client.creates)
	assert.Equal(t, 1, client.updates)

	afterID, err := store.Get(context.Background(), event.ID().String())
	require.NoError(t, err)
	assert.Equal(t, externalID, afterID)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSyncContinuesPastFailures(t *testing.T) {
	client := newStubClient()
	client.failCreate["Teej"] = true
	store := persistence.NewMemoryMappingStore()
	reconciler := newTestReconciler(t, client, store)

	events := []*eventsDomain.LogicalEvent{
		mustEvent(t, "Dashain", eventsDomain.KindFestival,
			panchanga.NewNepaliDate(2081, 1, 10),
			panchanga.NewGregorianDate(2024, 4, 22)),
		mustEvent(t, "Teej", eventsDomain.KindFestival,
			panchanga.NewNepaliDate(2081, 1, 13),
			panchanga.NewGregorianDate(2024, 4, 25)),
		mustEvent(t, "Tihar", eventsDomain.KindFestival,
			panchanga.NewNepaliDate(2081, 1, 18),
			panchanga.NewGregorianDate(2024, 4, 30)),
	}

	result, err := reconciler.Sync(context.Background(), Config{SyncFestivals: true}, events)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Teej")

	// The failed event must not have a mapping.
	_, err = store.Get(context.Background(), events[1].ID().String())
	assert.ErrorIs(t, err, syncDomain.ErrMappingNotFound)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSyncSkipsMalformedEvents(t *testing.T) {
	client := newStubClient()
	store := persistence.NewMemoryMappingStore()
	reconciler := newTestReconciler(t, client, store)

	good := mustEvent(t, "Buddha Jayanti", eventsDomain.KindFestival,
		panchanga.NewNepaliDate(2081, 2, 9),
		panchanga.NewGregorianDate(2024, 5, 22))
	// Rehydrated with an empty title, as if the row was corrupted.
	bad := eventsDomain.RehydrateLogicalEvent(
		uuid.New(), "", eventsDomain.KindFestival,
		panchanga.NewNepaliDate(2081, 2, 9),
		panchanga.NewGregorianDate(2024, 5, 22),
		"", eventsDomain.Reminder{}, 0, 0,
		time.Now(), time.Now(),
	)

	result, err := reconciler.Sync(context.Background(), Config{SyncFestivals: true, DaysInAdvance: 60},
		[]*eventsDomain.LogicalEvent{good, bad})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 0, result.FailureCount)
}

func TestSyncFestivalWindow(t *testing.T) {
	client := newStubClient()
	store := persistence.NewMemoryMappingStore()
	reconciler := newTestReconciler(t, client, store)

	events := []*eventsDomain.LogicalEvent{
		// Yesterday: excluded.
		mustEvent(t, "Past Festival", eventsDomain.KindFestival,
			panchanga.NewNepaliDate(2081, 1, 7),
			panchanga.NewGregorianDate(2024, 4, 19)),
		// Inside the 30-day window: included.
		mustEvent(t, "Near Festival", eventsDomain.KindFestival,
			panchanga.NewNepaliDate(2081, 1, 25),
			panchanga.NewGregorianDate(2024, 5, 7)),
		// Beyond the window: excluded.
		mustEvent(t, "Far Festival", eventsDomain.KindFestival,
			panchanga.NewNepaliDate(2081, 4, 1),
			panchanga.NewGregorianDate(2024, 7, 16)),
	}

	result, err := reconciler.Sync(context.Background(), Config{SyncFestivals: true}, events)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, client.creates)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	_, err = store.Get(context.Background(), events[1].ID().String())
	assert.NoError(t, err)
}

func TestSyncDateBirthdayRollsToNextYear(t *testing.T) {
	client := newStubClient()
	store := persistence.NewMemoryMappingStore()
	reconciler := newTestReconciler(t, client, store)

	// Born on 14 February; by the 20 April clock this year's date has
	// passed, so the instance lands on next year's.
	event := mustEvent(t, "Sita's Birthday", eventsDomain.KindBirthdayDate,
		panchanga.NewNepaliDate(2046, 11, 3),
		panchanga.NewGregorianDate(1990, 2, 14))

	result, err := reconciler.Sync(context.Background(), Config{SyncBirthdays: true},
		[]*eventsDomain.LogicalEvent{event})
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	all, err := store.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSyncTithiBirthdayExpandsPerYear(t *testing.T) {
	client := newStubClient()
	store := persistence.NewMemoryMappingStore()
	reconciler := newTestReconciler(t, client, store)

	event := mustEvent(t, "Ram's Lunar Birthday", eventsDomain.KindBirthdayTithi,
		panchanga.NewNepaliDate(2048, 3, 12),
		panchanga.NewGregorianDate(1991, 6, 26))

	cfg := Config{SyncBirthdays: true, MaxBirthdaysToSync: 3}
	result, err := reconciler.Sync(context.Background(), cfg, []*eventsDomain.LogicalEvent{event})
	require.NoError(t, err)

	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 3, client.creates)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	for key := range all {
		assert.True(t, strings.HasPrefix(key, event.ID().String()+"_"),
			"tithi instance key %q must carry a year suffix", key)
	}
}

func TestSyncCustomEventMultiYearKeys(t *testing.T) {
	client := newStubClient()
	store := persistence.NewMemoryMappingStore()
	reconciler := newTestReconciler(t, client, store)

	event := mustEvent(t, "Annual Puja", eventsDomain.KindCustom,
		panchanga.NewNepaliDate(2080, 10, 15),
		panchanga.NewGregorianDate(2024, 1, 29))

	cfg := Config{SyncCustomEvents: true, EventSyncYears: 2}
	result, err := reconciler.Sync(context.Background(), cfg, []*eventsDomain.LogicalEvent{event})
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)

	all, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	for key := range all {
		assert.True(t, strings.HasPrefix(key, event.ID().String()+"_"))
	}
}

func TestDeleteEventCoversYearDerivedIDs(t *testing.T) {
	client := newStubClient()
	store := persistence.NewMemoryMappingStore()
	reconciler := newTestReconciler(t, client, store)

	event := mustEvent(t, "Ram's Lunar Birthday", eventsDomain.KindBirthdayTithi,
		panchanga.NewNepaliDate(2048, 3, 12),
		panchanga.NewGregorianDate(1991, 6, 26))

	ctx := context.Background()
	id := event.ID().String()
	require.NoError(t, store.Upsert(ctx, id, "ext-base"))
	require.NoError(t, store.Upsert(ctx, deriveKey(id, 2024), "ext-2024"))
	require.NoError(t, store.Upsert(ctx, deriveKey(id, 2025), "ext-2025"))
	require.NoError(t, store.Upsert(ctx, deriveKey(id, 2026), "ext-2026"))
	// Outside the ten-year horizon; must stay untouched.
	require.NoError(t, store.Upsert(ctx, deriveKey(id, 2040), "ext-2040"))

	result, err := reconciler.DeleteEvent(ctx, Config{}, event)
	require.NoError(t, err)

	assert.Equal(t, 4, result.AttemptedDeletes)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 4, client.deletes)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Contains(t, all, deriveKey(id, 2040))
}

func TestDeleteEventSkipsAbsentMappings(t *testing.T) {
	client := newStubClient()
	store := persistence.NewMemoryMappingStore()
	reconciler := newTestReconciler(t, client, store)

	event := mustEvent(t, "Office Puja", eventsDomain.KindCustom,
		panchanga.NewNepaliDate(2080, 10, 15),
		panchanga.NewGregorianDate(2024, 1, 29))

	result, err := reconciler.DeleteEvent(context.Background(), Config{}, event)
	require.NoError(t, err)

	assert.Equal(t, 0, result.AttemptedDeletes)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, client.deletes)
}

func TestUnsyncClearsStoreDespiteFailures(t *testing.T) {
	client := newStubClient()
	client.failDelete["ext-b"] = true
	store := persistence.NewMemoryMappingStore()
	reconciler := newTestReconciler(t, client, store)

	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, "a", "ext-a"))
	require.NoError(t, store.Upsert(ctx, "b", "ext-b"))
	require.NoError(t, store.Upsert(ctx, "c", "ext-c"))

	result, err := reconciler.Unsync(ctx, Config{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.DeletedCount)
	assert.Equal(t, 1, result.FailureCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "b")

	// Local entries are removed even when the remote delete failed, so
	// a vanished external event cannot wedge cleanup.
	all, err := store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
