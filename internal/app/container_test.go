package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrolabs/patro/internal/sync/infrastructure/resilience"
	"github.com/patrolabs/patro/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:         "development",
		DatabaseDriver: config.DriverSQLite,
		SQLitePath:     ":memory:",
		CalendarID:     "primary",
	}
}

func TestNewContainerLocalDefaults(t *testing.T) {
	container, err := NewContainer(context.Background(), testConfig(), nil)
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.SQLiteDB)
	assert.Nil(t, container.PostgresPool)
	assert.Nil(t, container.RedisClient)

	assert.NotNil(t, container.Table)
	assert.NotNil(t, container.Converter)
	assert.NotNil(t, container.Resolver)
	assert.NotNil(t, container.EventRepo)
	assert.NotNil(t, container.MappingStore)
	assert.NotNil(t, container.EventPublisher)
	assert.NotNil(t, container.Reconciler)

	// No provider configured, so no external client.
	assert.Nil(t, container.CalendarClient)
}

func TestNewContainerCalDAVProvider(t *testing.T) {
	cfg := testConfig()
	cfg.CalendarProvider = config.ProviderCalDAV
	cfg.CalDAVURL = "https://caldav.example.com"
	cfg.CalDAVUsername = "user"
	cfg.CalDAVPassword = "pass"

	container, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer container.Close()

	require.NotNil(t, container.CalendarClient)
	assert.IsType(t, &resilience.BreakerClient{}, container.CalendarClient)
}

func TestContainerSyncConfig(t *testing.T) {
	cfg := testConfig()
	cfg.CalendarID = "family"
	cfg.SyncFestivals = true
	cfg.SyncBirthdays = true
	cfg.DaysInAdvance = 45
	cfg.MaxBirthdaysToSync = 7
	cfg.EventSyncYears = 2

	container, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer container.Close()

	syncCfg := container.SyncConfig()
	assert.Equal(t, "family", syncCfg.CalendarID)
	assert.True(t, syncCfg.SyncFestivals)
	assert.False(t, syncCfg.SyncCustomEvents)
	assert.True(t, syncCfg.SyncBirthdays)
	assert.Equal(t, 45, syncCfg.DaysInAdvance)
	assert.Equal(t, 7, syncCfg.MaxBirthdaysToSync)
	assert.Equal(t, 2, syncCfg.EventSyncYears)
}
