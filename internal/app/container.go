// Package app wires the application's dependencies into a Container
// the CLI consumes.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	eventsDomain "github.com/patrolabs/patro/internal/events/domain"
	eventsPersistence "github.com/patrolabs/patro/internal/events/infrastructure/persistence"
	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
	"github.com/patrolabs/patro/internal/shared/infrastructure/database"
	"github.com/patrolabs/patro/internal/shared/infrastructure/eventbus"
	"github.com/patrolabs/patro/internal/shared/infrastructure/migrations"
	syncApp "github.com/patrolabs/patro/internal/sync/application"
	syncDomain "github.com/patrolabs/patro/internal/sync/domain"
	"github.com/patrolabs/patro/internal/sync/infrastructure/caldav"
	googleCalendar "github.com/patrolabs/patro/internal/sync/infrastructure/google"
	syncPersistence "github.com/patrolabs/patro/internal/sync/infrastructure/persistence"
	"github.com/patrolabs/patro/internal/sync/infrastructure/resilience"
	"github.com/patrolabs/patro/pkg/config"
)

// Google OAuth endpoints used when building a token source from a
// stored refresh token.
const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database (one of the two, per config.DatabaseDriver)
	SQLiteDB     *sql.DB
	PostgresPool *pgxpool.Pool

	// Redis (optional)
	RedisClient *redis.Client

	// Calendar core
	Table     *panchanga.CalendarTable
	Converter *panchanga.Converter
	Resolver  *panchanga.LunarResolver

	// Repositories and stores
	EventRepo    eventsDomain.Repository
	MappingStore syncDomain.MappingStore

	// Publishers
	EventPublisher eventbus.Publisher

	// External calendar (nil until a provider is configured)
	CalendarClient syncDomain.ExternalClient

	// Sync
	Reconciler *syncApp.Reconciler
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}

	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	table, err := panchanga.DefaultTable()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to build calendar table: %w", err)
	}
	c.Table = table
	c.Converter = panchanga.NewConverter(table, logger)
	c.Resolver = panchanga.NewLunarResolver()

	c.initCalendarClient()

	c.Reconciler = syncApp.NewReconciler(
		c.Converter,
		c.Resolver,
		c.CalendarClient,
		c.MappingStore,
		c.EventPublisher,
		logger,
	)

	return c, nil
}

// SyncConfig maps the environment configuration onto the reconciler's
// options.
func (c *Container) SyncConfig() syncApp.Config {
	return syncApp.Config{
		CalendarID:         c.Config.CalendarID,
		SyncFestivals:      c.Config.SyncFestivals,
		SyncCustomEvents:   c.Config.SyncCustomEvents,
		SyncBirthdays:      c.Config.SyncBirthdays,
		DaysInAdvance:      c.Config.DaysInAdvance,
		MaxBirthdaysToSync: c.Config.MaxBirthdaysToSync,
		EventSyncYears:     c.Config.EventSyncYears,
	}
}

func (c *Container) initDatabase(ctx context.Context) error {
	switch c.Config.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, c.Config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		c.PostgresPool = pool
		c.EventRepo = eventsPersistence.NewPostgresEventRepository(pool)
		c.MappingStore = syncPersistence.NewPostgresMappingStore(pool)
		c.Logger.Info("connected to PostgreSQL")

	default:
		db, err := database.OpenSQLite(ctx, c.Config.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		c.SQLiteDB = db
		c.EventRepo = eventsPersistence.NewSQLiteEventRepository(db)
		c.MappingStore = syncPersistence.NewSQLiteMappingStore(db)
		c.Logger.Info("opened SQLite database")
	}
	return nil
}

// initRedis moves the mapping store to Redis when configured. A broken
// Redis setup is fatal in production and a logged fallback to the
// database store otherwise.
func (c *Container) initRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, mapping store stays on the database", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, mapping store stays on the database", "error", err)
		return nil
	}

	c.RedisClient = client
	c.MappingStore = syncPersistence.NewRedisMappingStore(client)
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) initPublisher() error {
	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, domain events will be dropped", "error", err)
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}

	c.EventPublisher = publisher
	c.Logger.Info("connected to RabbitMQ")
	return nil
}

// initCalendarClient builds the configured provider's client and wraps
// it in a circuit breaker. No provider means no client; sync commands
// then refuse to run.
func (c *Container) initCalendarClient() {
	var client syncDomain.ExternalClient

	switch c.Config.CalendarProvider {
	case config.ProviderCalDAV:
		caldavClient := caldav.NewClient(
			c.Config.CalDAVURL,
			c.Config.CalDAVUsername,
			c.Config.CalDAVPassword,
			c.Logger,
		)
		if c.Config.CalDAVCalendarPath != "" {
			caldavClient = caldavClient.WithCalendarPath(c.Config.CalDAVCalendarPath)
		}
		client = caldavClient

	case config.ProviderGoogle:
		oauthCfg := &oauth2.Config{
			ClientID:     c.Config.GoogleClientID,
			ClientSecret: c.Config.GoogleClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
			Scopes: []string{"https://www.googleapis.com/auth/calendar.events"},
		}
		source := oauthCfg.TokenSource(context.Background(), &oauth2.Token{
			RefreshToken: c.Config.GoogleRefreshToken,
		})
		client = googleCalendar.NewClient(source, c.Logger)

	default:
		return
	}

	c.CalendarClient = resilience.NewBreakerClient(client, resilience.DefaultBreakerConfig(), c.Logger)
}

// Close releases all held connections.
func (c *Container) Close() {
	if publisher, ok := c.EventPublisher.(*eventbus.RabbitMQPublisher); ok && publisher != nil {
		publisher.Close()
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	if c.PostgresPool != nil {
		c.PostgresPool.Close()
	}
	if c.SQLiteDB != nil {
		c.SQLiteDB.Close()
	}
}
