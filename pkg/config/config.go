package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Calendar provider names accepted by PATRO_CALENDAR_PROVIDER.
const (
	ProviderCalDAV = "caldav"
	ProviderGoogle = "google"
)

// Database driver names accepted by PATRO_DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database
	DatabaseDriver string
	SQLitePath     string
	DatabaseURL    string

	// Redis (optional; mapping store moves to Redis when set)
	RedisURL string

	// RabbitMQ (optional; domain events are published when set)
	RabbitMQURL string

	// Calendar provider
	CalendarProvider string
	CalendarID       string

	// CalDAV
	CalDAVURL          string
	CalDAVUsername     string
	CalDAVPassword     string
	CalDAVCalendarPath string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string

	// Sync options
	SyncFestivals      bool
	SyncCustomEvents   bool
	SyncBirthdays      bool
	DaysInAdvance      int
	MaxBirthdaysToSync int
	EventSyncYears     int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseDriver: getEnv("PATRO_DB_DRIVER", DriverSQLite),
		SQLitePath:     getEnv("PATRO_SQLITE_PATH", ""),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),

		CalendarProvider: getEnv("PATRO_CALENDAR_PROVIDER", ""),
		CalendarID:       getEnv("PATRO_CALENDAR_ID", "primary"),

		CalDAVURL:          getEnv("PATRO_CALDAV_URL", ""),
		CalDAVUsername:     getEnv("PATRO_CALDAV_USERNAME", ""),
		CalDAVPassword:     getEnv("PATRO_CALDAV_PASSWORD", ""),
		CalDAVCalendarPath: getEnv("PATRO_CALDAV_CALENDAR_PATH", ""),

		GoogleClientID:     getEnv("PATRO_GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("PATRO_GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("PATRO_GOOGLE_REFRESH_TOKEN", ""),

		SyncFestivals:      getBoolEnv("PATRO_SYNC_FESTIVALS", true),
		SyncCustomEvents:   getBoolEnv("PATRO_SYNC_CUSTOM_EVENTS", true),
		SyncBirthdays:      getBoolEnv("PATRO_SYNC_BIRTHDAYS", true),
		DaysInAdvance:      getIntEnv("PATRO_DAYS_IN_ADVANCE", 30),
		MaxBirthdaysToSync: getIntEnv("PATRO_MAX_BIRTHDAYS", 5),
		EventSyncYears:     getIntEnv("PATRO_EVENT_SYNC_YEARS", 1),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
