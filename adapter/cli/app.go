package cli

import (
	eventsDomain "github.com/patrolabs/patro/internal/events/domain"
	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
	syncApp "github.com/patrolabs/patro/internal/sync/application"
)

// App holds the CLI application dependencies.
type App struct {
	Converter  *panchanga.Converter
	Resolver   *panchanga.LunarResolver
	EventRepo  eventsDomain.Repository
	Reconciler *syncApp.Reconciler
	SyncCfg    syncApp.Config

	// CalendarConfigured reports whether an external calendar provider
	// is wired; sync commands refuse to run without one.
	CalendarConfigured bool
}

// NewApp creates a new CLI application with the provided dependencies.
func NewApp(
	converter *panchanga.Converter,
	resolver *panchanga.LunarResolver,
	eventRepo eventsDomain.Repository,
	reconciler *syncApp.Reconciler,
	syncCfg syncApp.Config,
	calendarConfigured bool,
) *App {
	return &App{
		Converter:          converter,
		Resolver:           resolver,
		EventRepo:          eventRepo,
		Reconciler:         reconciler,
		SyncCfg:            syncCfg,
		CalendarConfigured: calendarConfigured,
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
