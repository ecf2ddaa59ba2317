package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	eventsDomain "github.com/patrolabs/patro/internal/events/domain"
	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
	"github.com/patrolabs/patro/internal/shared/infrastructure/eventbus"
	syncDomain "github.com/patrolabs/patro/internal/sync/domain"
)

// deleteYearHorizon is how many year-derived IDs a tithi-based
// birthday deletion covers, starting at the current year.
const deleteYearHorizon = 10

// Config is the reconciler's configuration surface.
type Config struct {
	CalendarID         string
	SyncFestivals      bool
	SyncCustomEvents   bool
	SyncBirthdays      bool
	DaysInAdvance      int // festival window, days
	MaxBirthdaysToSync int // future tithi instances per person
	EventSyncYears     int // custom-event expansion horizon
}

// withDefaults fills unset numeric options.
func (c Config) withDefaults() Config {
	if c.CalendarID == "" {
		c.CalendarID = "primary"
	}
	if c.DaysInAdvance <= 0 {
		c.DaysInAdvance = 30
	}
	if c.MaxBirthdaysToSync <= 0 {
		c.MaxBirthdaysToSync = 5
	}
	if c.EventSyncYears <= 0 {
		c.EventSyncYears = 1
	}
	return c
}

// Result is the observable outcome of a reconciliation batch. Every
// failure carries a human-readable message naming the event title.
type Result struct {
	SuccessCount int
	FailureCount int
	SkippedCount int
	Errors       []string
}

// DeleteResult reports an event deletion.
type DeleteResult struct {
	// AttemptedDeletes equals the number of derived IDs that actually
	// had a mapping; absent mappings are skipped without error.
	AttemptedDeletes int
	Errors           []string
}

// UnsyncResult reports a full cleanup run.
type UnsyncResult struct {
	DeletedCount int
	FailureCount int
	Errors       []string
}

// instance is one concrete calendar entry derived from a logical event.
type instance struct {
	key   string // derived ID: logical ID, or "{id}_{year}"
	title string
	draft syncDomain.EventDraft
}

// Reconciler expands logical events into per-year calendar instances
// and reconciles them against the external calendar, keeping the
// mapping store consistent with what exists remotely.
type Reconciler struct {
	converter *panchanga.Converter
	resolver  *panchanga.LunarResolver
	client    syncDomain.ExternalClient
	mappings  syncDomain.MappingStore
	publisher eventbus.Publisher
	logger    *slog.Logger
	keys      *keyedMutex
	now       func() time.Time
}

// NewReconciler creates a reconciler. publisher may be nil; domain
// events are then skipped.
func NewReconciler(
	converter *panchanga.Converter,
	resolver *panchanga.LunarResolver,
	client syncDomain.ExternalClient,
	mappings syncDomain.MappingStore,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		converter: converter,
		resolver:  resolver,
		client:    client,
		mappings:  mappings,
		publisher: publisher,
		logger:    logger,
		keys:      newKeyedMutex(),
		now:       time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Sync expands the given logical events and reconciles every derived
// instance against the external calendar. A single instance's failure
// is recorded and does not abort the batch.
func (r *Reconciler) Sync(ctx context.Context, cfg Config, events []*eventsDomain.LogicalEvent) (*Result, error) {
	cfg = cfg.withDefaults()
	today := panchanga.GregorianFromTime(r.now())
	result := &Result{}

	instances := r.expand(ctx, cfg, events, today, result)

	for _, inst := range instances {
		if err := r.reconcileInstance(ctx, cfg.CalendarID, inst); err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", inst.title, err))
			r.logger.WarnContext(ctx, "instance sync failed", "key", inst.key, "title", inst.title, "error", err)
			continue
		}
		result.SuccessCount++
	}

	r.publish(ctx, syncDomain.NewSyncCompletedEvent(
		uuid.New(), cfg.CalendarID, result.SuccessCount, result.FailureCount, result.SkippedCount,
	))

	r.logger.InfoContext(ctx, "sync batch completed",
		"calendar_id", cfg.CalendarID,
		"success", result.SuccessCount,
		"failed", result.FailureCount,
		"skipped", result.SkippedCount,
	)
	return result, nil
}

// expand turns logical events into derived instances per the category
// gates and horizons in cfg. Malformed events are counted as skipped.
func (r *Reconciler) expand(ctx context.Context, cfg Config, events []*eventsDomain.LogicalEvent, today panchanga.GregorianDate, result *Result) []instance {
	instances := make([]instance, 0, len(events))

	// Year indexes are independent; warm them in one parallel pass
	// before the per-event scans reuse them.
	if cfg.SyncBirthdays {
		years := make([]int, 0, panchangaScanYears(cfg))
		for y := today.Year; y <= today.Year+panchangaScanYears(cfg); y++ {
			years = append(years, y)
		}
		if err := r.resolver.Warm(ctx, years...); err != nil {
			r.logger.WarnContext(ctx, "tithi index warmup failed", "error", err)
		}
	}

	for _, event := range events {
		if event == nil {
			continue
		}
		if err := event.Validate(); err != nil {
			result.SkippedCount++
			r.logger.WarnContext(ctx, "skipping malformed event", "event_id", event.ID(), "error", err)
			continue
		}

		switch event.Kind() {
		case eventsDomain.KindFestival:
			if !cfg.SyncFestivals {
				continue
			}
			instances = append(instances, r.expandFestival(event, today, cfg.DaysInAdvance)...)

		case eventsDomain.KindCustom:
			if !cfg.SyncCustomEvents {
				continue
			}
			instances = append(instances, r.expandCustom(event, today, cfg.EventSyncYears)...)

		case eventsDomain.KindBirthdayDate:
			if !cfg.SyncBirthdays {
				continue
			}
			instances = append(instances, r.expandDateBirthday(event, today))

		case eventsDomain.KindBirthdayTithi:
			if !cfg.SyncBirthdays {
				continue
			}
			instances = append(instances, r.expandTithiBirthday(event, today, cfg.MaxBirthdaysToSync)...)
		}
	}

	return instances
}

// expandFestival includes a festival only if its Gregorian date falls
// within [today, today+daysInAdvance].
func (r *Reconciler) expandFestival(event *eventsDomain.LogicalEvent, today panchanga.GregorianDate, daysInAdvance int) []instance {
	date := event.GregorianDate()
	if date.Before(today) || date.After(today.AddDays(daysInAdvance)) {
		return nil
	}
	return []instance{{
		key:   event.ID().String(),
		title: event.Title(),
		draft: draftFor(event, date),
	}}
}

// expandCustom re-derives the Gregorian date for each target Nepali
// year in the horizon, dropping instances already past. Derived IDs
// carry a year suffix only when the horizon spans multiple years.
func (r *Reconciler) expandCustom(event *eventsDomain.LogicalEvent, today panchanga.GregorianDate, syncYears int) []instance {
	currentBS, err := r.converter.GregorianToNepali(today)
	if err != nil {
		r.logger.Warn("current date outside calendar table", "error", err)
		return nil
	}

	base := event.NepaliDate()
	instances := make([]instance, 0, syncYears)
	for i := 0; i < syncYears; i++ {
		target := panchanga.NewNepaliDate(currentBS.Year+i, base.Month, base.Day)
		date, err := r.converter.NepaliToGregorian(target)
		if err != nil {
			var convErr *panchanga.ConversionError
			if errors.As(err, &convErr) {
				r.logger.Warn("custom event instance outside calendar table", "event_id", event.ID(), "target", target.String())
				continue
			}
			continue
		}
		if date.Before(today) {
			continue
		}

		key := event.ID().String()
		if syncYears > 1 {
			key = deriveKey(event.ID().String(), date.Year)
		}
		instances = append(instances, instance{
			key:   key,
			title: event.Title(),
			draft: draftFor(event, date),
		})
	}
	return instances
}

// expandDateBirthday yields exactly one instance: this year's
// month/day, or next year's if this year's has already passed.
func (r *Reconciler) expandDateBirthday(event *eventsDomain.LogicalEvent, today panchanga.GregorianDate) instance {
	birth := event.GregorianDate()
	date := panchanga.NewGregorianDate(today.Year, birth.Month, birth.Day)
	if date.Before(today) {
		date = panchanga.NewGregorianDate(today.Year+1, birth.Month, birth.Day)
	}
	return instance{
		key:   event.ID().String(),
		title: event.Title(),
		draft: draftFor(event, date),
	}
}

// expandTithiBirthday yields up to maxBirthdays future lunar-birthday
// instances, each a non-recurring entry keyed by its year.
func (r *Reconciler) expandTithiBirthday(event *eventsDomain.LogicalEvent, today panchanga.GregorianDate, maxBirthdays int) []instance {
	occurrences := r.resolver.NextOccurrences(event.GregorianDate(), event.TithiNumber(), maxBirthdays, today)
	instances := make([]instance, 0, len(occurrences))
	for _, occ := range occurrences {
		instances = append(instances, instance{
			key:   deriveKey(event.ID().String(), occ.Year),
			title: event.Title(),
			draft: draftFor(event, occ),
		})
	}
	return instances
}

// reconcileInstance performs the per-derived-ID state transition:
// mapping hit -> update the existing external event, miss -> create
// and remember the returned ID. The mapping is persisted immediately
// after a successful create, not at batch end.
func (r *Reconciler) reconcileInstance(ctx context.Context, calendarID string, inst instance) error {
	unlock := r.keys.lock(inst.key)
	defer unlock()

	externalID, err := r.mappings.Get(ctx, inst.key)
	switch {
	case err == nil:
		return r.client.Update(ctx, calendarID, externalID, inst.draft)

	case errors.Is(err, syncDomain.ErrMappingNotFound):
		createdID, err := r.client.Create(ctx, calendarID, inst.draft)
		if err != nil {
			return err
		}
		if err := r.mappings.Upsert(ctx, inst.key, createdID); err != nil {
			return fmt.Errorf("event created externally but mapping not stored: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("mapping lookup failed: %w", err)
	}
}

// DeleteEvent removes the external instances of one logical event: the
// base derived ID and, for tithi-based birthdays, the year-derived IDs
// for the next ten years. IDs with no stored mapping are skipped.
func (r *Reconciler) DeleteEvent(ctx context.Context, cfg Config, event *eventsDomain.LogicalEvent) (*DeleteResult, error) {
	cfg = cfg.withDefaults()
	result := &DeleteResult{}

	keys := []string{event.ID().String()}
	if event.Kind() == eventsDomain.KindBirthdayTithi {
		currentYear := r.now().Year()
		for year := currentYear; year < currentYear+deleteYearHorizon; year++ {
			keys = append(keys, deriveKey(event.ID().String(), year))
		}
	}

	for _, key := range keys {
		unlock := r.keys.lock(key)

		externalID, err := r.mappings.Get(ctx, key)
		if errors.Is(err, syncDomain.ErrMappingNotFound) {
			unlock()
			continue
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: mapping lookup failed: %v", event.Title(), err))
			unlock()
			continue
		}

		result.AttemptedDeletes++
		if err := r.client.Delete(ctx, cfg.CalendarID, externalID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", event.Title(), err))
			unlock()
			continue
		}
		if err := r.mappings.Delete(ctx, key); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: mapping cleanup failed: %v", event.Title(), err))
		}
		unlock()
	}

	return result, nil
}

// Unsync deletes every mapped external event and clears the mapping
// store. External failures are accumulated but each local entry is
// removed regardless, so events already gone remotely cannot block
// cleanup.
func (r *Reconciler) Unsync(ctx context.Context, cfg Config) (*UnsyncResult, error) {
	cfg = cfg.withDefaults()
	result := &UnsyncResult{}

	entries, err := r.mappings.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping store: %w", err)
	}

	for key, externalID := range entries {
		unlock := r.keys.lock(key)

		if err := r.client.Delete(ctx, cfg.CalendarID, externalID); err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", key, err))
		} else {
			result.DeletedCount++
		}

		if err := r.mappings.Delete(ctx, key); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: mapping cleanup failed: %v", key, err))
		}
		unlock()
	}

	r.publish(ctx, syncDomain.NewUnsyncedEvent(uuid.New(), cfg.CalendarID, result.DeletedCount, result.FailureCount))
	return result, nil
}

// publish serializes a domain event and hands it to the bus.
func (r *Reconciler) publish(ctx context.Context, event interface {
	RoutingKey() string
}) {
	if r.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.WarnContext(ctx, "failed to marshal domain event", "error", err)
		return
	}
	if err := r.publisher.Publish(ctx, event.RoutingKey(), payload); err != nil {
		r.logger.WarnContext(ctx, "failed to publish domain event", "routing_key", event.RoutingKey(), "error", err)
	}
}

// deriveKey builds the year-suffixed derived ID for one instance of a
// multi-year-expanded event.
func deriveKey(id string, year int) string {
	return fmt.Sprintf("%s_%d", id, year)
}

// draftFor builds the provider-neutral draft for one instance.
func draftFor(event *eventsDomain.LogicalEvent, date panchanga.GregorianDate) syncDomain.EventDraft {
	draft := syncDomain.EventDraft{
		Title:       event.Title(),
		Description: event.Description(),
		Date:        date,
	}
	if event.Kind() == eventsDomain.KindBirthdayTithi {
		note := fmt.Sprintf("Lunar birthday (tithi %d)", event.TithiNumber())
		if draft.Description == "" {
			draft.Description = note
		} else {
			draft.Description += "\n" + note
		}
	}
	if rem := event.Reminder(); rem.Enabled {
		draft.ReminderMinutes = rem.MinutesBefore
	}
	return draft
}

// panchangaScanYears bounds the warmup horizon for birthday expansion.
func panchangaScanYears(cfg Config) int {
	if cfg.MaxBirthdaysToSync > deleteYearHorizon {
		return cfg.MaxBirthdaysToSync
	}
	return deleteYearHorizon
}
