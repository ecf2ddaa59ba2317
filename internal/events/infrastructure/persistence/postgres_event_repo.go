package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patrolabs/patro/internal/events/domain"
	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
)

// PostgresEventRepository implements domain.Repository using PostgreSQL.
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgreSQL event repository.
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// Save persists an event (create or update).
func (r *PostgresEventRepository) Save(ctx context.Context, event *domain.LogicalEvent) error {
	query := `
		INSERT INTO logical_events (
			id, title, kind,
			bs_year, bs_month, bs_day,
			ad_year, ad_month, ad_day,
			description, reminder_enabled, reminder_minutes,
			tithi_number, birth_day_of_year,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			kind = EXCLUDED.kind,
			bs_year = EXCLUDED.bs_year,
			bs_month = EXCLUDED.bs_month,
			bs_day = EXCLUDED.bs_day,
			ad_year = EXCLUDED.ad_year,
			ad_month = EXCLUDED.ad_month,
			ad_day = EXCLUDED.ad_day,
			description = EXCLUDED.description,
			reminder_enabled = EXCLUDED.reminder_enabled,
			reminder_minutes = EXCLUDED.reminder_minutes,
			updated_at = EXCLUDED.updated_at
	`

	n := event.NepaliDate()
	g := event.GregorianDate()
	rem := event.Reminder()

	_, err := r.pool.Exec(ctx, query,
		event.ID(),
		event.Title(),
		event.Kind().String(),
		n.Year, n.Month, n.Day,
		g.Year, g.Month, g.Day,
		event.Description(),
		rem.Enabled,
		rem.MinutesBefore,
		event.TithiNumber(),
		event.BirthDayOfYear(),
		event.CreatedAt(),
		event.UpdatedAt(),
	)
	return err
}

// FindByID returns the event with the given ID.
func (r *PostgresEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.LogicalEvent, error) {
	query := selectEvents + ` WHERE id = $1`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrEventNotFound
	}
	return scanEventRow(rows)
}

// FindAll returns every stored event ordered by Gregorian date.
func (r *PostgresEventRepository) FindAll(ctx context.Context) ([]*domain.LogicalEvent, error) {
	return r.queryEvents(ctx, selectEvents+` ORDER BY ad_year, ad_month, ad_day`)
}

// FindByKind returns every stored event of the given kind.
func (r *PostgresEventRepository) FindByKind(ctx context.Context, kind domain.EventKind) ([]*domain.LogicalEvent, error) {
	return r.queryEvents(ctx, selectEvents+` WHERE kind = $1 ORDER BY ad_year, ad_month, ad_day`, kind.String())
}

// Delete removes an event. Deleting an absent event is not an error.
func (r *PostgresEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM logical_events WHERE id = $1`, id)
	return err
}

const selectEvents = `
	SELECT id, title, kind,
		   bs_year, bs_month, bs_day,
		   ad_year, ad_month, ad_day,
		   description, reminder_enabled, reminder_minutes,
		   tithi_number, birth_day_of_year,
		   created_at, updated_at
	FROM logical_events
`

func (r *PostgresEventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.LogicalEvent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.LogicalEvent
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanEventRow(rows pgx.Rows) (*domain.LogicalEvent, error) {
	var (
		id              uuid.UUID
		title           string
		kind            string
		bsYear          int
		bsMonth         int
		bsDay           int
		adYear          int
		adMonth         int
		adDay           int
		description     string
		reminderEnabled bool
		reminderMinutes int
		tithiNumber     int
		birthDayOfYear  int
		createdAt       time.Time
		updatedAt       time.Time
	)

	err := rows.Scan(
		&id, &title, &kind,
		&bsYear, &bsMonth, &bsDay,
		&adYear, &adMonth, &adDay,
		&description, &reminderEnabled, &reminderMinutes,
		&tithiNumber, &birthDayOfYear,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateLogicalEvent(
		id,
		title,
		domain.EventKind(kind),
		panchanga.NewNepaliDate(bsYear, bsMonth, bsDay),
		panchanga.NewGregorianDate(adYear, adMonth, adDay),
		description,
		domain.Reminder{Enabled: reminderEnabled, MinutesBefore: reminderMinutes},
		tithiNumber,
		birthDayOfYear,
		createdAt, updatedAt,
	), nil
}
