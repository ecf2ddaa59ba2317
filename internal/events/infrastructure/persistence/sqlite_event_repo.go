package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrolabs/patro/internal/events/domain"
	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
)

// SQLiteEventRepository implements domain.Repository using SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

// NewSQLiteEventRepository creates a new SQLite event repository.
func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

const eventColumns = `
	id, title, kind,
	bs_year, bs_month, bs_day,
	ad_year, ad_month, ad_day,
	description, reminder_enabled, reminder_minutes,
	tithi_number, birth_day_of_year,
	created_at, updated_at
`

// Save persists an event (create or update).
func (r *SQLiteEventRepository) Save(ctx context.Context, event *domain.LogicalEvent) error {
	query := `
		INSERT INTO logical_events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			kind = excluded.kind,
			bs_year = excluded.bs_year,
			bs_month = excluded.bs_month,
			bs_day = excluded.bs_day,
			ad_year = excluded.ad_year,
			ad_month = excluded.ad_month,
			ad_day = excluded.ad_day,
			description = excluded.description,
			reminder_enabled = excluded.reminder_enabled,
			reminder_minutes = excluded.reminder_minutes,
			updated_at = excluded.updated_at
	`

	n := event.NepaliDate()
	g := event.GregorianDate()
	rem := event.Reminder()

	_, err := r.db.ExecContext(ctx, query,
		event.ID().String(),
		event.Title(),
		event.Kind().String(),
		n.Year, n.Month, n.Day,
		g.Year, g.Month, g.Day,
		event.Description(),
		rem.Enabled,
		rem.MinutesBefore,
		event.TithiNumber(),
		event.BirthDayOfYear(),
		event.CreatedAt().Format(time.RFC3339),
		event.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// FindByID returns the event with the given ID.
func (r *SQLiteEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.LogicalEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM logical_events WHERE id = ?`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrEventNotFound
	}
	return event, err
}

// FindAll returns every stored event ordered by Gregorian date.
func (r *SQLiteEventRepository) FindAll(ctx context.Context) ([]*domain.LogicalEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM logical_events ORDER BY ad_year, ad_month, ad_day`
	return r.queryEvents(ctx, query)
}

// FindByKind returns every stored event of the given kind.
func (r *SQLiteEventRepository) FindByKind(ctx context.Context, kind domain.EventKind) ([]*domain.LogicalEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM logical_events WHERE kind = ? ORDER BY ad_year, ad_month, ad_day`
	return r.queryEvents(ctx, query, kind.String())
}

// Delete removes an event. Deleting an absent event is not an error.
func (r *SQLiteEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM logical_events WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id.String())
	return err
}

func (r *SQLiteEventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.LogicalEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.LogicalEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// rowScanner abstracts sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.LogicalEvent, error) {
	var (
		idStr           string
		title           string
		kind            string
		bsYear          int
		bsMonth         int
		bsDay           int
		adYear          int
		adMonth         int
		adDay           int
		description     sql.NullString
		reminderEnabled bool
		reminderMinutes int
		tithiNumber     int
		birthDayOfYear  int
		createdAtStr    string
		updatedAtStr    string
	)

	err := row.Scan(
		&idStr, &title, &kind,
		&bsYear, &bsMonth, &bsDay,
		&adYear, &adMonth, &adDay,
		&description, &reminderEnabled, &reminderMinutes,
		&tithiNumber, &birthDayOfYear,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateLogicalEvent(
		id,
		title,
		domain.EventKind(kind),
		panchanga.NewNepaliDate(bsYear, bsMonth, bsDay),
		panchanga.NewGregorianDate(adYear, adMonth, adDay),
		description.String,
		domain.Reminder{Enabled: reminderEnabled, MinutesBefore: reminderMinutes},
		tithiNumber,
		birthDayOfYear,
		createdAt, updatedAt,
	), nil
}
