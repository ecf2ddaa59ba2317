package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
	sharedDomain "github.com/patrolabs/patro/internal/shared/domain"
)

var (
	ErrEmptyTitle      = errors.New("event title cannot be empty")
	ErrInvalidKind     = errors.New("invalid event kind")
	ErrMissingDate     = errors.New("event is missing its dates")
	ErrInvalidTithi    = errors.New("tithi number must be between 1 and 30")
	ErrInvalidReminder = errors.New("reminder minutes must be positive")
)

// EventKind categorizes a logical event. The reconciler switches on it
// exhaustively when expanding events into calendar instances.
type EventKind string

const (
	// KindFestival is a festival from the published calendar.
	KindFestival EventKind = "festival"
	// KindCustom is a user-defined event pinned to a Bikram Sambat date.
	KindCustom EventKind = "custom"
	// KindBirthdayDate is a birthday celebrated on a fixed solar date.
	KindBirthdayDate EventKind = "birthday_date"
	// KindBirthdayTithi is a lunar birthday, recomputed per solar year
	// from the birth tithi.
	KindBirthdayTithi EventKind = "birthday_tithi"
)

// IsValid reports whether the kind is recognized.
func (k EventKind) IsValid() bool {
	switch k {
	case KindFestival, KindCustom, KindBirthdayDate, KindBirthdayTithi:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k EventKind) String() string { return string(k) }

// Reminder is an optional notification setting carried on an event.
type Reminder struct {
	Enabled       bool
	MinutesBefore int
}

// LogicalEvent is a calendar entry maintained in the Bikram Sambat
// calendar. It is the unit the sync reconciler expands into concrete
// external-calendar instances.
type LogicalEvent struct {
	sharedDomain.BaseEntity
	title          string
	kind           EventKind
	nepaliDate     panchanga.NepaliDate
	gregorianDate  panchanga.GregorianDate
	description    string
	reminder       Reminder
	tithiNumber    int
	birthDayOfYear int
}

// NewLogicalEvent creates a validated logical event. For tithi-based
// birthdays the birth tithi and the birth day-of-year are derived from
// the Gregorian date once, at construction, and never recomputed.
func NewLogicalEvent(title string, kind EventKind, nepali panchanga.NepaliDate, gregorian panchanga.GregorianDate) (*LogicalEvent, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if !kind.IsValid() {
		return nil, ErrInvalidKind
	}
	if nepali.IsZero() || gregorian.IsZero() {
		return nil, ErrMissingDate
	}

	e := &LogicalEvent{
		BaseEntity:    sharedDomain.NewBaseEntity(),
		title:         title,
		kind:          kind,
		nepaliDate:    nepali,
		gregorianDate: gregorian,
	}

	if kind == KindBirthdayTithi {
		e.tithiNumber = panchanga.CalculateTithi(gregorian).Number
		e.birthDayOfYear = gregorian.DayOfYear()
	}

	return e, nil
}

func (e *LogicalEvent) Title() string                           { return e.title }
func (e *LogicalEvent) Kind() EventKind                         { return e.kind }
func (e *LogicalEvent) NepaliDate() panchanga.NepaliDate        { return e.nepaliDate }
func (e *LogicalEvent) GregorianDate() panchanga.GregorianDate  { return e.gregorianDate }
func (e *LogicalEvent) Description() string                     { return e.description }
func (e *LogicalEvent) Reminder() Reminder                      { return e.reminder }
func (e *LogicalEvent) TithiNumber() int                        { return e.tithiNumber }
func (e *LogicalEvent) BirthDayOfYear() int                     { return e.birthDayOfYear }

// SetDescription updates the free-text description.
func (e *LogicalEvent) SetDescription(description string) {
	e.description = strings.TrimSpace(description)
	e.Touch()
}

// EnableReminder turns on a reminder firing the given minutes before
// the event.
func (e *LogicalEvent) EnableReminder(minutesBefore int) error {
	if minutesBefore <= 0 {
		return ErrInvalidReminder
	}
	e.reminder = Reminder{Enabled: true, MinutesBefore: minutesBefore}
	e.Touch()
	return nil
}

// DisableReminder turns the reminder off.
func (e *LogicalEvent) DisableReminder() {
	e.reminder = Reminder{}
	e.Touch()
}

// Validate re-checks the invariants the constructor enforces. The
// reconciler filters events failing validation before expansion.
func (e *LogicalEvent) Validate() error {
	if strings.TrimSpace(e.title) == "" {
		return ErrEmptyTitle
	}
	if !e.kind.IsValid() {
		return ErrInvalidKind
	}
	if e.nepaliDate.IsZero() || e.gregorianDate.IsZero() {
		return ErrMissingDate
	}
	if e.kind == KindBirthdayTithi && (e.tithiNumber < 1 || e.tithiNumber > 30) {
		return ErrInvalidTithi
	}
	return nil
}

// RehydrateLogicalEvent recreates an event from persisted state
// without re-deriving the immutable birth fields.
func RehydrateLogicalEvent(
	id uuid.UUID,
	title string,
	kind EventKind,
	nepali panchanga.NepaliDate,
	gregorian panchanga.GregorianDate,
	description string,
	reminder Reminder,
	tithiNumber int,
	birthDayOfYear int,
	createdAt, updatedAt time.Time,
) *LogicalEvent {
	return &LogicalEvent{
		BaseEntity:     sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		title:          title,
		kind:           kind,
		nepaliDate:     nepali,
		gregorianDate:  gregorian,
		description:    description,
		reminder:       reminder,
		tithiNumber:    tithiNumber,
		birthDayOfYear: birthDayOfYear,
	}
}
