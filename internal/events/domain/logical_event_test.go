package domain

import (
	"testing"

	"github.com/google/uuid"
	panchanga "github.com/patrolabs/patro/internal/panchanga/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNepali    = panchanga.NewNepaliDate(2048, 3, 12)
	testGregorian = panchanga.NewGregorianDate(1991, 6, 26)
)

func TestNewLogicalEvent(t *testing.T) {
	event, err := NewLogicalEvent("Dashain", KindFestival, testNepali, testGregorian)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID())
	assert.Equal(t, "Dashain", event.Title())
	assert.Equal(t, KindFestival, event.Kind())
	assert.Equal(t, testNepali, event.NepaliDate())
	assert.Equal(t, testGregorian, event.GregorianDate())
	assert.Zero(t, event.TithiNumber())
	assert.False(t, event.Reminder().Enabled)
	assert.NoError(t, event.Validate())
}

func TestNewLogicalEvent_TithiBirthdayDerivesBirthFields(t *testing.T) {
	event, err := NewLogicalEvent("Aama's birthday", KindBirthdayTithi, testNepali, testGregorian)

	require.NoError(t, err)
	assert.Equal(t, panchanga.CalculateTithi(testGregorian).Number, event.TithiNumber())
	assert.Equal(t, testGregorian.DayOfYear(), event.BirthDayOfYear())
}

func TestNewLogicalEvent_Validation(t *testing.T) {
	tests := []struct {
		name      string
		title     string
		kind      EventKind
		nepali    panchanga.NepaliDate
		gregorian panchanga.GregorianDate
		wantErr   error
	}{
		{"empty title", "", KindCustom, testNepali, testGregorian, ErrEmptyTitle},
		{"blank title", "   ", KindCustom, testNepali, testGregorian, ErrEmptyTitle},
		{"bad kind", "x", EventKind("holiday"), testNepali, testGregorian, ErrInvalidKind},
		{"zero nepali date", "x", KindCustom, panchanga.NepaliDate{}, testGregorian, ErrMissingDate},
		{"zero gregorian date", "x", KindCustom, testNepali, panchanga.GregorianDate{}, ErrMissingDate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLogicalEvent(tc.title, tc.kind, tc.nepali, tc.gregorian)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLogicalEvent_Reminder(t *testing.T) {
	event, err := NewLogicalEvent("Tihar", KindFestival, testNepali, testGregorian)
	require.NoError(t, err)

	assert.ErrorIs(t, event.EnableReminder(0), ErrInvalidReminder)
	assert.ErrorIs(t, event.EnableReminder(-30), ErrInvalidReminder)

	require.NoError(t, event.EnableReminder(60))
	assert.Equal(t, Reminder{Enabled: true, MinutesBefore: 60}, event.Reminder())

	event.DisableReminder()
	assert.False(t, event.Reminder().Enabled)
}

func TestRehydrateLogicalEvent(t *testing.T) {
	original, err := NewLogicalEvent("Buwa's birthday", KindBirthdayTithi, testNepali, testGregorian)
	require.NoError(t, err)

	rehydrated := RehydrateLogicalEvent(
		original.ID(),
		original.Title(),
		original.Kind(),
		original.NepaliDate(),
		original.GregorianDate(),
		original.Description(),
		original.Reminder(),
		original.TithiNumber(),
		original.BirthDayOfYear(),
		original.CreatedAt(),
		original.UpdatedAt(),
	)

	assert.Equal(t, original.ID(), rehydrated.ID())
	assert.Equal(t, original.TithiNumber(), rehydrated.TithiNumber())
	assert.Equal(t, original.BirthDayOfYear(), rehydrated.BirthDayOfYear())
	assert.NoError(t, rehydrated.Validate())
}
