package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"washbay/internal/model"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type stubClosures struct {
	closed map[string]string
	err    error
}

func (s *stubClosures) ManualClosure(_ context.Context, d time.Time) (*model.ClosureRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	reason, ok := s.closed[d.Format("2006-01-02")]
	if !ok {
		return nil, nil
	}
	return &model.ClosureRecord{Date: d, Reason: reason, Kind: model.ClosureManual}, nil
}

func TestEasterSunday(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
	}{
		{2023, time.April, 9},
		{2024, time.March, 31},
		{2025, time.April, 20},
		{2026, time.April, 5},
		{2030, time.April, 21},
		{2038, time.April, 25}, // latest possible Easter
	}
	for _, tt := range tests {
		got := easterSunday(tt.year, time.UTC)
		assert.Equal(t, date(tt.year, tt.month, tt.day), got, "easter %d", tt.year)
	}
}

func TestDanishHolidays(t *testing.T) {
	holidays := DanishHolidays()

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"new year", date(2026, time.January, 1), "Nytårsdag"},
		{"maundy thursday 2026", date(2026, time.April, 2), "Skærtorsdag"},
		{"good friday 2026", date(2026, time.April, 3), "Langfredag"},
		{"easter sunday 2026", date(2026, time.April, 5), "Påskedag"},
		{"easter monday 2026", date(2026, time.April, 6), "Anden påskedag"},
		{"ascension 2026", date(2026, time.May, 14), "Kristi himmelfartsdag"},
		{"whit sunday 2026", date(2026, time.May, 24), "Pinsedag"},
		{"whit monday 2026", date(2026, time.May, 25), "Anden pinsedag"},
		{"christmas", date(2026, time.December, 25), "Juledag"},
		{"second christmas day", date(2026, time.December, 26), "Anden juledag"},
		{"store bededag last observed 2023", date(2023, time.May, 5), "Store bededag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := holidays(tt.date)
			require.True(t, ok)
			assert.Equal(t, tt.want, name)
		})
	}

	t.Run("store bededag abolished from 2024", func(t *testing.T) {
		// Easter 2024 is March 31; the former holiday slot is April 26.
		_, ok := holidays(date(2024, time.April, 26))
		assert.False(t, ok)
	})

	t.Run("ordinary weekday", func(t *testing.T) {
		_, ok := holidays(date(2026, time.September, 15))
		assert.False(t, ok)
	})
}

func TestPolicy_IsClosed(t *testing.T) {
	closures := &stubClosures{closed: map[string]string{
		"2026-09-16": "annual maintenance of the wash bay",
	}}
	policy := NewPolicy(DanishHolidays(), closures)
	ctx := context.Background()

	tests := []struct {
		name       string
		date       time.Time
		wantClosed bool
		wantReason string
	}{
		{"saturday", date(2026, time.September, 12), true, "closed on weekends"},
		{"sunday", date(2026, time.September, 13), true, "closed on weekends"},
		{"public holiday", date(2026, time.April, 3), true, "public holiday: Langfredag"},
		{"manual closure", date(2026, time.September, 16), true, "annual maintenance of the wash bay"},
		{"open weekday", date(2026, time.September, 15), false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closed, reason, err := policy.IsClosed(ctx, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClosed, closed)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestPolicy_IsClosed_ClosureStoreError(t *testing.T) {
	policy := NewPolicy(DanishHolidays(), &stubClosures{err: errors.New("db down")})
	_, _, err := policy.IsClosed(context.Background(), date(2026, time.September, 15))
	assert.Error(t, err)
}

func TestPolicy_NilClosureSource(t *testing.T) {
	policy := NewPolicy(DanishHolidays(), nil)
	closed, _, err := policy.IsClosed(context.Background(), date(2026, time.September, 15))
	require.NoError(t, err)
	assert.False(t, closed)
}
