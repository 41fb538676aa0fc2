package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func mustInterval(t *testing.T, start, end time.Time) TimeInterval {
	t.Helper()
	iv, err := NewTimeInterval(start, end)
	require.NoError(t, err)
	return iv
}

func TestNewTimeInterval_RejectsInvalid(t *testing.T) {
	at := datetime(2026, 9, 14, 10, 0)

	_, err := NewTimeInterval(at, at)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewTimeInterval(at, at.Add(-time.Minute))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewTimeInterval(at, at.Add(time.Minute))
	assert.NoError(t, err)
}

func TestTimeInterval_Overlaps(t *testing.T) {
	base := mustInterval(t, datetime(2026, 9, 14, 10, 0), datetime(2026, 9, 14, 11, 0))

	tests := []struct {
		name  string
		other TimeInterval
		want  bool
	}{
		{
			name:  "disjoint before",
			other: mustInterval(t, datetime(2026, 9, 14, 8, 0), datetime(2026, 9, 14, 9, 0)),
			want:  false,
		},
		{
			name:  "disjoint after",
			other: mustInterval(t, datetime(2026, 9, 14, 12, 0), datetime(2026, 9, 14, 13, 0)),
			want:  false,
		},
		{
			name:  "touching end is not an overlap",
			other: mustInterval(t, datetime(2026, 9, 14, 11, 0), datetime(2026, 9, 14, 12, 0)),
			want:  false,
		},
		{
			name:  "touching start is not an overlap",
			other: mustInterval(t, datetime(2026, 9, 14, 9, 0), datetime(2026, 9, 14, 10, 0)),
			want:  false,
		},
		{
			name:  "partial overlap at tail",
			other: mustInterval(t, datetime(2026, 9, 14, 10, 30), datetime(2026, 9, 14, 11, 30)),
			want:  true,
		},
		{
			name:  "partial overlap at head",
			other: mustInterval(t, datetime(2026, 9, 14, 9, 30), datetime(2026, 9, 14, 10, 30)),
			want:  true,
		},
		{
			name:  "contained",
			other: mustInterval(t, datetime(2026, 9, 14, 10, 15), datetime(2026, 9, 14, 10, 45)),
			want:  true,
		},
		{
			name:  "containing",
			other: mustInterval(t, datetime(2026, 9, 14, 9, 0), datetime(2026, 9, 14, 12, 0)),
			want:  true,
		},
		{
			name:  "identical",
			other: mustInterval(t, datetime(2026, 9, 14, 10, 0), datetime(2026, 9, 14, 11, 0)),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			// the predicate is symmetric
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestTimeInterval_Minutes(t *testing.T) {
	iv := mustInterval(t, datetime(2026, 9, 14, 10, 0), datetime(2026, 9, 14, 12, 30))
	assert.Equal(t, 150, iv.Minutes())
	assert.Equal(t, 2*time.Hour+30*time.Minute, iv.Duration())
}
