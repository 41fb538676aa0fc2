package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"washbay/internal/model"
)

func interval(t *testing.T, start, end time.Time) model.TimeInterval {
	t.Helper()
	iv, err := model.NewTimeInterval(start, end)
	require.NoError(t, err)
	return iv
}

func TestActiveForDate_FiltersStatusAndDay(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	at := func(day, hour int) time.Time {
		return time.Date(2026, 9, day, hour, 0, 0, 0, time.UTC)
	}

	_, err := database.InsertReservation(ctx, 1, interval(t, at(15, 10), at(15, 11)), model.StatusConfirmed)
	require.NoError(t, err)
	_, err = database.InsertReservation(ctx, 2, interval(t, at(15, 12), at(15, 13)), model.StatusCancelled)
	require.NoError(t, err)
	_, err = database.InsertReservation(ctx, 3, interval(t, at(16, 10), at(16, 11)), model.StatusPending)
	require.NoError(t, err)

	active, err := database.ActiveForDate(ctx, at(15, 0))
	require.NoError(t, err)
	require.Len(t, active, 1, "cancelled bookings and other days do not block")
	assert.Equal(t, int64(1), active[0].CustomerID)
	assert.Equal(t, at(15, 10), active[0].Interval.Start)
	assert.Equal(t, at(15, 11), active[0].Interval.End)
}

func TestActiveForCustomer(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	since := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	upcoming := since.AddDate(0, 0, 7)
	past := since.AddDate(0, 0, -7)

	_, err := database.InsertReservation(ctx, 42, interval(t, upcoming, upcoming.Add(time.Hour)), model.StatusPending)
	require.NoError(t, err)
	_, err = database.InsertReservation(ctx, 42, interval(t, upcoming.Add(2*time.Hour), upcoming.Add(3*time.Hour)), model.StatusNoShow)
	require.NoError(t, err)
	_, err = database.InsertReservation(ctx, 42, interval(t, past, past.Add(time.Hour)), model.StatusConfirmed)
	require.NoError(t, err)
	_, err = database.InsertReservation(ctx, 7, interval(t, upcoming, upcoming.Add(time.Hour)), model.StatusConfirmed)
	require.NoError(t, err)

	active, err := database.ActiveForCustomer(ctx, 42, since)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(42), active[0].CustomerID)
	assert.Equal(t, upcoming, active[0].Interval.Start)
}

func TestCreateReservation_PersistsLines(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)

	res := &model.GeneratedReservation{
		ID:         "run-1-candidate-1",
		TemplateID: 1,
		CustomerID: 42,
		Date:       start.Truncate(24 * time.Hour),
		Interval:   interval(t, start, start.Add(90*time.Minute)),
		VehicleLines: []model.VehicleLine{
			{
				Registration: "AB 12 345",
				Services: []model.ServiceLine{
					{Name: "Exterior wash", DurationMinutes: 45, UnitPrice: 300, Quantity: 1},
					{Name: "Interior detail", DurationMinutes: 45, UnitPrice: 500, Quantity: 1},
				},
			},
		},
		TotalDuration: 90,
		TotalPrice:    720,
	}
	require.NoError(t, database.CreateReservation(ctx, res))

	active, err := database.ActiveForDate(ctx, start)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, start, active[0].Interval.Start)

	var lines int
	err = database.QueryRowContext(ctx, "SELECT COUNT(*) FROM reservation_lines").Scan(&lines)
	require.NoError(t, err)
	assert.Equal(t, 2, lines)
}

func TestCreateReservation_RejectsOverlap(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	start := time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)

	_, err := database.InsertReservation(ctx, 7, interval(t, start, start.Add(time.Hour)), model.StatusConfirmed)
	require.NoError(t, err)

	res := &model.GeneratedReservation{
		ID:         "run-2-candidate-1",
		CustomerID: 42,
		Date:       start,
		Interval:   interval(t, start.Add(30*time.Minute), start.Add(90*time.Minute)),
	}
	err = database.CreateReservation(ctx, res)
	assert.ErrorIs(t, err, ErrTimeConflict)

	// touching intervals commit fine
	res.Interval = interval(t, start.Add(time.Hour), start.Add(2*time.Hour))
	assert.NoError(t, database.CreateReservation(ctx, res))
}
