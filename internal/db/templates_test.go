package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"washbay/internal/model"
)

func sampleTemplate() *model.Template {
	return &model.Template{
		CustomerID:      42,
		CustomerName:    "Nordjysk Transport A/S",
		Active:          true,
		Frequency:       model.FrequencyWeekly,
		DayOfWeek:       time.Wednesday,
		TimeOfDay:       model.TimeOfDay{Hour: 9},
		HorizonDays:     28,
		DiscountPercent: 10,
		Vehicles: []model.VehicleLine{
			{
				VehicleID:    1,
				Registration: "AB 12 345",
				Services: []model.ServiceLine{
					{ServiceID: 1, Name: "Exterior wash", DurationMinutes: 45, UnitPrice: 300, Quantity: 1},
					{ServiceID: 2, Name: "Interior detail", DurationMinutes: 45, UnitPrice: 500, Quantity: 1},
				},
			},
			{
				VehicleID:    2,
				Registration: "CD 67 890",
				Services: []model.ServiceLine{
					{ServiceID: 1, Name: "Exterior wash", DurationMinutes: 45, UnitPrice: 300, Quantity: 1},
				},
			},
		},
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	tpl := sampleTemplate()
	require.NoError(t, database.CreateTemplate(ctx, tpl))
	require.NotZero(t, tpl.ID)

	loaded, err := database.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)

	assert.Equal(t, tpl.CustomerID, loaded.CustomerID)
	assert.True(t, loaded.Active)
	assert.Equal(t, model.FrequencyWeekly, loaded.Frequency)
	assert.Equal(t, time.Wednesday, loaded.DayOfWeek)
	assert.Equal(t, "09:00", loaded.TimeOfDay.String())
	assert.Equal(t, 10.0, loaded.DiscountPercent)
	assert.Nil(t, loaded.LastGeneratedAt)

	require.Len(t, loaded.Vehicles, 2)
	assert.Len(t, loaded.Vehicles[0].Services, 2)
	assert.Len(t, loaded.Vehicles[1].Services, 1)
	assert.Equal(t, 135, loaded.TotalDurationMinutes())
}

func TestGetTemplate_NotFound(t *testing.T) {
	database := newTestDB(t)
	_, err := database.GetTemplate(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateLastGenerated(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	tpl := sampleTemplate()
	require.NoError(t, database.CreateTemplate(ctx, tpl))

	mark := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, database.UpdateLastGenerated(ctx, tpl.ID, mark))

	loaded, err := database.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.LastGeneratedAt)
	assert.Equal(t, mark, loaded.LastGeneratedAt.UTC())

	assert.ErrorIs(t, database.UpdateLastGenerated(ctx, 999, mark), ErrNotFound)
}
