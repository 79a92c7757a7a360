package service

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogServiceResources(t *testing.T) {
	_, db := newTestService(t)
	logger := zerolog.New(io.Discard)
	svc := NewCatalogService(db, &logger)

	res, err := svc.Resources(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Courts, 2)
	assert.Len(t, res.Equipment, 1)
	assert.Len(t, res.Coaches, 1)
	assert.Equal(t, "Center Court", res.Courts[0].Name)
}

func TestCatalogServiceReservationsByDateRange(t *testing.T) {
	booking, db := newTestService(t)
	logger := zerolog.New(io.Discard)
	svc := NewCatalogService(db, &logger)
	ctx := context.Background()

	date := futureDate()
	_, err := booking.CreateReservation(ctx, "user-1", slot(1, date, "10:00", "11:00"))
	require.NoError(t, err)
	_, err = booking.CreateReservation(ctx, "user-2", slot(2, date.AddDate(0, 0, 1), "10:00", "11:00"))
	require.NoError(t, err)

	all, err := svc.ReservationsByDateRange(ctx, date, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := svc.ReservationsByDateRange(ctx, date, date)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "user-1", one[0].UserID)

	none, err := svc.ReservationsByDateRange(ctx, date.AddDate(0, 0, 5), date.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Empty(t, none)
}
