package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtside/internal/domain"
	"courtside/internal/models"
)

func TestCourtFree(t *testing.T) {
	db := newTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()
	date := testDate()

	insertReservation(t, db, "user-1", 1, date, 10*60, 11*60, 0, nil)

	cases := []struct {
		name     string
		courtID  int64
		startMin int
		endMin   int
		free     bool
	}{
		{"ExactOverlap", 1, 10 * 60, 11 * 60, false},
		{"PartialOverlapLate", 1, 10*60 + 30, 11*60 + 30, false},
		{"PartialOverlapEarly", 1, 9*60 + 30, 10*60 + 30, false},
		{"Containing", 1, 9 * 60, 12 * 60, false},
		{"BackToBackAfter", 1, 11 * 60, 12 * 60, true},
		{"BackToBackBefore", 1, 9 * 60, 10 * 60, true},
		{"OtherCourt", 2, 10 * 60, 11 * 60, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			free, err := db.CourtFree(ctx, tc.courtID, date, tc.startMin, tc.endMin)
			require.NoError(t, err)
			assert.Equal(t, tc.free, free)
		})
	}

	t.Run("OtherDate", func(t *testing.T) {
		free, err := db.CourtFree(ctx, 1, date.AddDate(0, 0, 1), 10*60, 11*60)
		require.NoError(t, err)
		assert.True(t, free)
	})

	t.Run("UnknownCourt", func(t *testing.T) {
		_, err := db.CourtFree(ctx, 99, date, 10*60, 11*60)
		assert.ErrorIs(t, err, domain.ErrResourceNotFound)
	})
}

func TestCourtFreeIgnoresCancelled(t *testing.T) {
	db := newTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()
	date := testDate()

	res := insertReservation(t, db, "user-1", 1, date, 10*60, 11*60, 0, nil)

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.MarkReservationCancelled(ctx, res.ID))
	require.NoError(t, tx.Commit())

	free, err := db.CourtFree(ctx, 1, date, 10*60, 11*60)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestCoachFree(t *testing.T) {
	db := newTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()
	date := testDate()

	insertReservation(t, db, "user-1", 1, date, 10*60, 11*60, 1, nil)

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	free, err := tx.CoachFree(ctx, 1, date, 10*60+30, 11*60+30)
	require.NoError(t, err)
	assert.False(t, free)

	free, err = tx.CoachFree(ctx, 1, date, 11*60, 12*60)
	require.NoError(t, err)
	assert.True(t, free)
}

func TestEquipmentCommitted(t *testing.T) {
	db := newTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()
	date := testDate()

	insertReservation(t, db, "user-1", 1, date, 10*60, 11*60, 0,
		[]models.EquipmentLine{{EquipmentID: 1, Quantity: 2}})
	insertReservation(t, db, "user-2", 2, date, 10*60+30, 11*60+30, 0,
		[]models.EquipmentLine{{EquipmentID: 1, Quantity: 1}})

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	// Both reservations overlap 10:30-11:00
	committed, err := tx.EquipmentCommitted(ctx, 1, date, 10*60+30, 11*60)
	require.NoError(t, err)
	assert.Equal(t, 3, committed)

	// Only the second one overlaps 11:00-11:30
	committed, err = tx.EquipmentCommitted(ctx, 1, date, 11*60, 11*60+30)
	require.NoError(t, err)
	assert.Equal(t, 1, committed)

	// Nothing overlaps the evening
	committed, err = tx.EquipmentCommitted(ctx, 1, date, 18*60, 19*60)
	require.NoError(t, err)
	assert.Equal(t, 0, committed)
}

func TestGetEquipmentUnknown(t *testing.T) {
	db := newTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = tx.GetEquipment(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestInsertReservationSlotBackstop(t *testing.T) {
	db := newTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()
	date := testDate()

	insertReservation(t, db, "user-1", 1, date, 10*60, 11*60, 0, nil)

	// Exact same (court, date, start) hits the partial unique index
	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	err = tx.InsertReservation(ctx, &models.Reservation{
		Reference: "dup", UserID: "user-2", CourtID: 1, Date: date,
		StartMin: 10 * 60, EndMin: 12 * 60, Status: models.StatusConfirmed,
	})
	assert.ErrorIs(t, err, domain.ErrSlotTaken)
}

func TestGetReservation(t *testing.T) {
	db := newTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()
	date := testDate()

	created := insertReservation(t, db, "user-1", 1, date, 10*60, 11*60, 1,
		[]models.EquipmentLine{{EquipmentID: 1, Quantity: 2}})

	got, err := db.GetReservation(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Reference, got.Reference)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, int64(1), got.CoachID)
	assert.Equal(t, date.Format(models.DateFormat), got.Date.Format(models.DateFormat))
	require.Len(t, got.Equipment, 1)
	assert.Equal(t, 2, got.Equipment[0].Quantity)
	assert.Equal(t, int64(1), got.Version)

	_, err = db.GetReservation(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestMarkReservationCancelled(t *testing.T) {
	db := newTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()

	res := insertReservation(t, db, "user-1", 1, testDate(), 10*60, 11*60, 0, nil)

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.MarkReservationCancelled(ctx, res.ID))
	require.NoError(t, tx.Commit())

	got, err := db.GetReservation(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, int64(2), got.Version)

	// Already cancelled
	tx, err = db.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()
	err = tx.MarkReservationCancelled(ctx, res.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
}

func TestListUserReservations(t *testing.T) {
	db := newTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()
	date := testDate()

	insertReservation(t, db, "user-1", 1, date, 10*60, 11*60, 0, nil)
	insertReservation(t, db, "user-1", 1, date.AddDate(0, 0, 1), 9*60, 10*60, 0, nil)
	insertReservation(t, db, "user-1", 2, date, 14*60, 15*60, 0, nil)
	insertReservation(t, db, "user-2", 2, date, 10*60, 11*60, 0, nil)

	list, err := db.ListUserReservations(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	// Newest date first, later start first within a date
	assert.Equal(t, 9*60, list[0].StartMin)
	assert.Equal(t, 14*60, list[1].StartMin)
	assert.Equal(t, 10*60, list[2].StartMin)

	list, err = db.ListUserReservations(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReservationsByDateRange(t *testing.T) {
	db := newTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()
	date := testDate()

	insertReservation(t, db, "user-1", 1, date, 10*60, 11*60, 0, nil)
	insertReservation(t, db, "user-2", 2, date.AddDate(0, 0, 2), 10*60, 11*60, 0, nil)

	all, err := db.ReservationsByDateRange(ctx, date, date.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	first, err := db.ReservationsByDateRange(ctx, date, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "user-1", first[0].UserID)
}
