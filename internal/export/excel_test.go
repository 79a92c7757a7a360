package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtside/internal/models"
)

func TestReservationsWorkbook(t *testing.T) {
	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	reservations := []*models.Reservation{
		{
			ID: 1, Reference: "ref-1", UserID: "user-1", CourtID: 2,
			Date: date, StartMin: 10 * 60, EndMin: 11 * 60,
			Equipment:  []models.EquipmentLine{{EquipmentID: 1, Quantity: 2}},
			CoachID:    3,
			TotalPrice: 450, Status: models.StatusConfirmed,
		},
		{
			ID: 2, Reference: "ref-2", UserID: "user-2", CourtID: 1,
			Date: date, StartMin: 18 * 60, EndMin: 19 * 60,
			TotalPrice: 225, Status: models.StatusCancelled,
		},
	}

	f, err := ReservationsWorkbook(reservations)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Reference", got)

	got, err = f.GetCellValue(sheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "ref-1", got)

	got, err = f.GetCellValue(sheetName, "E2")
	require.NoError(t, err)
	assert.Equal(t, "10:00", got)

	got, err = f.GetCellValue(sheetName, "H2")
	require.NoError(t, err)
	assert.Equal(t, "1x2", got)

	got, err = f.GetCellValue(sheetName, "J3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got)

	// Coach column empty when no coach booked
	got, err = f.GetCellValue(sheetName, "G3")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestReservationsWorkbookEmpty(t *testing.T) {
	f, err := ReservationsWorkbook(nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
