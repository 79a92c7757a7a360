package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"courtside/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newFileTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "courtside.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedTestCatalog(t *testing.T, db *DB) {
	t.Helper()
	require.NoError(t, db.SeedCatalog(context.Background(),
		[]models.Court{
			{ID: 1, Name: "Center Court", Type: models.CourtIndoor, HourlyRate: 150},
			{ID: 2, Name: "Garden Court", Type: models.CourtOutdoor, HourlyRate: 100},
		},
		[]models.Equipment{
			{ID: 1, Name: "Racket", Type: "racket", Stock: 3, Price: 50},
		},
		[]models.Coach{
			{ID: 1, Name: "Alex Moreau", HourlyRate: 200},
		},
		[]models.PricingRule{
			{ID: 1, Name: "Peak evening", Kind: models.RulePeakHour, AdjustmentType: models.AdjustMultiplier,
				Value: 1.5, Conditions: models.RuleConditions{StartTime: "18:00", EndTime: "21:00"}, Active: true},
			{ID: 2, Name: "Weekend rate", Kind: models.RuleWeekend, AdjustmentType: models.AdjustMultiplier,
				Value: 1.2, Conditions: models.RuleConditions{Days: []int{0, 6}}, Active: true},
			{ID: 3, Name: "Retired promo", Kind: models.RuleWeekend, AdjustmentType: models.AdjustMultiplier,
				Value: 0.5, Conditions: models.RuleConditions{Days: []int{1}}, Active: false},
		},
	))
}

func testDate() time.Time {
	return time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
}

// insertReservation books a slot through the same transactional path the
// service uses.
func insertReservation(t *testing.T, db *DB, userID string, courtID int64, date time.Time, startMin, endMin int,
	coachID int64, equipment []models.EquipmentLine) *models.Reservation {
	t.Helper()
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	res := &models.Reservation{
		Reference: fmt.Sprintf("ref-%s-%d-%s-%s", userID, courtID, date.Format(models.DateFormat), models.FormatClock(startMin)),
		UserID:    userID,
		CourtID:   courtID,
		Date:      date,
		StartMin:  startMin,
		EndMin:    endMin,
		Equipment: equipment,
		CoachID:   coachID,
		Status:    models.StatusConfirmed,
	}
	require.NoError(t, tx.InsertReservation(ctx, res))
	require.NoError(t, tx.Commit())
	return res
}
