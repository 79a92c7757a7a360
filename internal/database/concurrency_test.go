package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtside/internal/domain"
	"courtside/internal/models"
)

// Concurrent attempts on the same slot must produce exactly one CONFIRMED
// reservation. The write lock taken at transaction start serializes the
// check-then-insert sequence.
func TestConcurrentBookingSingleWinner(t *testing.T) {
	db := newFileTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()
	date := testDate()

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- tryBook(ctx, db, fmt.Sprintf("user-%d", n), date, 10*60)
		}(i)
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		if err == nil {
			won++
		} else {
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)

	free, err := db.CourtFree(ctx, 1, date, 10*60, 11*60)
	require.NoError(t, err)
	assert.False(t, free)
}

// Overlapping intervals with distinct starts miss the unique index on
// (court, date, start), so only the write lock taken at Begin keeps two of
// them from both passing the availability read.
func TestConcurrentBookingOverlappingStarts(t *testing.T) {
	db := newFileTestDB(t)
	seedTestCatalog(t, db)
	ctx := context.Background()
	date := testDate()

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	// Staggered hour-long slots: 10:00, 10:05, ... 10:35, all overlapping.
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- tryBook(ctx, db, fmt.Sprintf("user-%d", n), date, 10*60+5*n)
		}(i)
	}
	wg.Wait()
	close(results)

	var won int
	for err := range results {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, domain.ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, won)

	var confirmed int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE court_id = 1 AND date = ? AND status = ?`,
		date.Format(models.DateFormat), models.StatusConfirmed).Scan(&confirmed))
	assert.Equal(t, 1, confirmed)
}

func tryBook(ctx context.Context, db *DB, userID string, date time.Time, startMin int) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	free, err := tx.CourtFree(ctx, 1, date, startMin, startMin+60)
	if err != nil {
		return err
	}
	if !free {
		return domain.ErrSlotTaken
	}

	res := &models.Reservation{
		Reference: "ref-" + userID,
		UserID:    userID,
		CourtID:   1,
		Date:      date,
		StartMin:  startMin,
		EndMin:    startMin + 60,
		Status:    models.StatusConfirmed,
	}
	if err := tx.InsertReservation(ctx, res); err != nil {
		return err
	}
	return tx.Commit()
}
