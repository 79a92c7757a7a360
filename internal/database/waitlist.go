package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"courtside/internal/domain"
	"courtside/internal/models"
)

// JoinWaitlist records a standing request for an occupied slot. One entry
// per user per (court, date, start) slot; a duplicate surfaces as
// ErrAlreadyOnWaitlist.
func (db *DB) JoinWaitlist(ctx context.Context, entry *models.WaitlistEntry) error {
	now := time.Now()
	result, err := db.ExecContext(ctx, `INSERT INTO waitlist
        (user_id, court_id, date, start_min, end_min, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.CourtID, entry.Date.Format(models.DateFormat),
		entry.StartMin, entry.EndMin, now)
	if isConstraintErr(err) {
		return domain.ErrAlreadyOnWaitlist
	}
	if err != nil {
		return fmt.Errorf("failed to join waitlist: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	entry.CreatedAt = now
	return nil
}

func (db *DB) ListUserWaitlist(ctx context.Context, userID string) ([]*models.WaitlistEntry, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, user_id, court_id, date, start_min, end_min, created_at
        FROM waitlist WHERE user_id = ? ORDER BY date, start_min`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user waitlist: %w", err)
	}
	defer rows.Close()

	var entries []*models.WaitlistEntry
	for rows.Next() {
		entry, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// OldestWaitlistEntry returns the FIFO head for a slot, or nil when nobody
// is waiting. The (court, date, start, created_at) index keeps this a
// range scan rather than a sort.
func (t *Tx) OldestWaitlistEntry(ctx context.Context, courtID int64, date time.Time, startMin int) (*models.WaitlistEntry, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT id, user_id, court_id, date, start_min, end_min, created_at
        FROM waitlist WHERE court_id = ? AND date = ? AND start_min = ?
        ORDER BY created_at, id LIMIT 1`,
		courtID, date.Format(models.DateFormat), startMin)

	entry, err := scanWaitlistEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (t *Tx) DeleteWaitlistEntry(ctx context.Context, id int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM waitlist WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete waitlist entry %d: %w", id, err)
	}
	return nil
}

func scanWaitlistEntry(row rowScanner) (*models.WaitlistEntry, error) {
	entry := &models.WaitlistEntry{}
	var dateStr string
	err := row.Scan(&entry.ID, &entry.UserID, &entry.CourtID, &dateStr,
		&entry.StartMin, &entry.EndMin, &entry.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan waitlist entry: %w", err)
	}
	entry.Date, err = time.Parse(models.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse waitlist date %s: %w", dateStr, err)
	}
	return entry, nil
}
