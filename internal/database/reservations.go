package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"courtside/internal/domain"
	"courtside/internal/models"
)

// CourtFree reports whether no CONFIRMED reservation on the court and date
// overlaps the half-open [startMin, endMin) interval. Back-to-back slots
// are compatible.
func (t *Tx) CourtFree(ctx context.Context, courtID int64, date time.Time, startMin, endMin int) (bool, error) {
	return courtFree(ctx, t.tx, courtID, date, startMin, endMin)
}

func (db *DB) CourtFree(ctx context.Context, courtID int64, date time.Time, startMin, endMin int) (bool, error) {
	var exists int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courts WHERE id = ?`, courtID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to resolve court %d: %w", courtID, err)
	}
	if exists == 0 {
		return false, domain.ErrResourceNotFound
	}
	return courtFree(ctx, db.DB, courtID, date, startMin, endMin)
}

func courtFree(ctx context.Context, q querier, courtID int64, date time.Time, startMin, endMin int) (bool, error) {
	query := `SELECT COUNT(*) FROM reservations
        WHERE court_id = ? AND date = ? AND status = ?
        AND start_min < ? AND end_min > ?`
	var count int
	err := q.QueryRowContext(ctx, query, courtID, date.Format(models.DateFormat),
		models.StatusConfirmed, endMin, startMin).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check court availability: %w", err)
	}
	return count == 0, nil
}

// CoachFree mirrors CourtFree for the coach dimension.
func (t *Tx) CoachFree(ctx context.Context, coachID int64, date time.Time, startMin, endMin int) (bool, error) {
	query := `SELECT COUNT(*) FROM reservations
        WHERE coach_id = ? AND date = ? AND status = ?
        AND start_min < ? AND end_min > ?`
	var count int
	err := t.tx.QueryRowContext(ctx, query, coachID, date.Format(models.DateFormat),
		models.StatusConfirmed, endMin, startMin).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check coach availability: %w", err)
	}
	return count == 0, nil
}

// EquipmentCommitted sums the quantities of one equipment item already
// claimed by CONFIRMED reservations overlapping the interval. Stock is
// never stored as a decrementing counter; it is derived here.
func (t *Tx) EquipmentCommitted(ctx context.Context, equipmentID int64, date time.Time, startMin, endMin int) (int, error) {
	query := `SELECT COALESCE(SUM(re.quantity), 0)
        FROM reservation_equipment re
        JOIN reservations r ON r.id = re.reservation_id
        WHERE re.equipment_id = ? AND r.date = ? AND r.status = ?
        AND r.start_min < ? AND r.end_min > ?`
	var committed int
	err := t.tx.QueryRowContext(ctx, query, equipmentID, date.Format(models.DateFormat),
		models.StatusConfirmed, endMin, startMin).Scan(&committed)
	if err != nil {
		return 0, fmt.Errorf("failed to sum committed equipment: %w", err)
	}
	return committed, nil
}

// GetEquipment resolves one equipment item inside the transaction. Absence
// is ErrResourceNotFound, never treated as zero stock.
func (t *Tx) GetEquipment(ctx context.Context, id int64) (*models.Equipment, error) {
	var e models.Equipment
	err := t.tx.QueryRowContext(ctx, `SELECT id, name, type, stock, price FROM equipment WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Type, &e.Stock, &e.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment %d: %w", id, err)
	}
	return &e, nil
}

// InsertReservation persists a reservation and its equipment lines. A
// unique-index violation on the (court, date, start) slot surfaces as
// ErrSlotTaken, the same error the overlap check raises.
func (t *Tx) InsertReservation(ctx context.Context, res *models.Reservation) error {
	now := time.Now()
	result, err := t.tx.ExecContext(ctx, `INSERT INTO reservations
        (reference, user_id, court_id, date, start_min, end_min, coach_id, total_price, status, created_at, updated_at, version)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Reference, res.UserID, res.CourtID, res.Date.Format(models.DateFormat),
		res.StartMin, res.EndMin, nullableID(res.CoachID), res.TotalPrice, res.Status, now, now, 1)
	if isConstraintErr(err) {
		return domain.ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	res.ID = id
	res.CreatedAt = now
	res.UpdatedAt = now
	res.Version = 1

	for _, line := range res.Equipment {
		_, err := t.tx.ExecContext(ctx,
			`INSERT INTO reservation_equipment (reservation_id, equipment_id, quantity) VALUES (?, ?, ?)`,
			id, line.EquipmentID, line.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert reservation equipment: %w", err)
		}
	}
	return nil
}

func (t *Tx) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	return getReservation(ctx, t.tx, id)
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	return getReservation(ctx, db.DB, id)
}

func getReservation(ctx context.Context, q querier, id int64) (*models.Reservation, error) {
	res, err := scanReservation(q.QueryRowContext(ctx, selectReservation+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation %d: %w", id, err)
	}
	if err := loadEquipmentLines(ctx, q, []*models.Reservation{res}); err != nil {
		return nil, err
	}
	return res, nil
}

// MarkReservationCancelled flips a CONFIRMED reservation to CANCELLED.
func (t *Tx) MarkReservationCancelled(ctx context.Context, id int64) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND status = ?`,
		models.StatusCancelled, time.Now(), id, models.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrAlreadyCancelled
	}
	return nil
}

// ListUserReservations returns all of one user's reservations, including
// cancelled history, newest slot first.
func (db *DB) ListUserReservations(ctx context.Context, userID string) ([]*models.Reservation, error) {
	rows, err := db.QueryContext(ctx, selectReservation+
		` WHERE user_id = ? ORDER BY date DESC, start_min DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user reservations: %w", err)
	}
	return collectReservations(ctx, db.DB, rows)
}

// ReservationsByDateRange returns every reservation whose date falls inside
// [start, end], ordered for reporting.
func (db *DB) ReservationsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	rows, err := db.QueryContext(ctx, selectReservation+
		` WHERE date >= ? AND date <= ? ORDER BY date, start_min, court_id`,
		start.Format(models.DateFormat), end.Format(models.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations by date range: %w", err)
	}
	return collectReservations(ctx, db.DB, rows)
}

const selectReservation = `SELECT id, reference, user_id, court_id, date, start_min, end_min,
        coach_id, total_price, status, created_at, updated_at, version FROM reservations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	res := &models.Reservation{}
	var dateStr string
	var coachID sql.NullInt64
	err := row.Scan(&res.ID, &res.Reference, &res.UserID, &res.CourtID, &dateStr,
		&res.StartMin, &res.EndMin, &coachID, &res.TotalPrice, &res.Status,
		&res.CreatedAt, &res.UpdatedAt, &res.Version)
	if err != nil {
		return nil, err
	}
	if coachID.Valid {
		res.CoachID = coachID.Int64
	}
	res.Date, err = time.Parse(models.DateFormat, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reservation date %s: %w", dateStr, err)
	}
	return res, nil
}

func collectReservations(ctx context.Context, q querier, rows *sql.Rows) ([]*models.Reservation, error) {
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := loadEquipmentLines(ctx, q, reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func loadEquipmentLines(ctx context.Context, q querier, reservations []*models.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Reservation, len(reservations))
	placeholders := make([]string, 0, len(reservations))
	args := make([]any, 0, len(reservations))
	for _, res := range reservations {
		byID[res.ID] = res
		placeholders = append(placeholders, "?")
		args = append(args, res.ID)
	}

	query := `SELECT reservation_id, equipment_id, quantity FROM reservation_equipment
        WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `) ORDER BY equipment_id`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to load equipment lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var resID int64
		var line models.EquipmentLine
		if err := rows.Scan(&resID, &line.EquipmentID, &line.Quantity); err != nil {
			return fmt.Errorf("failed to scan equipment line: %w", err)
		}
		if res, ok := byID[resID]; ok {
			res.Equipment = append(res.Equipment, line)
		}
	}
	return rows.Err()
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
