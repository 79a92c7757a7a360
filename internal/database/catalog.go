package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"courtside/internal/domain"
	"courtside/internal/models"
)

// SeedCatalog upserts catalog entities from the catalog file. Existing rows
// are updated in place so a restart picks up rate or stock changes without
// touching reservation history.
func (db *DB) SeedCatalog(ctx context.Context, courts []models.Court, equipment []models.Equipment, coaches []models.Coach, rules []models.PricingRule) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, c := range courts {
		_, err := tx.ExecContext(ctx, `INSERT INTO courts (id, name, type, hourly_rate) VALUES (?, ?, ?, ?)
            ON CONFLICT(id) DO UPDATE SET name = excluded.name, type = excluded.type, hourly_rate = excluded.hourly_rate`,
			c.ID, c.Name, c.Type, c.HourlyRate)
		if err != nil {
			return fmt.Errorf("failed to seed court %d: %w", c.ID, err)
		}
	}
	for _, e := range equipment {
		_, err := tx.ExecContext(ctx, `INSERT INTO equipment (id, name, type, stock, price) VALUES (?, ?, ?, ?, ?)
            ON CONFLICT(id) DO UPDATE SET name = excluded.name, type = excluded.type, stock = excluded.stock, price = excluded.price`,
			e.ID, e.Name, e.Type, e.Stock, e.Price)
		if err != nil {
			return fmt.Errorf("failed to seed equipment %d: %w", e.ID, err)
		}
	}
	for _, c := range coaches {
		_, err := tx.ExecContext(ctx, `INSERT INTO coaches (id, name, hourly_rate) VALUES (?, ?, ?)
            ON CONFLICT(id) DO UPDATE SET name = excluded.name, hourly_rate = excluded.hourly_rate`,
			c.ID, c.Name, c.HourlyRate)
		if err != nil {
			return fmt.Errorf("failed to seed coach %d: %w", c.ID, err)
		}
	}
	for _, r := range rules {
		_, err := tx.ExecContext(ctx, `INSERT INTO pricing_rules (id, name, kind, adjustment_type, value, start_time, end_time, days, court_type, active)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(id) DO UPDATE SET name = excluded.name, kind = excluded.kind,
                adjustment_type = excluded.adjustment_type, value = excluded.value,
                start_time = excluded.start_time, end_time = excluded.end_time,
                days = excluded.days, court_type = excluded.court_type, active = excluded.active`,
			r.ID, r.Name, r.Kind, r.AdjustmentType, r.Value,
			r.Conditions.StartTime, r.Conditions.EndTime, joinDays(r.Conditions.Days), r.Conditions.CourtType, r.Active)
		if err != nil {
			return fmt.Errorf("failed to seed pricing rule %d: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

func (db *DB) GetCourt(ctx context.Context, id int64) (*models.Court, error) {
	return getCourt(ctx, db.DB, id)
}

func (t *Tx) GetCourt(ctx context.Context, id int64) (*models.Court, error) {
	return getCourt(ctx, t.tx, id)
}

func getCourt(ctx context.Context, q querier, id int64) (*models.Court, error) {
	var c models.Court
	err := q.QueryRowContext(ctx, `SELECT id, name, type, hourly_rate FROM courts WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Type, &c.HourlyRate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get court %d: %w", id, err)
	}
	return &c, nil
}

func (db *DB) ListCourts(ctx context.Context) ([]models.Court, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, type, hourly_rate FROM courts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}
	defer rows.Close()

	var courts []models.Court
	for rows.Next() {
		var c models.Court
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.HourlyRate); err != nil {
			return nil, fmt.Errorf("failed to scan court: %w", err)
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

func (db *DB) ListEquipment(ctx context.Context) ([]models.Equipment, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, type, stock, price FROM equipment ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer rows.Close()

	var equipment []models.Equipment
	for rows.Next() {
		var e models.Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.Stock, &e.Price); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		equipment = append(equipment, e)
	}
	return equipment, rows.Err()
}

func (db *DB) ListCoaches(ctx context.Context) ([]models.Coach, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, hourly_rate FROM coaches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list coaches: %w", err)
	}
	defer rows.Close()

	var coaches []models.Coach
	for rows.Next() {
		var c models.Coach
		if err := rows.Scan(&c.ID, &c.Name, &c.HourlyRate); err != nil {
			return nil, fmt.Errorf("failed to scan coach: %w", err)
		}
		coaches = append(coaches, c)
	}
	return coaches, rows.Err()
}

// PricingCatalog loads the full catalog snapshot used by one price
// calculation.
func (db *DB) PricingCatalog(ctx context.Context) (models.Catalog, error) {
	return pricingCatalog(ctx, db.DB)
}

func (t *Tx) PricingCatalog(ctx context.Context) (models.Catalog, error) {
	return pricingCatalog(ctx, t.tx)
}

func pricingCatalog(ctx context.Context, q querier) (models.Catalog, error) {
	cat := models.Catalog{
		Courts:    make(map[int64]models.Court),
		Equipment: make(map[int64]models.Equipment),
		Coaches:   make(map[int64]models.Coach),
	}

	rows, err := q.QueryContext(ctx, `SELECT id, name, type, hourly_rate FROM courts`)
	if err != nil {
		return cat, fmt.Errorf("failed to load courts: %w", err)
	}
	for rows.Next() {
		var c models.Court
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.HourlyRate); err != nil {
			rows.Close()
			return cat, fmt.Errorf("failed to scan court: %w", err)
		}
		cat.Courts[c.ID] = c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return cat, err
	}

	rows, err = q.QueryContext(ctx, `SELECT id, name, type, stock, price FROM equipment`)
	if err != nil {
		return cat, fmt.Errorf("failed to load equipment: %w", err)
	}
	for rows.Next() {
		var e models.Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &e.Stock, &e.Price); err != nil {
			rows.Close()
			return cat, fmt.Errorf("failed to scan equipment: %w", err)
		}
		cat.Equipment[e.ID] = e
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return cat, err
	}

	rows, err = q.QueryContext(ctx, `SELECT id, name, hourly_rate FROM coaches`)
	if err != nil {
		return cat, fmt.Errorf("failed to load coaches: %w", err)
	}
	for rows.Next() {
		var c models.Coach
		if err := rows.Scan(&c.ID, &c.Name, &c.HourlyRate); err != nil {
			rows.Close()
			return cat, fmt.Errorf("failed to scan coach: %w", err)
		}
		cat.Coaches[c.ID] = c
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return cat, err
	}

	rows, err = q.QueryContext(ctx, `SELECT id, name, kind, adjustment_type, value, start_time, end_time, days, court_type, active
        FROM pricing_rules WHERE active = 1 ORDER BY id`)
	if err != nil {
		return cat, fmt.Errorf("failed to load pricing rules: %w", err)
	}
	for rows.Next() {
		var r models.PricingRule
		var days string
		if err := rows.Scan(&r.ID, &r.Name, &r.Kind, &r.AdjustmentType, &r.Value,
			&r.Conditions.StartTime, &r.Conditions.EndTime, &days, &r.Conditions.CourtType, &r.Active); err != nil {
			rows.Close()
			return cat, fmt.Errorf("failed to scan pricing rule: %w", err)
		}
		r.Conditions.Days = splitDays(days)
		cat.Rules = append(cat.Rules, r)
	}
	rows.Close()
	return cat, rows.Err()
}

func joinDays(days []int) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

func splitDays(s string) []int {
	if s == "" {
		return nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		if d, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			days = append(days, d)
		}
	}
	return days
}
