package database

import (
	"context"
	"fmt"
	"time"

	"courtside/internal/domain"
	"courtside/internal/models"
)

// InsertNotification runs inside the cancellation transaction so the
// promotion notification and the status flip commit or roll back together.
func (t *Tx) InsertNotification(ctx context.Context, n *models.Notification) error {
	now := time.Now()
	result, err := t.tx.ExecContext(ctx,
		`INSERT INTO notifications (user_id, message, is_read, created_at) VALUES (?, ?, 0, ?)`,
		n.UserID, n.Message, now)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	n.CreatedAt = now
	return nil
}

func (db *DB) ListUserNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, user_id, message, is_read, created_at
        FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flips the read flag. Only the recipient may mutate
// it; anyone else sees not-found.
func (db *DB) MarkNotificationRead(ctx context.Context, id int64, userID string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
