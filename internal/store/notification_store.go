package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/activity-sync/internal/model"
)

// ReplaceNotifications swaps the cached notification list for list,
// preserving its order and length. Entries without an ID get a generated
// one; duplicate IDs are stored as separate rows.
func (s *SQLiteStore) ReplaceNotifications(
	ctx context.Context,
	list []model.Notification,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		return fmt.Errorf("clearing notifications: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO notifications (id, position, title, message, recipient, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing notification insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range list {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		_, err := stmt.ExecContext(ctx,
			n.ID, i, n.Title, n.Message, n.Recipient, n.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("caching notification %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// GetNotifications returns the cached notification list in the order it
// was stored.
func (s *SQLiteStore) GetNotifications(ctx context.Context) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, title, message, recipient, created_at
		FROM notifications ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var list []model.Notification
	for rows.Next() {
		var (
			n         model.Notification
			createdAt time.Time
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.Recipient, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		n.CreatedAt = createdAt
		list = append(list, n)
	}

	return list, rows.Err()
}
