package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/activity-sync/internal/model"
)

// ReplaceProjects swaps the cached project list for list, preserving its
// order.
func (s *SQLiteStore) ReplaceProjects(ctx context.Context, list []model.Project) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM projects"); err != nil {
		return fmt.Errorf("clearing projects: %w", err)
	}

	for i, p := range list {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO projects (id, position, name, description, archived, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, i, p.Name, p.Description, boolToInt(p.Archived), p.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("caching project %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// GetProjects returns the cached projects, optionally including archived
// ones.
func (s *SQLiteStore) GetProjects(
	ctx context.Context,
	includeArchived bool,
) ([]model.Project, error) {
	query := "SELECT id, name, description, archived, updated_at FROM projects"
	if !includeArchived {
		query += " WHERE archived = 0"
	}
	query += " ORDER BY position"

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var (
			p         model.Project
			archived  int
			updatedAt time.Time
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &archived, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		p.Archived = archived != 0
		p.UpdatedAt = updatedAt
		projects = append(projects, p)
	}

	return projects, rows.Err()
}
