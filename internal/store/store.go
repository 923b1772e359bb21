package store

import (
	"context"

	"github.com/nhle/activity-sync/internal/model"
)

// Store defines the device-local persistence used by the sync layer: a small
// key-value table (home of the seen marker) and caches of the last fetched
// provider lists, so a restarted client can publish something before its
// first successful refresh.
type Store interface {
	// === Key-value ===

	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
	DeleteValue(ctx context.Context, key string) error

	// === Notification cache ===

	ReplaceNotifications(ctx context.Context, list []model.Notification) error
	GetNotifications(ctx context.Context) ([]model.Notification, error)

	// === Project cache ===

	ReplaceProjects(ctx context.Context, list []model.Project) error
	GetProjects(ctx context.Context, includeArchived bool) ([]model.Project, error)

	Close() error
}
