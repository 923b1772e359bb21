// Package provider fetches the authoritative project-management data the
// client re-syncs after a relevant push event.
package provider

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/activity-sync/internal/model"
)

// Provider is the read side of the REST API used by the syncer.
type Provider interface {
	Projects(ctx context.Context) ([]model.Project, error)
	Users(ctx context.Context) ([]model.User, error)
	Notifications(ctx context.Context, recipient string) ([]model.Notification, error)
	Metrics(ctx context.Context) ([]model.MetricSnapshot, error)
}

var _ Provider = (*Client)(nil)

// Projects returns all projects visible to the token.
func (c *Client) Projects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := c.get(ctx, "/api/projects", &projects); err != nil {
		return nil, fmt.Errorf("fetching projects: %w", err)
	}
	return projects, nil
}

// Users returns the member directory.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.get(ctx, "/api/users", &users); err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}
	return users, nil
}

// Notifications returns the notification list addressed to recipient.
// An empty recipient asks for the token owner's list.
func (c *Client) Notifications(
	ctx context.Context,
	recipient string,
) ([]model.Notification, error) {
	path := "/api/notifications"
	if recipient != "" {
		path += "?recipient=" + url.QueryEscape(recipient)
	}

	var list []model.Notification
	if err := c.get(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	return list, nil
}

// Metrics returns the dashboard metric snapshots.
func (c *Client) Metrics(ctx context.Context) ([]model.MetricSnapshot, error) {
	var metrics []model.MetricSnapshot
	if err := c.get(ctx, "/api/metrics", &metrics); err != nil {
		return nil, fmt.Errorf("fetching metrics: %w", err)
	}
	return metrics, nil
}
