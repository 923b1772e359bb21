package model

import (
	"sort"
	"time"
)

// Notification is a server-side notification as returned by the REST
// provider's notification list.
type Notification struct {
	// ID is the server-assigned identifier. It doubles as the event id
	// used by the freshness window.
	ID string `json:"id" db:"id"`

	// Title is the event type label (e.g., "Activity join").
	Title string `json:"title" db:"title"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Recipient is the identity the notification was addressed to, when the
	// server includes it.
	Recipient string `json:"recipient,omitempty" db:"recipient"`

	// CreatedAt is when the server generated this notification.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LatestNotification returns the most recently created notification.
// Ties keep the earlier list position. The second return value is false
// when the list is empty.
func LatestNotification(list []Notification) (Notification, bool) {
	if len(list) == 0 {
		return Notification{}, false
	}

	sorted := make([]Notification, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	return sorted[0], true
}
