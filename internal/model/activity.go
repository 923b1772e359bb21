package model

import "time"

// Activity is a scheduled activity within a project. EndAt is expected to
// be after StartAt; nothing in this package enforces it.
type Activity struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}
