package model

import "time"

// Project is a project as exposed by the REST provider.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Archived    bool      `json:"archived"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// User is a member account as exposed by the REST provider.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// MetricSnapshot is the current value of a dashboard metric together with
// whatever history the server could supply. History may be empty.
type MetricSnapshot struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Value   float64   `json:"value"`
	History []float64 `json:"history,omitempty"`
}
