package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// QueryLog is one processed query: what was asked, how the pipeline
// understood it, and what was answered. Failed resolutions are logged too,
// with Success false and the error message.
type QueryLog struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Query      string    `json:"query"`
	UserID     string    `json:"user_id,omitempty"`
	ProfileID  string    `json:"profile_id,omitempty"`
	Category   string    `json:"category,omitempty"`
	Refinement string    `json:"refinement,omitempty"`
	Response   string    `json:"response,omitempty"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}
