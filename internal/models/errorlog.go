package models

import "time"

// ErrorLogEntry records one caught failure.
type ErrorLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Stack     string    `json:"stack,omitempty"`
	Operation string    `json:"operation"`
	Code      string    `json:"code,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
}
