package models

import "time"

// RateLimitState is the fixed-window counter kept per user.
type RateLimitState struct {
	UserID    string    `json:"user_id"`
	Limit     int       `json:"limit"`
	Current   int       `json:"current"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

// Recompute derives Remaining from Limit and Current, never below zero.
func (s *RateLimitState) Recompute() {
	s.Remaining = s.Limit - s.Current
	if s.Remaining < 0 {
		s.Remaining = 0
	}
}

// Expired reports whether now is past the reset time.
func (s *RateLimitState) Expired(now time.Time) bool {
	return now.After(s.ResetTime)
}
