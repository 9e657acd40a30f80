// Package ratelimit implements the per-user fixed-window limiter.
package ratelimit

import (
	"context"
	"time"

	"draftdesk/internal/models"
	"draftdesk/internal/observability"
	"draftdesk/internal/repository"
)

// Defaults used when the limiter is built with non-positive values.
const (
	DefaultLimit  = 10
	DefaultWindow = time.Hour
)

// Limiter counts requests per key inside a recurring window. The window is
// reset lazily: the first operation after ResetTime starts a new one.
// Limiters may share a repository; it serializes their writes.
type Limiter struct {
	Limit  int
	Window time.Duration
	// Now is read exactly once per operation.
	Now func() time.Time

	name string
	repo repository.RateLimitRepository
}

// New creates a limiter over repo. name labels rejection metrics.
func New(repo repository.RateLimitRepository, name string, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		Limit:  limit,
		Window: window,
		Now:    time.Now,
		name:   name,
		repo:   repo,
	}
}

func (l *Limiter) fresh(key string, now time.Time, current int) models.RateLimitState {
	s := models.RateLimitState{
		UserID:    key,
		Limit:     l.Limit,
		Current:   current,
		ResetTime: now.Add(l.Window),
	}
	s.Recompute()
	return s
}

// window returns the state for key as seen at now, starting a new window
// when the key is unknown or the old one expired. It reports whether the
// state differs from cur.
func (l *Limiter) window(cur *models.RateLimitState, key string, now time.Time) (models.RateLimitState, bool) {
	if cur == nil || cur.Expired(now) {
		return l.fresh(key, now, 0), true
	}
	s := *cur
	changed := s.Limit != l.Limit
	s.Limit = l.Limit
	s.Recompute()
	return s, changed
}

// Check returns the current state for key without charging it.
func (l *Limiter) Check(ctx context.Context, key string) (models.RateLimitState, error) {
	now := l.Now()
	return l.repo.Update(ctx, key, func(cur *models.RateLimitState) (models.RateLimitState, bool) {
		return l.window(cur, key, now)
	})
}

// Consume charges one request to key unconditionally.
func (l *Limiter) Consume(ctx context.Context, key string) (models.RateLimitState, error) {
	now := l.Now()
	return l.repo.Update(ctx, key, func(cur *models.RateLimitState) (models.RateLimitState, bool) {
		s, _ := l.window(cur, key, now)
		s.Current++
		s.Recompute()
		return s, true
	})
}

// Acquire charges one request to key unless the window is exhausted, in
// which case it returns a RATE_LIMIT_EXCEEDED error and charges nothing.
func (l *Limiter) Acquire(ctx context.Context, key string) (models.RateLimitState, error) {
	now := l.Now()
	rejected := false
	s, err := l.repo.Update(ctx, key, func(cur *models.RateLimitState) (models.RateLimitState, bool) {
		s, changed := l.window(cur, key, now)
		if s.Current >= s.Limit {
			rejected = true
			return s, changed
		}
		s.Current++
		s.Recompute()
		return s, true
	})
	if err != nil {
		return s, err
	}
	if rejected {
		observability.RateLimitRejections.WithLabelValues(l.name).Inc()
		return s, models.NewRateLimitError(s.ResetTime)
	}
	return s, nil
}
