// Package service holds the business operations behind the HTTP API.
package service

import (
	"context"
	"time"

	"draftdesk/internal/featureflags"
	"draftdesk/internal/models"
	"draftdesk/internal/observability"
	"draftdesk/internal/ratelimit"
)

// Guard bundles what every service operation passes through: the
// authentication check, the per-user rate limit, optional simulated
// latency and error tracking.
type Guard struct {
	Limiter *ratelimit.Limiter
	Tracker *observability.ErrorTracker
	Flags   *featureflags.Manager
	// Latency is slept before operations when the simulated_latency flag
	// is on for the caller.
	Latency time.Duration
}

// enter authenticates caller, applies simulated latency, and charges one
// request to the caller's rate limit window.
func (g *Guard) enter(ctx context.Context, caller *models.User) error {
	if err := g.read(ctx, caller); err != nil {
		return err
	}
	if g.Limiter == nil {
		return nil
	}
	_, err := g.Limiter.Acquire(ctx, caller.ID)
	return err
}

// read is enter without the rate limit charge.
func (g *Guard) read(ctx context.Context, caller *models.User) error {
	if caller == nil {
		return models.NewNotAuthenticatedError()
	}
	return g.pause(ctx, caller.ID)
}

func (g *Guard) pause(ctx context.Context, userID string) error {
	if g.Latency <= 0 || !g.Flags.Enabled(featureflags.SimulatedLatency, userID) {
		return nil
	}
	timer := time.NewTimer(g.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fail classifies err as an AppError and records it.
func (g *Guard) fail(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if models.ErrorCode(err) == "" {
		err = models.NewInternalError(err)
	}
	return g.Tracker.Track(ctx, op, err)
}

// authorizeOwner allows the post owner and admins.
func authorizeOwner(caller *models.User, post *models.Post) error {
	if post.OwnedBy(caller.ID) || caller.IsAdmin() {
		return nil
	}
	return models.NewUnauthorizedError("You do not own this post")
}
