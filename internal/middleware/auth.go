// Package middleware provides authentication, rate limiting, logging and
// tracing middleware for the HTTP API.
package middleware

import (
	"context"
	"strings"

	"draftdesk/internal/models"
	"draftdesk/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the auth middleware.
const (
	LocalUser      = "user"
	LocalSessionID = "sid"
)

// Authenticator resolves a bearer token to its user and session id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, string, error)
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", nil
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", &models.AppError{Code: models.CodeNotAuthenticated, Message: "Invalid authorization header format"}
	}
	return parts[1], nil
}

func authenticate(c *fiber.Ctx, auth Authenticator, token string) error {
	user, sid, err := auth.Authenticate(c.UserContext(), token)
	if err != nil {
		return err
	}
	c.Locals(LocalUser, user)
	c.Locals(LocalSessionID, sid)
	c.SetUserContext(observability.WithUserID(c.UserContext(), user.ID))
	return nil
}

// AuthRequired rejects requests without a valid bearer token for an
// active session.
func AuthRequired(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return models.Respond(c, err)
		}
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized, &models.AppError{
				Code:    models.CodeNotAuthenticated,
				Message: "Authorization header required",
			})
		}
		if err := authenticate(c, auth, token); err != nil {
			return models.Respond(c, err)
		}
		return c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err == nil && token != "" {
			_ = authenticate(c, auth, token)
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(LocalUser).(*models.User)
	return u
}

// SessionID returns the authenticated session id, or "".
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(LocalSessionID).(string)
	return sid
}
