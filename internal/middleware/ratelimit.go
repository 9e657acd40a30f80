package middleware

import (
	"fmt"
	"log/slog"
	"os"

	"draftdesk/internal/models"
	"draftdesk/internal/observability"
	"draftdesk/internal/ratelimit"

	"github.com/gofiber/fiber/v2"
)

// RateLimit limits requests per remote IP for resource. It is bypassed when
// APP_ENV is "test" and fails open when the limiter's store errors.
func RateLimit(limiter *ratelimit.Limiter, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if os.Getenv("APP_ENV") == "test" || limiter == nil {
			return c.Next()
		}

		key := fmt.Sprintf("ip:%s:%s", resource, c.IP())
		if _, err := limiter.Acquire(c.UserContext(), key); err != nil {
			if models.IsCode(err, models.CodeRateLimitExceeded) {
				return models.Respond(c, err)
			}
			observability.Logger.WarnContext(c.UserContext(), "rate limit unavailable, allowing request",
				slog.String("resource", resource),
				slog.String("error", err.Error()),
			)
		}
		return c.Next()
	}
}
