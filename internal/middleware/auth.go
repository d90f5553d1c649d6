package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/apperr"
	"tasktracker/internal/models"
	"tasktracker/pkg/logger"
)

const userKey = "user"

// Authenticator resolves a bearer token to the user that owns it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// UseToken rejects requests without a valid bearer token and stores the
// authenticated user in the request locals.
func UseToken(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			logger.SecurityLogger.Warn("Missing bearer token",
				zap.String("ip", c.IP()), zap.String("url", c.OriginalURL()))
			return apperr.Unauthorized("Unauthenticated.")
		}

		user, err := auth.Authenticate(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			if apperr.IsAuth(err) {
				logger.SecurityLogger.Warn("Rejected token",
					zap.String("ip", c.IP()), zap.String("url", c.OriginalURL()))
			}
			return err
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by UseToken.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals(userKey).(models.User)
	return user, ok
}
