package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/tripbook/internal/models"
	"github.com/example/tripbook/internal/services"
)

const userContextKey = "currentUser"

// IdentityResolver maps request credentials to a user.
type IdentityResolver interface {
	ResolveCurrentUser(ctx context.Context, creds services.Credentials) (*models.User, error)
}

// AuthMiddleware resolves the caller and stores the user in context.
func AuthMiddleware(resolver IdentityResolver, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		creds := services.Credentials{
			BearerToken: bearerToken(c.Get(fiber.HeaderAuthorization)),
			HeaderPhone: c.Get("X-User-Phone"),
			QueryPhone:  c.Query("phone"),
		}

		user, err := resolver.ResolveCurrentUser(c.UserContext(), creds)
		if errors.Is(err, services.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		if err != nil {
			log.Error("resolve current user", zap.Error(err))
			return err
		}

		c.Locals(userContextKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userContextKey).(*models.User)
	return user, ok && user != nil
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
