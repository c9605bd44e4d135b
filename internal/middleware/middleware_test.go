package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/tripbook/internal/models"
	"github.com/example/tripbook/internal/services"
	"github.com/example/tripbook/internal/utils"
)

type stubResolver struct {
	user *models.User
	err  error
	seen services.Credentials
}

func (s *stubResolver) ResolveCurrentUser(_ context.Context, creds services.Credentials) (*models.User, error) {
	s.seen = creds
	return s.user, s.err
}

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestAuthMiddlewareStoresUser(t *testing.T) {
	user := &models.User{Phone: "13800138000"}
	user.ID = uuid.New()
	resolver := &stubResolver{user: user}

	app := newApp()
	app.Get("/me", AuthMiddleware(resolver, zap.NewNop()), func(c *fiber.Ctx) error {
		current, ok := CurrentUser(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(current.ID.String())
	})

	req := httptest.NewRequest(fiber.MethodGet, "/me?phone=13900139000", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer abc.def.ghi")
	req.Header.Set("X-User-Phone", "13700137000")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, user.ID.String(), string(body))
	assert.Equal(t, services.Credentials{BearerToken: "abc.def.ghi", HeaderPhone: "13700137000", QueryPhone: "13900139000"}, resolver.seen)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	app := newApp()
	app.Get("/missing", AuthMiddleware(&stubResolver{err: services.ErrUserNotFound}, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/broken", AuthMiddleware(&stubResolver{err: errors.New("db down")}, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, decode(t, resp.Body)["success"])

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/broken", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal server error", decode(t, resp.Body)["message"])
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "tok", bearerToken("Bearer tok"))
	assert.Equal(t, "tok", bearerToken("bearer  tok "))
	assert.Empty(t, bearerToken("Basic tok"))
	assert.Empty(t, bearerToken("tok"))
	assert.Empty(t, bearerToken(""))
}

func TestErrorHandlerValidation(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return NewValidationError([]utils.ValidationError{{Field: "phone", Tag: "cnphone", Message: "phone is invalid"}})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, "validation failed", body["message"])
	require.Len(t, body["errors"], 1)
}

func TestIPRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewIPRateLimiter(ctx, 2, 15*time.Minute, nil, zap.NewNop())
	app := newApp()
	app.Use(limiter.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
