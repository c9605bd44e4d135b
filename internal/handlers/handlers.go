// Package handlers exposes the HTTP endpoints of the booking API.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tripbook/internal/middleware"
	"github.com/example/tripbook/internal/models"
	"github.com/example/tripbook/internal/services"
	"github.com/example/tripbook/internal/utils"
)

// bindJSON parses the body into req and runs struct validation.
func bindJSON(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return middleware.NewValidationError(errs)
	}
	return nil
}

// statusFor maps service errors onto HTTP errors. Unknown errors pass
// through and end up as a logged 500.
func statusFor(err error) error {
	switch {
	case errors.Is(err, services.ErrTooManyRequests):
		return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
	case errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrUserNotFound):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrPhoneRegistered),
		errors.Is(err, services.ErrPhoneNotRegistered),
		errors.Is(err, services.ErrInvalidTicket),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrUnknownCodeType),
		errors.Is(err, services.ErrIllegalTransition),
		errors.Is(err, services.ErrInvalidOrder):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrOrderForbidden):
		return fiber.NewError(fiber.StatusForbidden, "access to this order is forbidden")
	case errors.Is(err, services.ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDownloadFailed):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return err
}

func currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return user, nil
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"phone":      user.Phone,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	}
}

func sessionResponse(session *services.Session) fiber.Map {
	return fiber.Map{
		"token": session.Token,
		"user":  userResponse(session.User),
	}
}
