package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/tripbook/internal/services"
)

// UserHandler manages registration and profile endpoints.
type UserHandler struct {
	auth *services.AuthService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(auth *services.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

type registerStep1Request struct {
	Phone string `json:"phone" validate:"cnphone"`
	Code  string `json:"code" validate:"vcode"`
}

// RegisterStep1 checks the register code and returns a ticket.
func (h *UserHandler) RegisterStep1(c *fiber.Ctx) error {
	var req registerStep1Request
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	ticket, err := h.auth.RegisterStep1(c.UserContext(), req.Phone, req.Code)
	if err != nil {
		return statusFor(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "phone verified",
		"data":    fiber.Map{"ticket": ticket},
	})
}

type registerStep2Request struct {
	Phone    string `json:"phone" validate:"cnphone"`
	Ticket   string `json:"ticket" validate:"required"`
	Password string `json:"password" validate:"password"`
	Username string `json:"username" validate:"omitempty,min=3,max=32"`
}

// RegisterStep2 creates the account for a verified phone.
func (h *UserHandler) RegisterStep2(c *fiber.Ctx) error {
	var req registerStep2Request
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	session, err := h.auth.RegisterStep2(c.UserContext(), req.Phone, req.Ticket, req.Password, req.Username)
	if err != nil {
		return statusFor(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "registration successful",
		"data":    sessionResponse(session),
	})
}

// GetProfile returns the authenticated user's profile.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    userResponse(user),
	})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"password,nefield=OldPassword"`
}

// ChangePassword replaces the authenticated user's password.
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.UserContext(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		return statusFor(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password updated",
	})
}
