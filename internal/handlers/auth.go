package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/tripbook/internal/models"
	"github.com/example/tripbook/internal/services"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth         *services.AuthService
	verification *services.VerificationService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService, verification *services.VerificationService) *AuthHandler {
	return &AuthHandler{auth: auth, verification: verification}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates by username or phone and password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	session, err := h.auth.PasswordLogin(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return statusFor(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "login successful",
		"data":    sessionResponse(session),
	})
}

type sendCodeRequest struct {
	Phone string `json:"phone" validate:"cnphone"`
	Type  string `json:"type" validate:"oneof=login register"`
}

// SendCode issues a verification code, subject to the per-phone guard.
func (h *AuthHandler) SendCode(c *fiber.Ctx) error {
	var req sendCodeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if err := h.verification.Send(c.UserContext(), req.Phone, models.VerificationType(req.Type)); err != nil {
		return statusFor(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "verification code sent",
	})
}

type phoneLoginRequest struct {
	Phone string `json:"phone" validate:"cnphone"`
	Code  string `json:"code" validate:"vcode"`
}

// PhoneLogin authenticates with a login verification code.
func (h *AuthHandler) PhoneLogin(c *fiber.Ctx) error {
	var req phoneLoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	session, err := h.auth.CodeLogin(c.UserContext(), req.Phone, req.Code)
	if err != nil {
		return statusFor(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "login successful",
		"data":    sessionResponse(session),
	})
}
