package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tripbook/internal/services"
)

// AirportHandler serves airport autocomplete.
type AirportHandler struct {
	airports *services.AirportService
}

// NewAirportHandler constructs AirportHandler.
func NewAirportHandler(airports *services.AirportService) *AirportHandler {
	return &AirportHandler{airports: airports}
}

// Suggest returns up to 20 airports matching the query keyword.
func (h *AirportHandler) Suggest(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query keyword")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"suggestions": h.airports.Suggest(query)},
	})
}
