package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tripbook/internal/models"
	"github.com/example/tripbook/internal/services"
	"github.com/example/tripbook/internal/utils"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// ListOrders returns the caller's orders with pagination.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	page := utils.ParsePagination(c)
	list, err := h.orders.List(c.UserContext(), user.ID, services.ListFilter{
		Status:      c.Query("status", "all"),
		ProductType: c.Query("productType", "all"),
		Page:        page.Page,
		PageSize:    page.PageSize,
	})
	if err != nil {
		return statusFor(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
	})
}

type placeOrderRequest struct {
	ProductType  string          `json:"productType" validate:"required"`
	ProductTitle string          `json:"productTitle" validate:"required"`
	OrderDate    *time.Time      `json:"orderDate"`
	TotalAmount  float64         `json:"totalAmount" validate:"gt=0"`
	ProductInfo  json.RawMessage `json:"productInfo"`
	TravelerInfo json.RawMessage `json:"travelerInfo"`
	ContactInfo  json.RawMessage `json:"contactInfo"`
	PriceDetails json.RawMessage `json:"priceDetails"`
}

// PlaceOrder persists a new order awaiting payment.
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req placeOrderRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	in := services.PlaceOrderInput{
		ProductType:  req.ProductType,
		ProductTitle: req.ProductTitle,
		TotalAmount:  req.TotalAmount,
		Details: models.OrderDetails{
			ProductInfo:  req.ProductInfo,
			TravelerInfo: req.TravelerInfo,
			ContactInfo:  req.ContactInfo,
			PriceDetails: req.PriceDetails,
		},
	}
	if req.OrderDate != nil {
		in.OrderDate = *req.OrderDate
	}

	order, err := h.orders.Place(c.UserContext(), user.ID, in)
	if err != nil {
		return statusFor(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// GetOrder returns a single owned order with its available actions.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	detail, err := h.orders.Get(c.UserContext(), user.ID, c.Params("orderId"))
	if err != nil {
		return statusFor(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    detail,
	})
}

// CancelOrder cancels an owned order that is waiting for travel.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.orders.Cancel(c.UserContext(), user.ID, c.Params("orderId")); err != nil {
		return statusFor(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order cancelled successfully.",
	})
}

// DownloadOrder streams the plain-text export of an owned order.
func (h *OrderHandler) DownloadOrder(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	orderID := c.Params("orderId")
	text, err := h.orders.RenderDownload(c.UserContext(), user.ID, orderID)
	if err != nil {
		return statusFor(err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="order-%s.txt"`, orderID))
	return c.SendString(text)
}
