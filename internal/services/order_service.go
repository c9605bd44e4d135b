package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/tripbook/internal/metrics"
	"github.com/example/tripbook/internal/models"
	"github.com/example/tripbook/internal/repository"
	"github.com/example/tripbook/internal/utils"
)

// OrderAction is something the owner may do with an order.
type OrderAction string

const (
	ActionCancel  OrderAction = "cancel"
	ActionInvoice OrderAction = "invoice"
)

var orderActions = map[models.OrderStatus][]OrderAction{
	models.OrderPendingPayment: {},
	models.OrderPendingTravel:  {ActionCancel, ActionInvoice},
	models.OrderPendingReview:  {ActionInvoice},
	models.OrderCancelled:      {ActionInvoice},
}

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPendingTravel: {models.OrderCancelled},
}

// ActionsFor returns the actions offered for an order in status.
func ActionsFor(status models.OrderStatus) []OrderAction {
	actions, ok := orderActions[status]
	if !ok {
		return []OrderAction{}
	}
	out := make([]OrderAction, len(actions))
	copy(out, actions)
	return out
}

// Transition reports whether an order may move from one status to another.
func Transition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ListFilter narrows an order listing. "all" or empty disables a filter.
type ListFilter struct {
	Status      string
	ProductType string
	Page        int
	PageSize    int
}

// PageInfo describes the returned slice of a listing.
type PageInfo struct {
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
}

// OrderList is one page of a user's orders.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	Pagination PageInfo       `json:"pagination"`
}

// OrderDetail is an order together with the actions its status allows.
type OrderDetail struct {
	models.Order
	Actions []OrderAction `json:"actions"`
}

// PlaceOrderInput carries a new booking.
type PlaceOrderInput struct {
	ProductType  string
	ProductTitle string
	OrderDate    time.Time
	TotalAmount  float64
	Details      models.OrderDetails
}

// OrderService queries orders and drives their lifecycle.
type OrderService struct {
	repo    repository.OrderRepository
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

// NewOrderService builds an OrderService.
func NewOrderService(repo repository.OrderRepository, m *metrics.Metrics, log *zap.Logger) *OrderService {
	return &OrderService{
		repo:    repo,
		metrics: m,
		log:     log.Named("orders"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// List returns one page of the user's orders, newest order date first.
func (s *OrderService) List(ctx context.Context, userID uuid.UUID, filter ListFilter) (*OrderList, error) {
	page := utils.NewPagination(filter.Page, filter.PageSize)

	query := repository.OrderFilter{
		UserID: userID,
		Limit:  page.PageSize,
		Offset: page.Offset,
	}
	if filter.Status != "" && filter.Status != "all" {
		query.Status = models.OrderStatus(filter.Status)
		if !query.Status.Valid() {
			return emptyOrderList(page), nil
		}
	}
	if filter.ProductType != "" && filter.ProductType != "all" {
		query.ProductType = filter.ProductType
	}

	orders, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}

	return &OrderList{
		Orders: orders,
		Pagination: PageInfo{
			CurrentPage: page.Page,
			PageSize:    page.PageSize,
			TotalPages:  utils.TotalPages(total, page.PageSize),
			TotalCount:  total,
		},
	}, nil
}

func emptyOrderList(page utils.Pagination) *OrderList {
	return &OrderList{
		Orders: []models.Order{},
		Pagination: PageInfo{
			CurrentPage: page.Page,
			PageSize:    page.PageSize,
			TotalPages:  1,
		},
	}
}

// Get returns the order with its allowed actions. An existing order
// owned by someone else yields ErrOrderForbidden.
func (s *OrderService) Get(ctx context.Context, userID uuid.UUID, orderID string) (*OrderDetail, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderForbidden
	}
	return &OrderDetail{Order: *order, Actions: ActionsFor(order.Status)}, nil
}

// Cancel moves an owned pending_travel order to cancelled.
func (s *OrderService) Cancel(ctx context.Context, userID uuid.UUID, orderID string) error {
	err := s.cancel(ctx, userID, orderID)
	s.metrics.OrderCancel(err == nil)
	return err
}

func (s *OrderService) cancel(ctx context.Context, userID uuid.UUID, orderID string) error {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return ErrOrderNotFound
	}
	if !Transition(order.Status, models.OrderCancelled) {
		return ErrIllegalTransition
	}

	ok, err := s.repo.TransitionStatus(ctx, orderID, order.Status, models.OrderCancelled, s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrIllegalTransition
	}
	s.log.Info("order cancelled", zap.String("order_id", orderID), zap.String("user_id", userID.String()))
	return nil
}

// RenderDownload produces the plain-text export of an owned order.
// Every failure is reported as ErrDownloadFailed.
func (s *OrderService) RenderDownload(ctx context.Context, userID uuid.UUID, orderID string) (string, error) {
	order, err := s.find(ctx, orderID)
	if err != nil || order.UserID != userID {
		if err != nil && !errors.Is(err, ErrOrderNotFound) {
			s.log.Error("order download lookup failed", zap.String("order_id", orderID), zap.Error(err))
		}
		return "", ErrDownloadFailed
	}

	text, err := renderOrderText(order)
	if err != nil {
		s.log.Error("order download render failed", zap.String("order_id", orderID), zap.Error(err))
		return "", ErrDownloadFailed
	}
	return text, nil
}

// Place persists a new order awaiting payment.
func (s *OrderService) Place(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*models.Order, error) {
	if strings.TrimSpace(in.ProductType) == "" || strings.TrimSpace(in.ProductTitle) == "" || in.TotalAmount <= 0 {
		return nil, ErrInvalidOrder
	}

	orderID, err := generateOrderID()
	if err != nil {
		return nil, fmt.Errorf("generate order id: %w", err)
	}

	now := s.now()
	orderDate := in.OrderDate.UTC()
	if in.OrderDate.IsZero() {
		orderDate = now
	}

	order := &models.Order{
		OrderID:      orderID,
		UserID:       userID,
		ProductType:  in.ProductType,
		ProductTitle: in.ProductTitle,
		OrderDate:    orderDate,
		TotalAmount:  in.TotalAmount,
		Status:       models.OrderPendingPayment,
		Details:      in.Details,
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.log.Info("order placed", zap.String("order_id", orderID), zap.String("user_id", userID.String()))
	return order, nil
}

func (s *OrderService) find(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.repo.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup order: %w", err)
	}
	return order, nil
}

func renderOrderText(order *models.Order) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Order ID: %s\n", order.OrderID)
	fmt.Fprintf(&b, "Status: %s\n", order.Status)
	fmt.Fprintf(&b, "Product Type: %s\n", order.ProductType)
	fmt.Fprintf(&b, "Product: %s\n", order.ProductTitle)
	fmt.Fprintf(&b, "Order Date: %s\n", order.OrderDate.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Total Amount: %.2f\n", order.TotalAmount)

	sections := []struct {
		title string
		raw   json.RawMessage
	}{
		{"Product Info", order.Details.ProductInfo},
		{"Traveler Info", order.Details.TravelerInfo},
		{"Contact Info", order.Details.ContactInfo},
		{"Price Details", order.Details.PriceDetails},
	}
	for _, section := range sections {
		trimmed := bytes.TrimSpace(section.raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, trimmed, "", "  "); err != nil {
			return "", fmt.Errorf("indent %s: %w", section.title, err)
		}
		fmt.Fprintf(&b, "\n%s:\n%s\n", section.title, pretty.String())
	}
	return b.String(), nil
}

const orderIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func generateOrderID() (string, error) {
	buf := make([]byte, 10)
	base := big.NewInt(int64(len(orderIDAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		buf[i] = orderIDAlphabet[n.Int64()]
	}
	return "ORD-" + string(buf), nil
}
