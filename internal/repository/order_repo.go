package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/tripbook/internal/models"
)

// OrderFilter narrows an owner's order listing. Empty Status or
// ProductType disables that filter.
type OrderFilter struct {
	UserID      uuid.UUID
	Status      models.OrderStatus
	ProductType string
	Limit       int
	Offset      int
}

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)

	// List returns one page of matching orders, newest order date first,
	// together with the total number of matches.
	List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)

	// TransitionStatus moves an order from one status to another. It
	// reports false when the order is not currently in from.
	TransitionStatus(ctx context.Context, orderID string, from, to models.OrderStatus, now time.Time) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository builds an OrderRepository on db.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := conn(ctx, r.db).Create(order).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := conn(ctx, r.db).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := conn(ctx, r.db).Model(&models.Order{}).Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProductType != "" {
		query = query.Where("product_type = ?", filter.ProductType)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	orders := make([]models.Order, 0)
	if total == 0 {
		return orders, 0, nil
	}

	if err := query.Order("order_date desc").Order("id desc").
		Limit(filter.Limit).Offset(filter.Offset).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func (r *orderRepository) TransitionStatus(ctx context.Context, orderID string, from, to models.OrderStatus, now time.Time) (bool, error) {
	res := conn(ctx, r.db).Model(&models.Order{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": now,
		})
	if res.Error != nil {
		return false, fmt.Errorf("update order status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
