package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is a step of the order lifecycle.
type OrderStatus string

const (
	OrderPendingPayment OrderStatus = "pending_payment"
	OrderPendingTravel  OrderStatus = "pending_travel"
	OrderPendingReview  OrderStatus = "pending_review"
	OrderCancelled      OrderStatus = "cancelled"
)

// Valid reports whether s belongs to the status vocabulary.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPendingPayment, OrderPendingTravel, OrderPendingReview, OrderCancelled:
		return true
	}
	return false
}

// Order is a booking owned by exactly one user.
type Order struct {
	BaseModel
	OrderID      string       `gorm:"uniqueIndex;not null" json:"orderId"`
	UserID       uuid.UUID    `gorm:"type:uuid;index;not null" json:"userId"`
	User         *User        `json:"-"`
	ProductType  string       `gorm:"index" json:"productType"`
	ProductTitle string       `json:"productTitle"`
	OrderDate    time.Time    `gorm:"index" json:"orderDate"`
	TotalAmount  float64      `json:"totalAmount"`
	Status       OrderStatus  `gorm:"index;size:32;not null" json:"orderStatus"`
	Details      OrderDetails `gorm:"type:jsonb" json:"details"`
}

// OrderDetails is the opaque detail blob stored alongside an order.
type OrderDetails struct {
	ProductInfo  json.RawMessage `json:"productInfo,omitempty"`
	TravelerInfo json.RawMessage `json:"travelerInfo,omitempty"`
	ContactInfo  json.RawMessage `json:"contactInfo,omitempty"`
	PriceDetails json.RawMessage `json:"priceDetails,omitempty"`
}

// Value implements driver.Valuer.
func (d OrderDetails) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Malformed blobs decode to empty details.
func (d *OrderDetails) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*d = OrderDetails{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("order details: unsupported column type")
	}

	var decoded OrderDetails
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			decoded = OrderDetails{}
		}
	}
	*d = decoded
	return nil
}
