package orders

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("order not found")

// Order statuses. An order enters "accepted" once the pricing gate passes
// and moves forward from there; "cancelled" is terminal.
const (
	StatusAccepted   = "accepted"
	StatusCooking    = "cooking"
	StatusDelivering = "delivering"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

// Order is the persisted snapshot of an accepted checkout. All money fields
// are whole rubles, frozen at acceptance time from the pricing engine's
// quote, never from client-side totals.
type Order struct {
	ID              int64     `json:"id"`
	OrderNumber     string    `json:"order_number"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	OrderType       string    `json:"order_type"`
	DeliveryAddress *string   `json:"delivery_address,omitempty"`
	Comment         *string   `json:"comment,omitempty"`
	Subtotal        int       `json:"subtotal"`
	DeliveryFee     int       `json:"delivery_fee"`
	Total           int       `json:"total"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type OrderItem struct {
	ID         int64  `json:"id"`
	OrderID    int64  `json:"order_id"`
	MenuItemID string `json:"menu_item_id"`
	Name       string `json:"name"`
	UnitPrice  int    `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	LineTotal  int    `json:"line_total"`
}

// Detail is the order together with its items.
type Detail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

// NewOrder is the input for Create. IdempotencyKey, when present, is a
// client-generated uuid: resubmitting with the same key returns the already
// created order instead of a duplicate.
type NewOrder struct {
	CustomerName    string
	CustomerPhone   string
	OrderType       string
	DeliveryAddress *string
	Comment         *string
	Subtotal        int
	DeliveryFee     int
	Total           int
	IdempotencyKey  *string
	Items           []NewOrderItem
}

type NewOrderItem struct {
	MenuItemID string
	Name       string
	UnitPrice  int
	Quantity   int
}

type Store interface {
	Create(ctx context.Context, in *NewOrder) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Detail, error)
	ListRecent(ctx context.Context, status string, limit, offset int) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
