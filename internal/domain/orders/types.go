package orders

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid status")
	ErrEmptyCart     = errors.New("cart is empty")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status. Any known status may follow any other.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// Summary is one row of an order listing.
type Summary struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Email       string          `json:"email"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	ItemCount   int             `json:"itemCount"`
	Total       decimal.Decimal `json:"total"`
}

type Item struct {
	ID          int64           `json:"id"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type Detail struct {
	ID          int64     `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	Email       string    `json:"email"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	Items       []Item    `json:"items"`
}

// Placed describes an order just created at checkout.
type Placed struct {
	ID          int64           `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Shipping    decimal.Decimal `json:"shipping"`
	Total       decimal.Decimal `json:"total"`
}

type Store interface {
	List(ctx context.Context) ([]Summary, error)
	// ListForUser returns the newest orders of one user; limit <= 0 means all.
	ListForUser(ctx context.Context, userID int64, limit int) ([]Summary, error)
	Get(ctx context.Context, id int64) (*Detail, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	// CreateFromCart turns the user's cart into a pending order and empties
	// the cart. It must run inside a transaction.
	CreateFromCart(ctx context.Context, userID int64) (*Placed, error)
}

var (
	freeShippingFrom = decimal.NewFromInt(500)
	shippingFee      = decimal.NewFromInt(49)
)

// ShippingFor returns the shipping fee for a subtotal: free from 500 kr, otherwise 49 kr.
func ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(freeShippingFrom) {
		return decimal.Zero
	}
	return shippingFee
}
