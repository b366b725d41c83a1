package products

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("product not found")
	ErrInvalidPrice = errors.New("price must not be negative")
	ErrInvalidStock = errors.New("stock must not be negative")
)

// DefaultImage is used when a product is saved without a picture.
const DefaultImage = "picture/1.jpg"

const queryTimeout = 5 * time.Second

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
}

// Fields carries the mutable product attributes as supplied by a client.
// Nil pointers mean "not supplied" and fall back to the defaults below.
type Fields struct {
	Name        string
	Description *string
	Price       decimal.Decimal
	Category    *string
	Stock       *int
	Image       *string
}

// Build turns Fields into a complete product. Create and update both use it,
// so an update replaces every attribute.
func (f Fields) Build(id int64) (*Product, error) {
	p := &Product{
		ID:    id,
		Name:  f.Name,
		Price: f.Price,
		Image: DefaultImage,
	}
	if f.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Category != nil {
		p.Category = *f.Category
	}
	if f.Stock != nil {
		if *f.Stock < 0 {
			return nil, ErrInvalidStock
		}
		p.Stock = *f.Stock
	}
	if f.Image != nil && *f.Image != "" {
		p.Image = *f.Image
	}
	return p, nil
}
