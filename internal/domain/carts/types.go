package carts

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrUnknownProduct  = errors.New("product does not exist")
)

// Line is one cart row joined with its product, in the same shape the
// storefront keeps in browser storage.
type Line struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
}

// Item is a client-held cart entry offered for merging.
type Item struct {
	ProductID int64
	Quantity  int
}

type Store interface {
	Lines(ctx context.Context, userID int64) ([]Line, error)
	// SetQuantity stores an absolute quantity, inserting the row if needed.
	SetQuantity(ctx context.Context, userID, productID int64, quantity int) error
	// AddQuantity adds to the existing quantity, inserting the row if needed.
	AddQuantity(ctx context.Context, userID, productID int64, delta int) error
	Remove(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}

// Merge folds client items into the stored cart additively. Entries without a
// product id or with a non-positive quantity are skipped. Callers that need
// all-or-nothing behaviour run it on a transaction-scoped Store.
func Merge(ctx context.Context, s Store, userID int64, items []Item) error {
	for _, it := range items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			continue
		}
		if err := s.AddQuantity(ctx, userID, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Subtotal sums quantity times unit price over lines.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
