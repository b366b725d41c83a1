package carts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mogges/internal/infra/dbx"

	"github.com/jackc/pgx/v5/pgconn"
)

const queryTimeout = 5 * time.Second

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Lines(ctx context.Context, userID int64) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
SELECT ci.product_id, p.name, p.price, p.image, p.category, ci.quantity
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.created_at, ci.product_id
`, userID)
	if err != nil {
		return nil, fmt.Errorf("cart lines: %w", err)
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.Name, &l.Price, &l.Image, &l.Category, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return lines, nil
}

func (r *Repository) SetQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = EXCLUDED.quantity
`, userID, productID, quantity)
	if err != nil {
		return mapWriteErr("set quantity", err)
	}
	return nil
}

// AddQuantity relies on the unique (user_id, product_id) key so concurrent
// adds for the same product serialize in the database instead of racing.
func (r *Repository) AddQuantity(ctx context.Context, userID, productID int64, delta int) error {
	if delta < 1 {
		return ErrInvalidQuantity
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
`, userID, productID, delta)
	if err != nil {
		return mapWriteErr("add quantity", err)
	}
	return nil
}

func (r *Repository) Remove(ctx context.Context, userID, productID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

func (r *Repository) Clear(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func mapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrUnknownProduct
	}
	return fmt.Errorf("%s: %w", op, err)
}
