package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mogges/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const queryTimeout = 5 * time.Second

type Repository struct {
	q   dbx.Querier
	gen *OrderNumberGenerator
}

func NewRepository(q dbx.Querier, gen *OrderNumberGenerator) *Repository {
	return &Repository{q: q, gen: gen}
}

const summarySelect = `
SELECT o.id, o.order_number, u.email, o.status, o.created_at,
       COUNT(oi.id), COALESCE(SUM(oi.quantity * oi.price), 0)
FROM orders o
JOIN users u ON u.id = o.user_id
JOIN order_items oi ON oi.order_id = o.id
`

func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.querySummaries(ctx, summarySelect+`
GROUP BY o.id, u.email
ORDER BY o.created_at DESC, o.id DESC`)
}

func (r *Repository) ListForUser(ctx context.Context, userID int64, limit int) ([]Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := summarySelect + `
WHERE o.user_id = $1
GROUP BY o.id, u.email
ORDER BY o.created_at DESC, o.id DESC`
	if limit > 0 {
		return r.querySummaries(ctx, query+` LIMIT $2`, userID, limit)
	}
	return r.querySummaries(ctx, query, userID)
}

func (r *Repository) querySummaries(ctx context.Context, query string, args ...any) ([]Summary, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.OrderNumber, &s.Email, &s.Status, &s.CreatedAt, &s.ItemCount, &s.Total); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*Detail, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var d Detail
	err := r.q.QueryRow(ctx, `
SELECT o.id, o.order_number, u.email, o.status, o.created_at
FROM orders o
JOIN users u ON u.id = o.user_id
WHERE o.id = $1
`, id).Scan(&d.ID, &d.OrderNumber, &d.Email, &d.Status, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.q.Query(ctx, `
SELECT oi.id, oi.product_name, oi.quantity, oi.price
FROM order_items oi
WHERE oi.order_id = $1
ORDER BY oi.id
`, id)
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	defer rows.Close()

	d.Items = []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		d.Items = append(d.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return &d, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.q.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateFromCart(ctx context.Context, userID int64) (*Placed, error) {
	// Name and price are snapshotted so later catalog edits do not rewrite history.
	// Lock the user's cart rows so two concurrent checkouts cannot both
	// consume the same cart.
	rows, err := r.q.Query(ctx, `
SELECT ci.product_id, p.name, ci.quantity, p.price
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.user_id = $1
ORDER BY ci.product_id
FOR UPDATE OF ci
`, userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}

	type line struct {
		productID int64
		name      string
		quantity  int
		price     decimal.Decimal
	}
	var lines []line
	subtotal := decimal.Zero
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.name, &l.quantity, &l.price); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		subtotal = subtotal.Add(l.price.Mul(decimal.NewFromInt(int64(l.quantity))))
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	placed := &Placed{
		Subtotal: subtotal,
		Shipping: ShippingFor(subtotal),
	}
	placed.Total = placed.Subtotal.Add(placed.Shipping)

	// the order number is derived from the id, so reserve it first
	err = r.q.QueryRow(ctx, `SELECT nextval(pg_get_serial_sequence('orders', 'id'))`).Scan(&placed.ID)
	if err != nil {
		return nil, fmt.Errorf("reserve order id: %w", err)
	}
	placed.OrderNumber = r.gen.Generate(userID, placed.ID)

	_, err = r.q.Exec(ctx, `
INSERT INTO orders (id, order_number, user_id, status)
VALUES ($1, $2, $3, $4)
`, placed.ID, placed.OrderNumber, userID, string(StatusPending))
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, l := range lines {
		if _, err := r.q.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
VALUES ($1, $2, $3, $4, $5)
`, placed.ID, l.productID, l.name, l.quantity, l.price); err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	return placed, nil
}
