package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mogges/internal/infra/dbx"
	"mogges/internal/params"

	"github.com/jackc/pgx/v5"
)

// Store is the data access abstraction for the catalog.
type Store interface {
	List(ctx context.Context, f params.CatalogFilter) ([]*Product, error)
	ListInStock(ctx context.Context, limit int) ([]*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	SetImage(ctx context.Context, id int64, image string) error
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db dbx.Querier) *Repository {
	return &Repository{db: db}
}

const productColumns = `id, name, description, price, category, stock, image`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Stock, &p.Image); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) List(ctx context.Context, f params.CatalogFilter) ([]*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		where []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, f.SearchPattern())
		n := len(args)
		where = append(where, fmt.Sprintf(`(name ILIKE $%[1]d ESCAPE '\' OR description ILIKE $%[1]d ESCAPE '\' OR category ILIKE $%[1]d ESCAPE '\')`, n))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	return r.queryProducts(ctx, query, args...)
}

func (r *Repository) ListInStock(ctx context.Context, limit int) ([]*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE stock > 0 ORDER BY id LIMIT $1`, limit)
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]*Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repository) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := r.db.QueryRow(ctx, `
INSERT INTO products (name, description, price, category, stock, image)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		p.Name, p.Description, p.Price, p.Category, p.Stock, p.Image,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of p.ID.
func (r *Repository) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
UPDATE products
SET name = $1, description = $2, price = $3, category = $4, stock = $5, image = $6
WHERE id = $7`,
		p.Name, p.Description, p.Price, p.Category, p.Stock, p.Image, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetImage(ctx context.Context, id int64, image string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE products SET image = $1 WHERE id = $2`, image, id)
	if err != nil {
		return fmt.Errorf("set product image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete is idempotent: removing a missing product succeeds.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
