package storage

import (
	"context"
	"fmt"

	"mogges/internal/domain/accesscontrol"
	"mogges/internal/domain/carts"
	"mogges/internal/domain/orders"
	"mogges/internal/domain/products"
	"mogges/internal/domain/users"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Sales struct {
	Carts  carts.Store
	Orders orders.Store
}

type Container struct {
	Users         users.Store
	AccessControl accesscontrol.Store
	Products      products.Store
	Sales         Sales

	withTx func(ctx context.Context, fn func(s *SalesTx) error) error
	ping   func(ctx context.Context) error
}

func NewContainer(pool *pgxpool.Pool, gen *orders.OrderNumberGenerator) *Container {
	c := &Container{
		Users:         users.NewRepository(pool),
		AccessControl: accesscontrol.NewRepository(pool),
		Products:      products.NewRepository(pool),
		Sales: Sales{
			Carts:  carts.NewRepository(pool),
			Orders: orders.NewRepository(pool, gen),
		},
		ping: pool.Ping,
	}

	c.withTx = func(ctx context.Context, fn func(s *SalesTx) error) error {
		tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}

		defer func() {
			_ = tx.Rollback(ctx) // no-op after commit
		}()

		s := &SalesTx{
			Carts:  carts.NewRepository(tx),
			Orders: orders.NewRepository(tx, gen),
		}

		if err := fn(s); err != nil {
			return err
		}

		return tx.Commit(ctx)
	}
	return c
}

// SalesTx is a temporary, tx-scoped set of repos for atomic units of work.
type SalesTx struct {
	Carts  carts.Store
	Orders orders.Store
}

// WithSalesTx runs fn atomically: either every write it makes is kept or none is.
func (c *Container) WithSalesTx(ctx context.Context, fn func(s *SalesTx) error) error {
	if c.withTx == nil {
		return fmt.Errorf("storage container has no transaction support")
	}
	return c.withTx(ctx, fn)
}

// Ping reports whether the backing store is reachable.
func (c *Container) Ping(ctx context.Context) error {
	if c.ping == nil {
		return nil
	}
	return c.ping(ctx)
}
