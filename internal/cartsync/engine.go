package cartsync

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrNoToken = errors.New("token required")

// Engine keeps the client cart and, once signed in, mirrors every change to
// the server. Server failures are logged and swallowed; the local cart stays
// authoritative until the next fetch.
type Engine struct {
	mu     sync.Mutex
	state  State
	token  string
	local  LocalStore
	remote Remote
	logger *zap.SugaredLogger
}

func NewEngine(local LocalStore, remote Remote, logger *zap.SugaredLogger) *Engine {
	return &Engine{state: Anonymous, local: local, remote: remote, logger: logger}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Login moves the session to Authenticated. A non-empty local cart is merged
// into the server cart; an empty one is replaced by the server cart. Either
// way the server result overwrites local storage. The merge runs once per
// session: logging in again while authenticated only swaps the token and
// refreshes the cache.
func (e *Engine) Login(ctx context.Context, token string) error {
	if token == "" {
		return ErrNoToken
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Authenticated {
		e.token = token
		items, err := e.remote.Fetch(ctx, token)
		if err != nil {
			e.logger.Warnw("cart refresh failed, keeping local cart", "error", err)
			return nil
		}
		return e.local.Save(items)
	}

	e.state = Authenticating
	e.token = token

	items, err := e.local.Load()
	if err != nil {
		e.state = Anonymous
		e.token = ""
		return err
	}

	e.state = Syncing
	var merged []Item
	if len(items) > 0 {
		merged, err = e.remote.Sync(ctx, token, items)
	} else {
		merged, err = e.remote.Fetch(ctx, token)
	}

	e.state = Authenticated
	if err != nil {
		e.logger.Warnw("cart sync failed, keeping local cart", "items", len(items), "error", err)
		return nil
	}
	return e.local.Save(merged)
}

// Logout forgets the token and the local cart. The server cart is kept.
func (e *Engine) Logout() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = Anonymous
	e.token = ""
	return e.local.Clear()
}

// Add increments an item already in the cart or appends it with quantity 1,
// then mirrors the resulting absolute quantity.
func (e *Engine) Add(ctx context.Context, item Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.local.Load()
	if err != nil {
		return err
	}

	quantity := 1
	found := false
	for i := range items {
		if items[i].ID == item.ID {
			items[i].Quantity++
			quantity = items[i].Quantity
			found = true
			break
		}
	}
	if !found {
		item.Quantity = 1
		items = append(items, item)
	}

	if err := e.local.Save(items); err != nil {
		return err
	}
	e.mirror(func(token string) error {
		return e.remote.SetQuantity(ctx, token, item.ID, quantity)
	}, "add", item.ID)
	return nil
}

// UpdateQuantity sets an absolute quantity; zero or less removes the item.
func (e *Engine) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return e.Remove(ctx, productID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.local.Load()
	if err != nil {
		return err
	}
	found := false
	for i := range items {
		if items[i].ID == productID {
			items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	if err := e.local.Save(items); err != nil {
		return err
	}
	e.mirror(func(token string) error {
		return e.remote.SetQuantity(ctx, token, productID, quantity)
	}, "update quantity", productID)
	return nil
}

func (e *Engine) Remove(ctx context.Context, productID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	items, err := e.local.Load()
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, it := range items {
		if it.ID != productID {
			kept = append(kept, it)
		}
	}
	if err := e.local.Save(kept); err != nil {
		return err
	}
	e.mirror(func(token string) error {
		return e.remote.Remove(ctx, token, productID)
	}, "remove", productID)
	return nil
}

func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.local.Clear(); err != nil {
		return err
	}
	e.mirror(func(token string) error {
		return e.remote.Clear(ctx, token)
	}, "clear", 0)
	return nil
}

// Refresh replaces the local cart with the server cart when signed in.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Authenticated {
		return nil
	}
	items, err := e.remote.Fetch(ctx, e.token)
	if err != nil {
		e.logger.Warnw("cart refresh failed", "error", err)
		return nil
	}
	return e.local.Save(items)
}

func (e *Engine) Items() ([]Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.local.Load()
}

// Count is the number of pieces in the cart, as shown on the cart badge.
func (e *Engine) Count() (int, error) {
	items, err := e.Items()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n, nil
}

func (e *Engine) Total() (decimal.Decimal, error) {
	items, err := e.Items()
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total, nil
}

// mirror runs a server write when signed in. Called with e.mu held.
func (e *Engine) mirror(call func(token string) error, op string, productID int64) {
	if e.state != Authenticated {
		return
	}
	if err := call(e.token); err != nil {
		e.logger.Warnw("cart mirror failed", "op", op, "product_id", productID, "error", err)
	}
}
