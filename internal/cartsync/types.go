package cartsync

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// State is where a session is in the anonymous → authenticated lifecycle.
type State int

const (
	Anonymous State = iota
	Authenticating
	Syncing
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Syncing:
		return "syncing"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Item is one cart entry as held by the client.
type Item struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
}

// LocalStore is client-held cart storage (browser storage in the web shop).
type LocalStore interface {
	Load() ([]Item, error)
	Save(items []Item) error
	Clear() error
}

// Remote is the server cart of the signed-in user.
type Remote interface {
	Fetch(ctx context.Context, token string) ([]Item, error)
	SetQuantity(ctx context.Context, token string, productID int64, quantity int) error
	Remove(ctx context.Context, token string, productID int64) error
	Clear(ctx context.Context, token string) error
	// Sync merges items additively into the server cart and returns the result.
	Sync(ctx context.Context, token string, items []Item) ([]Item, error)
}

type MemoryStore struct {
	mu    sync.Mutex
	items []Item
}

func NewMemoryStore(items ...Item) *MemoryStore {
	return &MemoryStore{items: append([]Item(nil), items...)}
}

func (m *MemoryStore) Load() ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Item(nil), m.items...), nil
}

func (m *MemoryStore) Save(items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]Item(nil), items...)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	return nil
}
