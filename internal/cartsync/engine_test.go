package cartsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fakeCartServer mimics the /api/cart endpoints for one user.
type fakeCartServer struct {
	mu      sync.Mutex
	token   string
	catalog map[int64]Item
	cart    map[int64]int
	order   []int64
	failing bool
	calls   int
}

func newFakeCartServer(token string) *fakeCartServer {
	return &fakeCartServer{
		token: token,
		catalog: map[int64]Item{
			1: {ID: 1, Name: "Tröja", Price: decimal.NewFromInt(299), Category: "Herr Mode"},
			5: {ID: 5, Name: "Sneakers", Price: decimal.NewFromInt(899), Category: "Skor"},
			7: {ID: 7, Name: "Halsband", Price: decimal.NewFromInt(149), Category: "Accessoarer"},
		},
		cart: map[int64]int{},
	}
}

func (f *fakeCartServer) set(id int64, q int) {
	if _, ok := f.cart[id]; !ok {
		f.order = append(f.order, id)
	}
	f.cart[id] = q
}

func (f *fakeCartServer) lines() []Item {
	out := []Item{}
	seen := map[int64]bool{}
	for _, id := range f.order {
		if q, ok := f.cart[id]; ok && !seen[id] {
			seen[id] = true
			it := f.catalog[id]
			it.Quantity = q
			out = append(out, it)
		}
	}
	return out
}

func (f *fakeCartServer) quantity(id int64) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.cart[id]
	return q, ok
}

func (f *fakeCartServer) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cart)
}

func (f *fakeCartServer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCartServer) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *fakeCartServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.failing {
		http.Error(w, `{"error":"Server error"}`, http.StatusInternalServerError)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/cart":
	case r.Method == http.MethodPost && r.URL.Path == "/api/cart":
		var in struct {
			ProductID int64 `json:"productId"`
			Quantity  int   `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.set(in.ProductID, in.Quantity)
		_, _ = w.Write([]byte(`{"message":"Cart updated"}`))
		return
	case r.Method == http.MethodPost && r.URL.Path == "/api/cart/sync":
		var in struct {
			Items []struct {
				ID       int64 `json:"id"`
				Quantity int   `json:"quantity"`
			} `json:"items"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		for _, it := range in.Items {
			f.set(it.ID, f.cart[it.ID]+it.Quantity)
		}
	case r.Method == http.MethodDelete && r.URL.Path == "/api/cart":
		f.cart = map[int64]int{}
		f.order = nil
		_, _ = w.Write([]byte(`{"message":"Cart cleared"}`))
		return
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/cart/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/cart/"), 10, 64)
		delete(f.cart, id)
		_, _ = w.Write([]byte(`{"message":"Item removed"}`))
		return
	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(f.lines())
}

func newEngine(t *testing.T, srv *httptest.Server, local ...Item) (*Engine, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(local...)
	return NewEngine(store, NewHTTPRemote(srv.URL), zap.NewNop().Sugar()), store
}

func quantities(t *testing.T, items []Item) map[int64]int {
	t.Helper()
	out := map[int64]int{}
	for _, it := range items {
		out[it.ID] = it.Quantity
	}
	return out
}

func TestAnonymousCartStaysLocal(t *testing.T) {
	fake := newFakeCartServer("tok")
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e, _ := newEngine(t, srv)
	ctx := context.Background()

	_ = e.Add(ctx, Item{ID: 1, Name: "Tröja", Price: decimal.NewFromInt(299)})
	_ = e.Add(ctx, Item{ID: 1, Name: "Tröja", Price: decimal.NewFromInt(299)})
	_ = e.Add(ctx, Item{ID: 7, Name: "Halsband", Price: decimal.NewFromInt(149)})
	_ = e.UpdateQuantity(ctx, 7, 0)

	items, _ := e.Items()
	if got := quantities(t, items); len(got) != 1 || got[1] != 2 {
		t.Fatalf("local cart = %+v", items)
	}
	if total, _ := e.Total(); !total.Equal(decimal.NewFromInt(598)) {
		t.Fatalf("total = %s", total)
	}
	if n := fake.callCount(); n != 0 {
		t.Fatalf("anonymous engine made %d server calls", n)
	}
	if e.State() != Anonymous {
		t.Fatalf("state = %s", e.State())
	}
}

func TestLoginMergesAdditively(t *testing.T) {
	fake := newFakeCartServer("tok")
	fake.set(5, 3)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e, store := newEngine(t, srv, Item{ID: 5, Name: "Sneakers", Price: decimal.NewFromInt(899), Quantity: 2})
	if err := e.Login(context.Background(), "tok"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if e.State() != Authenticated {
		t.Fatalf("state = %s", e.State())
	}

	items, _ := store.Load()
	if got := quantities(t, items); got[5] != 5 {
		t.Fatalf("merged cart = %+v", items)
	}
}

func TestRepeatLoginDoesNotMergeAgain(t *testing.T) {
	fake := newFakeCartServer("tok")
	fake.set(5, 3)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e, store := newEngine(t, srv, Item{ID: 5, Name: "Sneakers", Price: decimal.NewFromInt(899), Quantity: 2})
	for i := 0; i < 2; i++ {
		if err := e.Login(context.Background(), "tok"); err != nil {
			t.Fatalf("login %d: %v", i+1, err)
		}
	}

	if q, _ := fake.quantity(5); q != 5 {
		t.Fatalf("server quantity after second login = %d, want 5", q)
	}
	items, _ := store.Load()
	if got := quantities(t, items); got[5] != 5 {
		t.Fatalf("local cart after second login = %+v", items)
	}
	if e.State() != Authenticated {
		t.Fatalf("state = %s", e.State())
	}
}

func TestLoginWithEmptyCartFetches(t *testing.T) {
	fake := newFakeCartServer("tok")
	fake.set(1, 1)
	fake.set(7, 4)
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e, store := newEngine(t, srv)
	if err := e.Login(context.Background(), "tok"); err != nil {
		t.Fatalf("login: %v", err)
	}

	items, _ := store.Load()
	if got := quantities(t, items); len(got) != 2 || got[1] != 1 || got[7] != 4 {
		t.Fatalf("fetched cart = %+v", items)
	}
	q1, _ := fake.quantity(1)
	q7, _ := fake.quantity(7)
	if q1 != 1 || q7 != 4 {
		t.Fatalf("empty login changed server cart: %d %d", q1, q7)
	}
}

func TestAuthenticatedOperationsMirrorAbsoluteQuantities(t *testing.T) {
	fake := newFakeCartServer("tok")
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e, _ := newEngine(t, srv)
	ctx := context.Background()
	if err := e.Login(ctx, "tok"); err != nil {
		t.Fatalf("login: %v", err)
	}

	_ = e.Add(ctx, fake.catalog[1])
	_ = e.Add(ctx, fake.catalog[1])
	_ = e.Add(ctx, fake.catalog[5])
	if q, _ := fake.quantity(1); q != 2 {
		t.Fatalf("server quantity of 1 = %d, want 2", q)
	}
	if q, _ := fake.quantity(5); q != 1 {
		t.Fatalf("server quantity of 5 = %d, want 1", q)
	}

	_ = e.UpdateQuantity(ctx, 1, 6)
	if q, _ := fake.quantity(1); q != 6 {
		t.Fatalf("server quantity = %d, want 6", q)
	}

	_ = e.UpdateQuantity(ctx, 5, -1)
	if _, ok := fake.quantity(5); ok {
		t.Fatal("non-positive quantity did not remove server row")
	}

	_ = e.Clear(ctx)
	if n := fake.size(); n != 0 {
		t.Fatalf("server cart has %d rows after clear", n)
	}
	if n, _ := e.Count(); n != 0 {
		t.Fatalf("local count = %d", n)
	}
}

func TestServerFailuresAreSwallowed(t *testing.T) {
	fake := newFakeCartServer("tok")
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e, _ := newEngine(t, srv, Item{ID: 1, Quantity: 1, Price: decimal.NewFromInt(299)})
	fake.setFailing(true)
	ctx := context.Background()

	if err := e.Login(ctx, "tok"); err != nil {
		t.Fatalf("login returned %v", err)
	}
	if e.State() != Authenticated {
		t.Fatalf("state = %s", e.State())
	}
	if err := e.Add(ctx, Item{ID: 1}); err != nil {
		t.Fatalf("add returned %v", err)
	}

	items, _ := e.Items()
	if got := quantities(t, items); got[1] != 2 {
		t.Fatalf("local cart = %+v", items)
	}

	fake.setFailing(false)
	if err := e.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	items, _ = e.Items()
	if len(items) != 0 {
		t.Fatalf("refresh did not adopt server cart: %+v", items)
	}
}

func TestLogoutClearsLocalCart(t *testing.T) {
	fake := newFakeCartServer("tok")
	srv := httptest.NewServer(fake)
	defer srv.Close()

	e, store := newEngine(t, srv)
	ctx := context.Background()
	_ = e.Login(ctx, "tok")
	_ = e.Add(ctx, fake.catalog[7])

	if err := e.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if e.State() != Anonymous {
		t.Fatalf("state = %s", e.State())
	}
	if items, _ := store.Load(); len(items) != 0 {
		t.Fatalf("local cart kept after logout: %+v", items)
	}
	if q, _ := fake.quantity(7); q != 1 {
		t.Fatal("logout touched the server cart")
	}
	if err := e.Login(ctx, ""); err != ErrNoToken {
		t.Fatalf("empty token err = %v", err)
	}
}

func TestHTTPRemoteReportsStatus(t *testing.T) {
	fake := newFakeCartServer("tok")
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := NewHTTPRemote(srv.URL).Fetch(context.Background(), "wrong")
	se, ok := err.(*StatusError)
	if !ok || se.Status != http.StatusUnauthorized || se.Message != "Unauthorized" {
		t.Fatalf("err = %v", err)
	}
}
