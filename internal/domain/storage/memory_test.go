package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"mogges/internal/domain/accesscontrol"
	"mogges/internal/domain/carts"
	"mogges/internal/domain/orders"
	"mogges/internal/domain/products"
	"mogges/internal/domain/users"
	"mogges/internal/params"

	"github.com/shopspring/decimal"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	return NewMemoryContainer(orders.NewOrderNumberGenerator("test"))
}

func seedUser(t *testing.T, c *Container, email string, role accesscontrol.RoleName) *users.User {
	t.Helper()
	u := &users.User{Email: email, Role: role}
	if err := u.Password.Set("pw123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := c.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedProduct(t *testing.T, c *Container, name, price string, stock int) *products.Product {
	t.Helper()
	p, err := products.Fields{Name: name, Price: decimal.RequireFromString(price), Stock: &stock}.Build(0)
	if err != nil {
		t.Fatalf("build product: %v", err)
	}
	if err := c.Products.Create(context.Background(), p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func quantities(lines []carts.Line) map[int64]int {
	out := map[int64]int{}
	for _, l := range lines {
		out[l.ProductID] = l.Quantity
	}
	return out
}

func syncCart(t *testing.T, c *Container, userID int64, items []carts.Item) []carts.Line {
	t.Helper()
	var lines []carts.Line
	err := c.WithSalesTx(context.Background(), func(s *SalesTx) error {
		if err := carts.Merge(context.Background(), s.Carts, userID, items); err != nil {
			return err
		}
		var err error
		lines, err = s.Carts.Lines(context.Background(), userID)
		return err
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	return lines
}

func TestCartMergeIsAdditive(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()
	u := seedUser(t, c, "a@b.com", accesscontrol.RoleUser)
	var ps []*products.Product
	for i := 0; i < 5; i++ {
		ps = append(ps, seedProduct(t, c, "P", "100", 10))
	}
	p5 := ps[4]

	if err := c.Sales.Carts.SetQuantity(ctx, u.ID, p5.ID, 3); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	lines := syncCart(t, c, u.ID, []carts.Item{{ProductID: p5.ID, Quantity: 2}})
	if got := quantities(lines)[p5.ID]; got != 5 {
		t.Fatalf("merged quantity = %d, want 5", got)
	}
}

func TestCartMergeEmptyClientLeavesServerCart(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()
	u := seedUser(t, c, "a@b.com", accesscontrol.RoleUser)
	a := seedProduct(t, c, "A", "10", 1)
	b := seedProduct(t, c, "B", "20", 1)

	for _, id := range []int64{a.ID, b.ID} {
		if err := c.Sales.Carts.SetQuantity(ctx, u.ID, id, 2); err != nil {
			t.Fatalf("set quantity: %v", err)
		}
	}

	lines := syncCart(t, c, u.ID, nil)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for id, q := range quantities(lines) {
		if q != 2 {
			t.Fatalf("product %d quantity = %d, want 2", id, q)
		}
	}
}

func TestCartSyncRollsBackOnFailure(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()
	u := seedUser(t, c, "a@b.com", accesscontrol.RoleUser)
	a := seedProduct(t, c, "A", "10", 1)

	err := c.WithSalesTx(ctx, func(s *SalesTx) error {
		return carts.Merge(ctx, s.Carts, u.ID, []carts.Item{
			{ProductID: a.ID, Quantity: 1},
			{ProductID: 999, Quantity: 1},
		})
	})
	if !errors.Is(err, carts.ErrUnknownProduct) {
		t.Fatalf("err = %v, want ErrUnknownProduct", err)
	}

	lines, err := c.Sales.Carts.Lines(ctx, u.ID)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("partial sync was kept: %+v", lines)
	}
}

func TestCartMergeSkipsInvalidItems(t *testing.T) {
	c := newTestContainer(t)
	u := seedUser(t, c, "a@b.com", accesscontrol.RoleUser)
	a := seedProduct(t, c, "A", "10", 1)

	lines := syncCart(t, c, u.ID, []carts.Item{
		{ProductID: 0, Quantity: 3},
		{ProductID: a.ID, Quantity: 0},
		{ProductID: a.ID, Quantity: -1},
		{ProductID: a.ID, Quantity: 1},
	})
	if got := quantities(lines); len(got) != 1 || got[a.ID] != 1 {
		t.Fatalf("lines = %+v", lines)
	}
}

func TestConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()
	u := seedUser(t, c, "a@b.com", accesscontrol.RoleUser)
	a := seedProduct(t, c, "A", "10", 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Sales.Carts.AddQuantity(ctx, u.ID, a.ID, 1); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	lines, err := c.Sales.Carts.Lines(ctx, u.ID)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if got := quantities(lines)[a.ID]; got != 50 {
		t.Fatalf("quantity = %d, want 50", got)
	}
}

func TestSetQuantityIsAbsolute(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()
	u := seedUser(t, c, "a@b.com", accesscontrol.RoleUser)
	a := seedProduct(t, c, "A", "10", 1)

	for _, q := range []int{4, 1} {
		if err := c.Sales.Carts.SetQuantity(ctx, u.ID, a.ID, q); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	lines, _ := c.Sales.Carts.Lines(ctx, u.ID)
	if got := quantities(lines)[a.ID]; got != 1 {
		t.Fatalf("quantity = %d, want 1", got)
	}
	if err := c.Sales.Carts.SetQuantity(ctx, u.ID, a.ID, 0); !errors.Is(err, carts.ErrInvalidQuantity) {
		t.Fatalf("zero quantity err = %v", err)
	}
}

func TestCheckoutSnapshotsPricesAndClearsCart(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()
	u := seedUser(t, c, "a@b.com", accesscontrol.RoleUser)
	a := seedProduct(t, c, "A", "199.50", 5)
	b := seedProduct(t, c, "B", "50", 5)

	_ = c.Sales.Carts.SetQuantity(ctx, u.ID, a.ID, 2)
	_ = c.Sales.Carts.SetQuantity(ctx, u.ID, b.ID, 1)

	var placed *orders.Placed
	err := c.WithSalesTx(ctx, func(s *SalesTx) error {
		var err error
		placed, err = s.Orders.CreateFromCart(ctx, u.ID)
		return err
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !placed.Subtotal.Equal(decimal.RequireFromString("449")) {
		t.Fatalf("subtotal = %s", placed.Subtotal)
	}
	if !placed.Total.Equal(decimal.RequireFromString("498")) {
		t.Fatalf("total = %s, want 498 (49 shipping)", placed.Total)
	}
	if !strings.HasSuffix(placed.OrderNumber, "-0001") {
		t.Fatalf("order number %q does not carry order id %d", placed.OrderNumber, placed.ID)
	}

	// later price changes must not touch the order
	a.Price = decimal.NewFromInt(1)
	if err := c.Products.Update(ctx, a); err != nil {
		t.Fatalf("update product: %v", err)
	}

	detail, err := c.Sales.Orders.Get(ctx, placed.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if detail.Status != orders.StatusPending || len(detail.Items) != 2 {
		t.Fatalf("detail = %+v", detail)
	}
	if !detail.Items[0].Price.Equal(decimal.RequireFromString("199.5")) {
		t.Fatalf("snapshot price = %s", detail.Items[0].Price)
	}

	lines, _ := c.Sales.Carts.Lines(ctx, u.ID)
	if len(lines) != 0 {
		t.Fatalf("cart not cleared: %+v", lines)
	}

	list, err := c.Sales.Orders.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ItemCount != 2 || !list[0].Total.Equal(decimal.RequireFromString("449")) || list[0].Email != "a@b.com" {
		t.Fatalf("summary = %+v", list)
	}

	err = c.WithSalesTx(ctx, func(s *SalesTx) error {
		_, err := s.Orders.CreateFromCart(ctx, u.ID)
		return err
	})
	if !errors.Is(err, orders.ErrEmptyCart) {
		t.Fatalf("second checkout err = %v", err)
	}
}

func TestOrderStatus(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()
	if err := c.Sales.Orders.UpdateStatus(ctx, 1, "lost"); !errors.Is(err, orders.ErrInvalidStatus) {
		t.Fatalf("invalid status err = %v", err)
	}
	if err := c.Sales.Orders.UpdateStatus(ctx, 1, orders.StatusPaid); !errors.Is(err, orders.ErrNotFound) {
		t.Fatalf("missing order err = %v", err)
	}
}

func TestUsersAndRoles(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()
	u := seedUser(t, c, "Kund@Example.se ", accesscontrol.RoleUser)

	if _, err := c.Users.GetByEmail(ctx, "kund@example.se"); err != nil {
		t.Fatalf("lookup by normalized email: %v", err)
	}
	dup := &users.User{Email: "kund@example.se", Role: accesscontrol.RoleUser}
	if err := c.Users.Create(ctx, dup); !errors.Is(err, users.ErrDuplicateEmail) {
		t.Fatalf("duplicate err = %v", err)
	}

	if err := c.AccessControl.SetRole(ctx, u.ID, accesscontrol.RoleEmployee); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if role, _ := c.AccessControl.GetRole(ctx, u.ID); role != accesscontrol.RoleEmployee {
		t.Fatalf("role = %s", role)
	}
	if err := c.AccessControl.SetRole(ctx, 404, accesscontrol.RoleUser); !errors.Is(err, accesscontrol.ErrUserNotFound) {
		t.Fatalf("missing user err = %v", err)
	}

	if err := c.Users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.Users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := c.Users.GetByEmail(ctx, u.Email); !errors.Is(err, users.ErrNotFound) {
		t.Fatalf("deleted user still found: %v", err)
	}
}

func TestProductCatalog(t *testing.T) {
	c := newTestContainer(t)
	ctx := context.Background()

	skor := "Skor"
	p, _ := products.Fields{Name: "Sneakers Vit", Price: decimal.NewFromInt(899), Category: &skor}.Build(0)
	if err := c.Products.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	seedProduct(t, c, "Halsband", "149", 3)

	got, _ := c.Products.List(ctx, params.CatalogFilter{})
	if len(got) != 2 {
		t.Fatalf("unfiltered list = %d products", len(got))
	}
	got, _ = c.Products.List(ctx, params.CatalogFilter{Category: "Skor"})
	if len(got) != 1 || got[0].ID != p.ID {
		t.Fatalf("category filter = %+v", got)
	}
	got, _ = c.Products.List(ctx, params.CatalogFilter{Search: "sneak"})
	if len(got) != 1 {
		t.Fatalf("search filter = %+v", got)
	}
	inStock, _ := c.Products.ListInStock(ctx, 20)
	if len(inStock) != 1 || inStock[0].Name != "Halsband" {
		t.Fatalf("in stock = %+v", inStock)
	}

	if err := c.Products.Update(ctx, &products.Product{ID: 999, Name: "x"}); !errors.Is(err, products.ErrNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := c.Products.Delete(ctx, p.ID); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
}
