package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"mogges/internal/domain/accesscontrol"
	"mogges/internal/domain/carts"
	"mogges/internal/domain/orders"
	"mogges/internal/domain/products"
	"mogges/internal/domain/users"
	"mogges/internal/params"

	"github.com/shopspring/decimal"
)

// NewMemoryContainer returns a Container backed by process memory. It is used
// in development when no database is configured and by the HTTP tests.
func NewMemoryContainer(gen *orders.OrderNumberGenerator) *Container {
	db := &memoryDB{data: newMemData(), gen: gen}
	base := memAccess{db: db}

	c := &Container{
		Users:         &memUsers{base},
		AccessControl: &memRoles{base},
		Products:      &memProducts{base},
		Sales: Sales{
			Carts:  &memCarts{base},
			Orders: &memOrders{base},
		},
	}
	c.withTx = db.withTx
	return c
}

type cartKey struct {
	userID    int64
	productID int64
}

type cartRow struct {
	quantity int
	seq      int64
}

type memOrderItem struct {
	id        int64
	productID int64
	name      string
	quantity  int
	price     decimal.Decimal
}

type memOrder struct {
	id        int64
	number    string
	userID    int64
	status    orders.Status
	createdAt time.Time
	items     []memOrderItem
}

type memData struct {
	users    map[int64]users.User
	products map[int64]products.Product
	cart     map[cartKey]cartRow
	orders   map[int64]*memOrder

	userSeq, productSeq, cartSeq, orderSeq, orderItemSeq int64
}

func newMemData() *memData {
	return &memData{
		users:    map[int64]users.User{},
		products: map[int64]products.Product{},
		cart:     map[cartKey]cartRow{},
		orders:   map[int64]*memOrder{},
	}
}

func (d *memData) clone() *memData {
	c := *d
	c.users = make(map[int64]users.User, len(d.users))
	for k, v := range d.users {
		c.users[k] = v
	}
	c.products = make(map[int64]products.Product, len(d.products))
	for k, v := range d.products {
		c.products[k] = v
	}
	c.cart = make(map[cartKey]cartRow, len(d.cart))
	for k, v := range d.cart {
		c.cart[k] = v
	}
	c.orders = make(map[int64]*memOrder, len(d.orders))
	for k, v := range d.orders {
		o := *v
		o.items = append([]memOrderItem(nil), v.items...)
		c.orders[k] = &o
	}
	return &c
}

type memoryDB struct {
	mu   sync.RWMutex
	data *memData
	gen  *orders.OrderNumberGenerator
}

// withTx holds the write lock for the whole unit of work and applies it to a
// copy; the copy replaces the live data only when fn succeeds.
func (db *memoryDB) withTx(ctx context.Context, fn func(s *SalesTx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := db.data.clone()
	base := memAccess{db: db, tx: work}
	if err := fn(&SalesTx{Carts: &memCarts{base}, Orders: &memOrders{base}}); err != nil {
		return err
	}

	db.data = work
	return nil
}

// memAccess routes reads and writes either to the live data under the lock or,
// inside withTx, to the transaction's private copy.
type memAccess struct {
	db *memoryDB
	tx *memData
}

func (a memAccess) read(fn func(d *memData) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.db.mu.RLock()
	defer a.db.mu.RUnlock()
	return fn(a.db.data)
}

func (a memAccess) write(fn func(d *memData) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	return fn(a.db.data)
}

// --- users ---

type memUsers struct{ memAccess }

func (s *memUsers) Create(_ context.Context, u *users.User) error {
	return s.write(func(d *memData) error {
		u.Email = users.NormalizeEmail(u.Email)
		for _, existing := range d.users {
			if existing.Email == u.Email {
				return users.ErrDuplicateEmail
			}
		}
		d.userSeq++
		u.ID = d.userSeq
		u.CreatedAt = time.Now().UTC()
		d.users[u.ID] = *u
		return nil
	})
}

func (s *memUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	email = users.NormalizeEmail(email)
	var out *users.User
	err := s.read(func(d *memData) error {
		for _, u := range d.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return users.ErrNotFound
	})
	return out, err
}

func (s *memUsers) List(_ context.Context) ([]*users.User, error) {
	var out []*users.User
	err := s.read(func(d *memData) error {
		for _, u := range d.users {
			u := u
			out = append(out, &u)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (s *memUsers) UpdatePassword(_ context.Context, id int64, digest string) error {
	return s.write(func(d *memData) error {
		u, ok := d.users[id]
		if !ok {
			return users.ErrNotFound
		}
		u.Password.SetDigest(digest)
		d.users[id] = u
		return nil
	})
}

func (s *memUsers) Delete(_ context.Context, id int64) error {
	return s.write(func(d *memData) error {
		delete(d.users, id)
		for k := range d.cart {
			if k.userID == id {
				delete(d.cart, k)
			}
		}
		for oid, o := range d.orders {
			if o.userID == id {
				delete(d.orders, oid)
			}
		}
		return nil
	})
}

// --- roles ---

type memRoles struct{ memAccess }

func (s *memRoles) GetRole(_ context.Context, userID int64) (accesscontrol.RoleName, error) {
	var role accesscontrol.RoleName
	err := s.read(func(d *memData) error {
		u, ok := d.users[userID]
		if !ok {
			return accesscontrol.ErrUserNotFound
		}
		role = u.Role
		return nil
	})
	return role, err
}

func (s *memRoles) SetRole(_ context.Context, userID int64, role accesscontrol.RoleName) error {
	return s.write(func(d *memData) error {
		u, ok := d.users[userID]
		if !ok {
			return accesscontrol.ErrUserNotFound
		}
		u.Role = role
		d.users[userID] = u
		return nil
	})
}

// --- products ---

type memProducts struct{ memAccess }

func (s *memProducts) List(_ context.Context, f params.CatalogFilter) ([]*products.Product, error) {
	search := strings.ToLower(f.Search)
	out := []*products.Product{}
	err := s.read(func(d *memData) error {
		for _, p := range d.products {
			if f.Category != "" && p.Category != f.Category {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Description), search) &&
				!strings.Contains(strings.ToLower(p.Category), search) {
				continue
			}
			p := p
			out = append(out, &p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (s *memProducts) ListInStock(ctx context.Context, limit int) ([]*products.Product, error) {
	all, err := s.List(ctx, params.CatalogFilter{})
	if err != nil {
		return nil, err
	}
	out := []*products.Product{}
	for _, p := range all {
		if p.Stock > 0 {
			out = append(out, p)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *memProducts) GetByID(_ context.Context, id int64) (*products.Product, error) {
	var out *products.Product
	err := s.read(func(d *memData) error {
		p, ok := d.products[id]
		if !ok {
			return products.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (s *memProducts) Create(_ context.Context, p *products.Product) error {
	return s.write(func(d *memData) error {
		d.productSeq++
		p.ID = d.productSeq
		d.products[p.ID] = *p
		return nil
	})
}

func (s *memProducts) Update(_ context.Context, p *products.Product) error {
	return s.write(func(d *memData) error {
		if _, ok := d.products[p.ID]; !ok {
			return products.ErrNotFound
		}
		d.products[p.ID] = *p
		return nil
	})
}

func (s *memProducts) SetImage(_ context.Context, id int64, image string) error {
	return s.write(func(d *memData) error {
		p, ok := d.products[id]
		if !ok {
			return products.ErrNotFound
		}
		p.Image = image
		d.products[id] = p
		return nil
	})
}

func (s *memProducts) Delete(_ context.Context, id int64) error {
	return s.write(func(d *memData) error {
		delete(d.products, id)
		for k := range d.cart {
			if k.productID == id {
				delete(d.cart, k)
			}
		}
		return nil
	})
}

// --- carts ---

type memCarts struct{ memAccess }

func (s *memCarts) Lines(_ context.Context, userID int64) ([]carts.Line, error) {
	var out []carts.Line
	err := s.read(func(d *memData) error {
		out = linesFor(d, userID)
		return nil
	})
	return out, err
}

func linesFor(d *memData, userID int64) []carts.Line {
	type seqLine struct {
		seq  int64
		line carts.Line
	}
	var rows []seqLine
	for k, row := range d.cart {
		if k.userID != userID {
			continue
		}
		p, ok := d.products[k.productID]
		if !ok {
			continue
		}
		rows = append(rows, seqLine{row.seq, carts.Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Category:  p.Category,
			Quantity:  row.quantity,
		}})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	lines := make([]carts.Line, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.line)
	}
	return lines
}

func (s *memCarts) SetQuantity(_ context.Context, userID, productID int64, quantity int) error {
	if quantity < 1 {
		return carts.ErrInvalidQuantity
	}
	return s.write(func(d *memData) error {
		return upsertCart(d, userID, productID, func(int) int { return quantity })
	})
}

func (s *memCarts) AddQuantity(_ context.Context, userID, productID int64, delta int) error {
	if delta < 1 {
		return carts.ErrInvalidQuantity
	}
	return s.write(func(d *memData) error {
		return upsertCart(d, userID, productID, func(cur int) int { return cur + delta })
	})
}

func upsertCart(d *memData, userID, productID int64, next func(cur int) int) error {
	if _, ok := d.products[productID]; !ok {
		return carts.ErrUnknownProduct
	}
	k := cartKey{userID, productID}
	row, ok := d.cart[k]
	if !ok {
		d.cartSeq++
		row.seq = d.cartSeq
	}
	row.quantity = next(row.quantity)
	d.cart[k] = row
	return nil
}

func (s *memCarts) Remove(_ context.Context, userID, productID int64) error {
	return s.write(func(d *memData) error {
		delete(d.cart, cartKey{userID, productID})
		return nil
	})
}

func (s *memCarts) Clear(_ context.Context, userID int64) error {
	return s.write(func(d *memData) error {
		clearCart(d, userID)
		return nil
	})
}

func clearCart(d *memData, userID int64) {
	for k := range d.cart {
		if k.userID == userID {
			delete(d.cart, k)
		}
	}
}

// --- orders ---

type memOrders struct{ memAccess }

func summarize(d *memData, o *memOrder) (orders.Summary, bool) {
	if len(o.items) == 0 {
		return orders.Summary{}, false
	}
	u, ok := d.users[o.userID]
	if !ok {
		return orders.Summary{}, false
	}
	total := decimal.Zero
	for _, it := range o.items {
		total = total.Add(it.price.Mul(decimal.NewFromInt(int64(it.quantity))))
	}
	return orders.Summary{
		ID:          o.id,
		OrderNumber: o.number,
		Email:       u.Email,
		Status:      o.status,
		CreatedAt:   o.createdAt,
		ItemCount:   len(o.items),
		Total:       total,
	}, true
}

func (s *memOrders) collect(match func(o *memOrder) bool) ([]orders.Summary, error) {
	out := []orders.Summary{}
	err := s.read(func(d *memData) error {
		for _, o := range d.orders {
			if !match(o) {
				continue
			}
			if sum, ok := summarize(d, o); ok {
				out = append(out, sum)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (s *memOrders) List(_ context.Context) ([]orders.Summary, error) {
	return s.collect(func(*memOrder) bool { return true })
}

func (s *memOrders) ListForUser(_ context.Context, userID int64, limit int) ([]orders.Summary, error) {
	out, err := s.collect(func(o *memOrder) bool { return o.userID == userID })
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memOrders) Get(_ context.Context, id int64) (*orders.Detail, error) {
	var out *orders.Detail
	err := s.read(func(d *memData) error {
		o, ok := d.orders[id]
		if !ok {
			return orders.ErrNotFound
		}
		u, ok := d.users[o.userID]
		if !ok {
			return orders.ErrNotFound
		}
		det := &orders.Detail{
			ID:          o.id,
			OrderNumber: o.number,
			Email:       u.Email,
			Status:      o.status,
			CreatedAt:   o.createdAt,
			Items:       make([]orders.Item, 0, len(o.items)),
		}
		for _, it := range o.items {
			det.Items = append(det.Items, orders.Item{
				ID:          it.id,
				ProductName: it.name,
				Quantity:    it.quantity,
				Price:       it.price,
			})
		}
		out = det
		return nil
	})
	return out, err
}

func (s *memOrders) UpdateStatus(_ context.Context, id int64, status orders.Status) error {
	if !status.Valid() {
		return orders.ErrInvalidStatus
	}
	return s.write(func(d *memData) error {
		o, ok := d.orders[id]
		if !ok {
			return orders.ErrNotFound
		}
		o.status = status
		return nil
	})
}

func (s *memOrders) CreateFromCart(_ context.Context, userID int64) (*orders.Placed, error) {
	var placed *orders.Placed
	err := s.write(func(d *memData) error {
		lines := linesFor(d, userID)
		if len(lines) == 0 {
			return orders.ErrEmptyCart
		}

		subtotal := carts.Subtotal(lines)
		shipping := orders.ShippingFor(subtotal)

		d.orderSeq++
		o := &memOrder{
			id:        d.orderSeq,
			number:    s.db.gen.Generate(userID, d.orderSeq),
			userID:    userID,
			status:    orders.StatusPending,
			createdAt: time.Now().UTC(),
		}
		for _, l := range lines {
			d.orderItemSeq++
			o.items = append(o.items, memOrderItem{
				id:        d.orderItemSeq,
				productID: l.ProductID,
				name:      l.Name,
				quantity:  l.Quantity,
				price:     l.Price,
			})
		}
		d.orders[o.id] = o
		clearCart(d, userID)

		placed = &orders.Placed{
			ID:          o.id,
			OrderNumber: o.number,
			Subtotal:    subtotal,
			Shipping:    shipping,
			Total:       subtotal.Add(shipping),
		}
		return nil
	})
	return placed, err
}
