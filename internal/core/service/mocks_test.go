package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velocar/velocar/internal/core/domain"
	"github.com/velocar/velocar/internal/port"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Hand-rolled in-memory fakes for the repository ports. The cart fake
// reproduces the store's merge-on-duplicate upsert under a mutex so the
// concurrency tests exercise the same invariant the real unique key enforces.

type mockCatalog struct {
	mu       sync.Mutex
	users    map[int64]domain.User
	products map[int64]domain.Product
	engines  map[int64]domain.ProductEngine
	colors   map[int64]domain.ProductColor
	trims    map[int64]domain.ProductTrim
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		users:    make(map[int64]domain.User),
		products: make(map[int64]domain.Product),
		engines:  make(map[int64]domain.ProductEngine),
		colors:   make(map[int64]domain.ProductColor),
		trims:    make(map[int64]domain.ProductTrim),
	}
}

func (m *mockCatalog) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *mockCatalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *mockCatalog) GetEngine(ctx context.Context, id int64) (*domain.ProductEngine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.engines[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *mockCatalog) GetColor(ctx context.Context, id int64) (*domain.ProductColor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.colors[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *mockCatalog) GetTrim(ctx context.Context, id int64) (*domain.ProductTrim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.trims[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (m *mockCatalog) setBasePrice(productID int64, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.products[productID]
	p.BasePrice = dec(price)
	m.products[productID] = p
}

type mockCartRepo struct {
	mu      sync.Mutex
	catalog *mockCatalog
	nextID  int64
	lines   map[int64]domain.CartLine
}

func newMockCartRepo(catalog *mockCatalog) *mockCartRepo {
	return &mockCartRepo{catalog: catalog, lines: make(map[int64]domain.CartLine)}
}

func (m *mockCartRepo) UpsertLine(ctx context.Context, userID int64, sel domain.Selection, qty int) (*domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, line := range m.lines {
		if line.UserID == userID && line.Selection == sel {
			line.Quantity += qty
			line.UpdatedAt = time.Now()
			m.lines[id] = line
			return &line, nil
		}
	}

	m.nextID++
	line := domain.CartLine{
		ID:        m.nextID,
		UserID:    userID,
		Selection: sel,
		Quantity:  qty,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.lines[line.ID] = line
	return &line, nil
}

func (m *mockCartRepo) GetLine(ctx context.Context, lineID int64) (*domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if line, ok := m.lines[lineID]; ok {
		return &line, nil
	}
	return nil, nil
}

func (m *mockCartRepo) UpdateQuantity(ctx context.Context, lineID int64, qty int) (*domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	line, ok := m.lines[lineID]
	if !ok {
		return nil, nil
	}
	line.Quantity = qty
	line.UpdatedAt = time.Now()
	m.lines[lineID] = line
	return &line, nil
}

func (m *mockCartRepo) DeleteLine(ctx context.Context, lineID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lines[lineID]; !ok {
		return false, nil
	}
	delete(m.lines, lineID)
	return true, nil
}

func (m *mockCartRepo) Clear(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, line := range m.lines {
		if line.UserID == userID {
			delete(m.lines, id)
			removed++
		}
	}
	return removed, nil
}

func (m *mockCartRepo) ListByUser(ctx context.Context, userID int64) ([]domain.CartLineView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var views []domain.CartLineView
	for _, line := range m.lines {
		if line.UserID != userID {
			continue
		}
		v := domain.CartLineView{CartLine: line}
		v.Product = m.catalog.products[line.ProductID]
		if line.EngineID != 0 {
			e := m.catalog.engines[line.EngineID]
			v.Engine = &e
		}
		if line.ColorID != 0 {
			c := m.catalog.colors[line.ColorID]
			v.Color = &c
		}
		if line.TrimID != 0 {
			t := m.catalog.trims[line.TrimID]
			v.Trim = &t
		}
		v.UnitPrice = domain.ComposePrice(v.Product, v.Engine, v.Color, v.Trim)
		views = append(views, v)
	}
	// Ids are monotonic, so id-descending equals newest-first.
	sort.Slice(views, func(i, j int) bool { return views[i].ID > views[j].ID })
	return views, nil
}

func (m *mockCartRepo) userLines(userID int64) []domain.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	var lines []domain.CartLine
	for _, line := range m.lines {
		if line.UserID == userID {
			lines = append(lines, line)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID > lines[j].ID })
	return lines
}

// mockOrderRepo emulates the transactional CreateFromCart over the cart and
// catalog fakes. failErr injects a fault at the transaction boundary: when
// set, the call fails and no state changes, exactly like a rolled-back
// transaction. conflictsLeft makes the next N calls report a store race.
type mockOrderRepo struct {
	mu            sync.Mutex
	catalog       *mockCatalog
	cart          *mockCartRepo
	orders        map[string]domain.Order
	sequence      []string
	nextItemID    int64
	failErr       error
	conflictsLeft int
	calls         int
}

func newMockOrderRepo(catalog *mockCatalog, cart *mockCartRepo) *mockOrderRepo {
	return &mockOrderRepo{catalog: catalog, cart: cart, orders: make(map[string]domain.Order)}
}

func (m *mockOrderRepo) CreateFromCart(ctx context.Context, userID int64, shipping domain.ShippingInfo) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		return nil, port.ErrConflict
	}
	if m.failErr != nil {
		return nil, m.failErr
	}

	lines := m.cart.userLines(userID)
	if len(lines) == 0 {
		return nil, nil
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    domain.OrderStatusCreated,
		Shipping:  shipping,
		CreatedAt: time.Now(),
	}
	total := dec("0")
	for _, line := range lines {
		product, _ := m.catalog.GetProduct(ctx, line.ProductID)
		if product == nil {
			return nil, fmt.Errorf("product %d vanished", line.ProductID)
		}
		engine, _ := m.catalog.GetEngine(ctx, line.EngineID)
		color, _ := m.catalog.GetColor(ctx, line.ColorID)
		trim, _ := m.catalog.GetTrim(ctx, line.TrimID)
		unit := domain.ComposePrice(*product, engine, color, trim)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))

		m.nextItemID++
		order.Items = append(order.Items, domain.OrderItem{
			ID:           m.nextItemID,
			OrderID:      order.ID,
			Selection:    line.Selection,
			Quantity:     line.Quantity,
			PricePerUnit: unit,
		})
	}
	order.TotalPrice = total

	m.orders[order.ID] = order
	m.sequence = append(m.sequence, order.ID)
	if _, err := m.cart.Clear(ctx, userID); err != nil {
		return nil, err
	}
	return &order, nil
}

func (m *mockOrderRepo) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[orderID]; ok {
		return &o, nil
	}
	return nil, nil
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []domain.Order
	for i := len(m.sequence) - 1; i >= 0; i-- {
		if o := m.orders[m.sequence[i]]; o.UserID == userID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

type mockFavoriteRepo struct {
	mu     sync.Mutex
	nextID int64
	favs   map[int64]domain.Favorite
}

func newMockFavoriteRepo() *mockFavoriteRepo {
	return &mockFavoriteRepo{favs: make(map[int64]domain.Favorite)}
}

func (m *mockFavoriteRepo) Insert(ctx context.Context, userID, productID int64) (*domain.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.favs {
		if f.UserID == userID && f.ProductID == productID {
			return nil, port.ErrDuplicateKey
		}
	}
	m.nextID++
	fav := domain.Favorite{ID: m.nextID, UserID: userID, ProductID: productID, CreatedAt: time.Now()}
	m.favs[fav.ID] = fav
	return &fav, nil
}

func (m *mockFavoriteRepo) Delete(ctx context.Context, userID, productID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, f := range m.favs {
		if f.UserID == userID && f.ProductID == productID {
			delete(m.favs, id)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFavoriteRepo) Clear(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, f := range m.favs {
		if f.UserID == userID {
			delete(m.favs, id)
			removed++
		}
	}
	return removed, nil
}

func (m *mockFavoriteRepo) ListByUser(ctx context.Context, userID int64) ([]domain.FavoriteView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var views []domain.FavoriteView
	for _, f := range m.favs {
		if f.UserID == userID {
			views = append(views, domain.FavoriteView{Favorite: f})
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID > views[j].ID })
	return views, nil
}

func (m *mockFavoriteRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.favs)
}

type mockCache struct {
	mu    sync.Mutex
	idem  map[string]bool
	locks map[int64]bool
}

func newMockCache() *mockCache {
	return &mockCache{idem: make(map[string]bool), locks: make(map[int64]bool)}
}

func (m *mockCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idem[key] {
		return false, nil
	}
	m.idem[key] = true
	return true, nil
}

func (m *mockCache) ClearIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idem, key)
	return nil
}

func (m *mockCache) AcquireCheckoutLock(ctx context.Context, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[userID] {
		return false, nil
	}
	m.locks[userID] = true
	return true, nil
}

func (m *mockCache) ReleaseCheckoutLock(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, userID)
	return nil
}
