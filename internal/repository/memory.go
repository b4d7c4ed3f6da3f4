package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

// MemoryStore holds every sandbox table behind one lock
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	orders   map[string]domain.Order
	accounts map[string]Account
	emails   map[string]string
	tokens   map[string]Token
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]domain.Product),
		orders:   make(map[string]domain.Order),
		accounts: make(map[string]Account),
		emails:   make(map[string]string),
		tokens:   make(map[string]Token),
	}
}

// transaction-aware locking: inside WithTransaction the lock is already held
type txKey struct{}

func isTx(ctx context.Context) bool {
	b, ok := ctx.Value(txKey{}).(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

var _ ProductRepository = (*MemoryStore)(nil)

func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, ok := m.products[p.ID]; ok {
		return ErrConflict
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.InStock = p.StockQuantity > 0
	m.products[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.products[p.ID]; !ok {
		return ErrNotFound
	}
	p.InStock = p.StockQuantity > 0
	m.products[p.ID] = *p
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if !containsIgnoreCase(p.Name, f.NameSubstring) && !containsIgnoreCase(p.Description, f.NameSubstring) {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.InStockOnly && p.StockQuantity <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// MemoryOrders implements OrderRepository on the shared store
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = uuid.NewString()
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now().UTC()
	}
	for i := range o.OrderItems {
		if o.OrderItems[i].ID == "" {
			o.OrderItems[i].ID = uuid.NewString()
		}
	}
	mo.store.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneOrder(o)
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.orders[o.ID]; !ok {
		return ErrNotFound
	}
	mo.store.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (mo *MemoryOrders) List(ctx context.Context, f OrderFilter) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, o := range mo.store.orders {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.OrderItems = append([]domain.OrderItem(nil), o.OrderItems...)
	return o
}

// MemoryAccounts implements AccountRepository; emails are unique case-insensitively
type MemoryAccounts struct{ store *MemoryStore }

func NewMemoryAccounts(store *MemoryStore) *MemoryAccounts { return &MemoryAccounts{store: store} }

var _ AccountRepository = (*MemoryAccounts)(nil)

func (ma *MemoryAccounts) Create(ctx context.Context, a *Account) error {
	ma.store.wlock(ctx)
	defer ma.store.wunlock(ctx)
	key := strings.ToLower(a.Email)
	if _, taken := ma.store.emails[key]; taken {
		return ErrConflict
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	ma.store.accounts[a.ID] = *a
	ma.store.emails[key] = a.ID
	return nil
}

func (ma *MemoryAccounts) GetByID(ctx context.Context, id string) (*Account, error) {
	ma.store.rlock(ctx)
	defer ma.store.runlock(ctx)
	a, ok := ma.store.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (ma *MemoryAccounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	ma.store.rlock(ctx)
	defer ma.store.runlock(ctx)
	id, ok := ma.store.emails[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	a := ma.store.accounts[id]
	return &a, nil
}

// MemoryTokens implements TokenRepository
type MemoryTokens struct{ store *MemoryStore }

func NewMemoryTokens(store *MemoryStore) *MemoryTokens { return &MemoryTokens{store: store} }

var _ TokenRepository = (*MemoryTokens)(nil)

func (mt *MemoryTokens) Save(ctx context.Context, t Token) error {
	mt.store.wlock(ctx)
	defer mt.store.wunlock(ctx)
	mt.store.tokens[t.Value] = t
	return nil
}

func (mt *MemoryTokens) Get(ctx context.Context, value string) (*Token, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	t, ok := mt.store.tokens[value]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (mt *MemoryTokens) Delete(ctx context.Context, value string) error {
	mt.store.wlock(ctx)
	defer mt.store.wunlock(ctx)
	if _, ok := mt.store.tokens[value]; !ok {
		return ErrNotFound
	}
	delete(mt.store.tokens, value)
	return nil
}

// MemoryTx emulates a transaction with the store's write lock
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}
