// Package cart holds the shopper's cart: merge-on-add line items, quantity edits,
// write-through persistence, validation and reconciliation against the catalog.
package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/storage"
)

const (
	// RecordKey is the durable key of the cart record
	RecordKey     = "grocery-cart-storage"
	recordVersion = 0
)

// persisted shape; the open flag is intentionally not part of it
type state struct {
	Items []domain.CartItem `json:"items"`
}

// Store is the authoritative client-side cart. Mutations are serialized and each one
// is written to storage before it becomes visible in memory.
type Store struct {
	mu       sync.Mutex
	items    []domain.CartItem
	isOpen   bool
	record   *storage.Record[state]
	notifier notify.Notifier
	log      logrus.FieldLogger
}

// NewStore rehydrates the cart from storage. Missing or corrupt state yields an empty
// cart, never an error.
func NewStore(ctx context.Context, s storage.Storage, n notify.Notifier, log logrus.FieldLogger) *Store {
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	st := &Store{
		record:   storage.NewRecord[state](s, RecordKey, recordVersion),
		notifier: n,
		log:      log.WithField("component", "cart"),
	}
	st.items = st.load(ctx)
	return st
}

func (s *Store) load(ctx context.Context) []domain.CartItem {
	persisted, err := s.record.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return []domain.CartItem{}
	case err != nil:
		s.log.WithError(err).Warn("discarding unreadable cart record")
		return []domain.CartItem{}
	}
	return sanitize(persisted.Items, s.log)
}

// sanitize drops rows that break the cart invariants (non-positive quantity, missing id,
// duplicate id) so hand-edited or foreign records cannot poison the store.
func sanitize(items []domain.CartItem, log logrus.FieldLogger) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 || seen[it.ProductID] {
			log.WithField("product_id", it.ProductID).Warn("dropping invalid persisted cart row")
			continue
		}
		seen[it.ProductID] = true
		out = append(out, it)
	}
	return out
}

// Reload replaces the in-memory cart with whatever storage currently holds
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.load(ctx)
}

// commit persists next and, only on success, makes it current. Caller holds mu.
func (s *Store) commit(ctx context.Context, next []domain.CartItem) error {
	if err := s.record.Save(ctx, state{Items: next}); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	s.items = next
	return nil
}

func (s *Store) index(productID string) int {
	for i, it := range s.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem merges quantity into an existing line or appends a new one
func (s *Store) AddItem(ctx context.Context, p domain.Product, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("add %s: quantity %d: %w", p.ID, quantity, domain.ErrInvalidInput)
	}

	s.mu.Lock()
	var msg string
	next := cloneItems(s.items)
	if i := s.index(p.ID); i >= 0 {
		next[i].Quantity += quantity
		msg = fmt.Sprintf("Updated %s quantity in cart", p.Name)
	} else {
		item, err := domain.NewCartItem(p, quantity)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("add %s: %w", p.ID, err)
		}
		next = append(next, item)
		msg = fmt.Sprintf("Added %s to cart", p.Name)
	}
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.log.WithField("product_id", p.ID).WithField("quantity", quantity).Debug("adding to cart")
	s.notifier.Success(msg)
	return nil
}

// AddOne adds a single unit of the product
func (s *Store) AddOne(ctx context.Context, p domain.Product) error {
	return s.AddItem(ctx, p, 1)
}

// RemoveItem deletes the line for productID; absent ids are a no-op
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	i := s.index(productID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	removed := s.items[i]
	next := make([]domain.CartItem, 0, len(s.items)-1)
	next = append(next, cloneItems(s.items[:i])...)
	next = append(next, cloneItems(s.items[i+1:])...)
	err := s.commit(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notifier.Success(fmt.Sprintf("Removed %s from cart", removed.Name))
	return nil
}

// UpdateQuantity overwrites a line's quantity; zero or below removes the line
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(productID)
	if i < 0 {
		return nil
	}
	next := cloneItems(s.items)
	next[i].Quantity = quantity
	s.log.WithField("product_id", productID).WithField("quantity", quantity).Debug("updating cart item quantity")
	return s.commit(ctx, next)
}

// Clear empties the cart; the open flag is left as is
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	err := s.commit(ctx, []domain.CartItem{})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.log.Debug("emptying cart")
	s.notifier.Success("Cart cleared")
	return nil
}

func (s *Store) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = !s.isOpen
}

func (s *Store) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = true
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = false
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

// Items returns a copy of the cart lines in insertion order
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// TotalItems sums quantities
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice sums price × quantity over all lines
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemQuantity returns 0 when the product is not in the cart
func (s *Store) ItemQuantity(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

func (s *Store) IsInCart(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index(productID) >= 0
}

// OrderItems projects the cart onto the order-creation payload. Prices and names are
// not sent; the server prices the order.
func (s *Store) OrderItems() []domain.OrderItemRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.OrderItemRequest, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, domain.OrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	for i, it := range items {
		if it.StockQuantity != nil {
			v := *it.StockQuantity
			it.StockQuantity = &v
		}
		out[i] = it
	}
	return out
}
