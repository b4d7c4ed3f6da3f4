package cart

import (
	"context"

	"storefront/internal/domain"
)

// SyncResult describes what a reconciliation pass did
type SyncResult struct {
	Changed bool
	Removed []string
}

// SyncWithProducts refreshes cart lines from a catalog snapshot. Matching lines take
// the catalog's display fields and stock; lines whose product is gone or out of stock
// are dropped. Quantities are never raised and dropped lines never come back, so a
// second pass with the same snapshot changes nothing.
func (s *Store) SyncWithProducts(ctx context.Context, catalog []domain.Product) (SyncResult, error) {
	byID := make(map[string]domain.Product, len(catalog))
	for _, p := range catalog {
		byID[p.ID] = p
	}

	s.mu.Lock()
	var res SyncResult
	next := make([]domain.CartItem, 0, len(s.items))
	for _, it := range cloneItems(s.items) {
		p, ok := byID[it.ProductID]
		if !ok || p.StockQuantity <= 0 {
			res.Removed = append(res.Removed, it.ProductID)
			continue
		}
		stock := p.StockQuantity
		it.Name = p.Name
		it.Price = p.Price
		it.ImageURL = p.ImageURL
		it.Category = p.Category
		it.StockQuantity = &stock
		next = append(next, it)
	}

	res.Changed = !sameItems(s.items, next)
	if res.Changed {
		if err := s.commit(ctx, next); err != nil {
			s.mu.Unlock()
			return SyncResult{}, err
		}
	}
	s.mu.Unlock()

	if len(res.Removed) > 0 {
		s.log.WithField("removed", res.Removed).Info("cart reconciled against catalog")
		s.notifier.Info("Cart updated with latest product information")
	}
	return res, nil
}

func sameItems(a, b []domain.CartItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ProductID != y.ProductID || x.Name != y.Name || x.ImageURL != y.ImageURL ||
			x.Category != y.Category || x.Quantity != y.Quantity || !x.Price.Equal(y.Price) {
			return false
		}
		if (x.StockQuantity == nil) != (y.StockQuantity == nil) {
			return false
		}
		if x.StockQuantity != nil && *x.StockQuantity != *y.StockQuantity {
			return false
		}
	}
	return true
}
