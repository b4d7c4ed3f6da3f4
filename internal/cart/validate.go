package cart

import (
	"strings"

	"storefront/internal/domain"
)

// ValidationKind names the cart-level rule that failed
type ValidationKind string

const (
	KindEmpty             ValidationKind = "empty"
	KindInvalidQuantity   ValidationKind = "invalid_quantity"
	KindInsufficientStock ValidationKind = "insufficient_stock"
)

// ValidationError blocks checkout. Products and ProductIDs list the offending lines.
type ValidationError struct {
	Kind       ValidationKind
	Products   []string
	ProductIDs []string
}

// Sentinels for errors.Is; only the kind is compared
var (
	ErrEmpty             = &ValidationError{Kind: KindEmpty}
	ErrInvalidQuantity   = &ValidationError{Kind: KindInvalidQuantity}
	ErrInsufficientStock = &ValidationError{Kind: KindInsufficientStock}
)

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindEmpty:
		return "Your cart is empty"
	case KindInvalidQuantity:
		return "Some items have invalid quantities"
	case KindInsufficientStock:
		return "Insufficient stock for: " + strings.Join(e.Products, ", ")
	default:
		return "invalid cart"
	}
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

// ValidateItems applies the cart-level checkout rules in order: non-empty, positive
// quantities, quantities within known stock. Lines without a stock bound pass the
// stock rule.
func ValidateItems(items []domain.CartItem) error {
	if len(items) == 0 {
		return &ValidationError{Kind: KindEmpty}
	}

	var bad []domain.CartItem
	for _, it := range items {
		if it.Quantity <= 0 {
			bad = append(bad, it)
		}
	}
	if len(bad) > 0 {
		return newValidationError(KindInvalidQuantity, bad)
	}

	for _, it := range items {
		if it.ExceedsStock() {
			bad = append(bad, it)
		}
	}
	if len(bad) > 0 {
		return newValidationError(KindInsufficientStock, bad)
	}
	return nil
}

func newValidationError(kind ValidationKind, items []domain.CartItem) *ValidationError {
	e := &ValidationError{Kind: kind}
	for _, it := range items {
		e.Products = append(e.Products, it.Name)
		e.ProductIDs = append(e.ProductIDs, it.ProductID)
	}
	return e
}

// Validate checks the current cart without side effects
func (s *Store) Validate() error {
	return ValidateItems(s.Items())
}

// ValidateCart reports whether checkout may proceed and notifies the reason when not
func (s *Store) ValidateCart() bool {
	if err := s.Validate(); err != nil {
		s.notifier.Error(err.Error())
		return false
	}
	return true
}
