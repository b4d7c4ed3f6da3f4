package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func intp(v int) *int { return &v }

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.CartItem
		want  error
	}{
		{name: "empty", items: nil, want: ErrEmpty},
		{
			name:  "zero quantity",
			items: []domain.CartItem{{ProductID: "a", Name: "A", Quantity: 0}},
			want:  ErrInvalidQuantity,
		},
		{
			name:  "over stock",
			items: []domain.CartItem{{ProductID: "a", Name: "A", Quantity: 6, StockQuantity: intp(5)}},
			want:  ErrInsufficientStock,
		},
		{
			name: "invalid quantity wins over stock",
			items: []domain.CartItem{
				{ProductID: "a", Name: "A", Quantity: 6, StockQuantity: intp(5)},
				{ProductID: "b", Name: "B", Quantity: -1},
			},
			want: ErrInvalidQuantity,
		},
		{
			name: "unknown bound is exempt",
			items: []domain.CartItem{
				{ProductID: "a", Name: "A", Quantity: 500},
				{ProductID: "b", Name: "B", Quantity: 5, StockQuantity: intp(5)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItems(tt.items)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateCart_StockScenario(t *testing.T) {
	ctx := context.Background()
	s, _, rec := setup(t)
	require.NoError(t, s.AddItem(ctx, product("A", 100, 5), 2))

	require.NoError(t, s.UpdateQuantity(ctx, "A", 6))
	assert.False(t, s.ValidateCart())

	err := s.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, KindInsufficientStock, verr.Kind)
	assert.Equal(t, []string{"A"}, verr.ProductIDs)
	last, _ := rec.Last()
	assert.Equal(t, "Insufficient stock for: A", last.Message)

	require.NoError(t, s.UpdateQuantity(ctx, "A", 5))
	assert.True(t, s.ValidateCart())
}

func TestValidateCart_Empty(t *testing.T) {
	s, _, rec := setup(t)
	assert.False(t, s.ValidateCart())
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, "Your cart is empty", last.Message)
}
