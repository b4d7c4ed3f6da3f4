package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/storage"
)

func product(id string, price int64, stock int) domain.Product {
	return domain.Product{ID: id, Name: id, Price: decimal.NewFromInt(price), StockQuantity: stock, Category: "dairy"}
}

func setup(t *testing.T) (*Store, *storage.Memory, *notify.Recorder) {
	t.Helper()
	mem := storage.NewMemory()
	rec := &notify.Recorder{}
	logger, _ := test.NewNullLogger()
	return NewStore(context.Background(), mem, rec, logger), mem, rec
}

func TestAddItem_Merges(t *testing.T) {
	ctx := context.Background()
	s, _, rec := setup(t)

	require.NoError(t, s.AddItem(ctx, product("p", 10, 20), 2))
	require.NoError(t, s.AddItem(ctx, product("p", 10, 20), 3))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)

	msgs := rec.All()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Added p to cart", msgs[0].Message)
	assert.Equal(t, "Updated p quantity in cart", msgs[1].Message)
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(t)
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.AddOne(ctx, product(id, 1, 5)))
	}
	require.NoError(t, s.AddOne(ctx, product("a", 1, 5)))

	var ids []string
	for _, it := range s.Items() {
		ids = append(ids, it.ProductID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestAddItem_RejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s, _, rec := setup(t)

	assert.ErrorIs(t, s.AddItem(ctx, product("p", 10, 5), 0), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.AddItem(ctx, product("p", 10, 5), -2), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.AddItem(ctx, domain.Product{Name: "no id"}, 1), domain.ErrInvalidInput)
	assert.Empty(t, s.Items())
	assert.Empty(t, rec.All())
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites", func(t *testing.T) {
		s, _, _ := setup(t)
		require.NoError(t, s.AddItem(ctx, product("p", 10, 20), 4))
		require.NoError(t, s.UpdateQuantity(ctx, "p", 2))
		assert.Equal(t, 2, s.ItemQuantity("p"))
	})

	for _, q := range []int{0, -1} {
		s, _, _ := setup(t)
		require.NoError(t, s.AddItem(ctx, product("p", 10, 20), 4))
		require.NoError(t, s.UpdateQuantity(ctx, "p", q))
		assert.False(t, s.IsInCart("p"), "quantity %d must remove", q)
	}

	t.Run("absent is a no-op", func(t *testing.T) {
		s, mem, _ := setup(t)
		require.NoError(t, s.UpdateQuantity(ctx, "ghost", 3))
		assert.Empty(t, s.Items())
		assert.Empty(t, mem.Keys())
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()
	s, _, rec := setup(t)
	require.NoError(t, s.AddOne(ctx, product("a", 1, 5)))
	require.NoError(t, s.AddOne(ctx, product("b", 1, 5)))
	rec.Drain()

	require.NoError(t, s.RemoveItem(ctx, "a"))
	require.NoError(t, s.RemoveItem(ctx, "a"))

	assert.Equal(t, []string{"b"}, []string{s.Items()[0].ProductID})
	msgs := rec.All()
	require.Len(t, msgs, 1, "absent removal must not notify")
	assert.Equal(t, "Removed a from cart", msgs[0].Message)
}

func TestClear_KeepsOpenFlag(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(t)
	require.NoError(t, s.AddOne(ctx, product("a", 1, 5)))
	s.Open()

	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Items())
	assert.True(t, s.IsOpen())

	s.Toggle()
	assert.False(t, s.IsOpen())
	s.Toggle()
	s.Close()
	assert.False(t, s.IsOpen())
}

func TestTotals(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(t)
	assert.True(t, s.TotalPrice().IsZero())
	assert.Equal(t, 0, s.TotalItems())

	require.NoError(t, s.AddItem(ctx, domain.Product{ID: "a", Name: "A", Price: decimal.RequireFromString("1.10"), StockQuantity: 9}, 3))
	require.NoError(t, s.AddItem(ctx, product("b", 100, 9), 2))
	require.NoError(t, s.UpdateQuantity(ctx, "a", 4))

	assert.Equal(t, 6, s.TotalItems())
	assert.True(t, decimal.RequireFromString("204.40").Equal(s.TotalPrice()), s.TotalPrice().String())
}

func TestInvariants_AfterMutationSequence(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(t)
	ops := []func() error{
		func() error { return s.AddItem(ctx, product("a", 3, 10), 2) },
		func() error { return s.AddItem(ctx, product("b", 7, 10), 1) },
		func() error { return s.UpdateQuantity(ctx, "a", -5) },
		func() error { return s.AddItem(ctx, product("a", 3, 10), 4) },
		func() error { return s.UpdateQuantity(ctx, "b", 6) },
		func() error { return s.RemoveItem(ctx, "zzz") },
		func() error { return s.AddItem(ctx, product("b", 7, 10), 1) },
		func() error { return s.UpdateQuantity(ctx, "a", 0) },
		func() error { return s.AddItem(ctx, product("c", 5, 10), 3) },
	}
	for i, op := range ops {
		require.NoError(t, op())

		want := decimal.Zero
		for _, it := range s.Items() {
			assert.GreaterOrEqual(t, it.Quantity, 1, "step %d", i)
			want = want.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		assert.True(t, want.Equal(s.TotalPrice()), "step %d", i)
	}
}

func TestOrderItems_OmitsPrices(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(t)
	require.NoError(t, s.AddItem(ctx, product("a", 3, 10), 2))
	require.NoError(t, s.AddItem(ctx, product("b", 7, 10), 1))

	assert.Equal(t, []domain.OrderItemRequest{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}}, s.OrderItems())
}

func TestPersistence_RehydratesItemsOnly(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := setup(t)
	require.NoError(t, s.AddItem(ctx, product("a", 3, 10), 2))
	s.Open()

	logger, _ := test.NewNullLogger()
	again := NewStore(ctx, mem, nil, logger)
	assert.Equal(t, s.OrderItems(), again.OrderItems())
	assert.True(t, s.TotalPrice().Equal(again.TotalPrice()))
	assert.False(t, again.IsOpen())

	raw, err := mem.Load(ctx, RecordKey)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "isOpen")
}

func TestPersistence_CorruptStateIsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Save(ctx, RecordKey, []byte("][")))

	logger, hook := test.NewNullLogger()
	s := NewStore(ctx, mem, nil, logger)
	assert.Empty(t, s.Items())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "discarding unreadable cart record", hook.LastEntry().Message)
}

func TestPersistence_DropsInvalidRows(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Save(ctx, RecordKey, []byte(`{"state":{"items":[
		{"id":"a","name":"A","price":"1","quantity":2},
		{"id":"b","name":"B","price":"1","quantity":0},
		{"id":"a","name":"A again","price":"1","quantity":1},
		{"id":"","name":"nameless","price":"1","quantity":1}
	]},"version":0}`)))

	logger, _ := test.NewNullLogger()
	s := NewStore(ctx, mem, nil, logger)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, 2, s.ItemQuantity("a"))
}

func TestReload_PicksUpExternalWrite(t *testing.T) {
	ctx := context.Background()
	s, mem, _ := setup(t)
	logger, _ := test.NewNullLogger()
	other := NewStore(ctx, mem, nil, logger)

	require.NoError(t, other.AddItem(ctx, product("x", 1, 3), 1))
	assert.False(t, s.IsInCart("x"))

	s.Reload(ctx)
	assert.True(t, s.IsInCart("x"))
}

type brokenStorage struct{ *storage.Memory }

func (brokenStorage) Save(context.Context, string, []byte) error { return errors.New("quota exceeded") }

func TestWriteThrough_FailureLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	rec := &notify.Recorder{}
	logger, _ := test.NewNullLogger()
	s := NewStore(ctx, brokenStorage{storage.NewMemory()}, rec, logger)

	err := s.AddItem(ctx, product("a", 1, 3), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, s.Items())
	assert.Empty(t, rec.All())
}
