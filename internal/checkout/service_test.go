package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/storage"
)

type fakeOrders struct {
	calls  int
	got    domain.CreateOrderRequest
	err    error
	before func()
}

func (f *fakeOrders) CreateOrder(_ context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	f.calls++
	f.got = req
	if f.before != nil {
		f.before()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Order{ID: "o-1", Status: domain.OrderStatusPending, TotalAmount: decimal.NewFromInt(200)}, nil
}

type rejection struct{}

func (rejection) Error() string       { return "status 400" }
func (rejection) UserMessage() string { return "Insufficient stock for product: Milk" }

func setup(t *testing.T) (*Service, *cart.Store, *fakeOrders, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	logger, _ := test.NewNullLogger()
	c := cart.NewStore(context.Background(), storage.NewMemory(), rec, logger)
	orders := &fakeOrders{}
	return NewService(c, orders, rec, logger), c, orders, rec
}

func fill(t *testing.T, c *cart.Store) {
	t.Helper()
	p := domain.Product{ID: "milk", Name: "Milk", Price: decimal.NewFromInt(100), StockQuantity: 5}
	require.NoError(t, c.AddItem(context.Background(), p, 2))
}

func TestPlaceOrder_Success(t *testing.T) {
	svc, c, orders, rec := setup(t)
	fill(t, c)
	rec.Drain()

	order, err := svc.PlaceOrder(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, "o-1", order.ID)
	assert.Equal(t, []domain.OrderItemRequest{{ProductID: "milk", Quantity: 2}}, orders.got.OrderItems)
	assert.Empty(t, c.Items())

	last, _ := rec.Last()
	assert.Equal(t, notify.Notification{Level: notify.LevelSuccess, Message: "Order placed successfully!"}, last)
}

func TestPlaceOrder_EmptyCartNotifiesAndBlocks(t *testing.T) {
	svc, _, orders, rec := setup(t)

	_, err := svc.PlaceOrder(context.Background(), validForm())
	assert.ErrorIs(t, err, cart.ErrEmpty)
	assert.Zero(t, orders.calls)
	last, _ := rec.Last()
	assert.Equal(t, "Your cart is empty", last.Message)
}

func TestPlaceOrder_FormErrorsBlockSilently(t *testing.T) {
	svc, c, orders, rec := setup(t)
	fill(t, c)
	rec.Drain()

	_, err := svc.PlaceOrder(context.Background(), Form{DeliveryAddress: "short", ContactNumber: "1"})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, orders.calls)
	assert.Empty(t, rec.All())
	assert.Len(t, c.Items(), 1)
}

func TestPlaceOrder_ServerRejectionKeepsCart(t *testing.T) {
	svc, c, orders, rec := setup(t)
	fill(t, c)
	rec.Drain()
	orders.err = rejection{}

	_, err := svc.PlaceOrder(context.Background(), validForm())
	require.Error(t, err)
	assert.True(t, errors.As(err, new(rejection)))
	assert.Equal(t, 2, c.ItemQuantity("milk"))

	last, _ := rec.Last()
	assert.Equal(t, notify.LevelError, last.Level)
	assert.Equal(t, "Insufficient stock for product: Milk", last.Message)
}

func TestPlaceOrder_GenericFailureMessage(t *testing.T) {
	svc, c, orders, rec := setup(t)
	fill(t, c)
	orders.err = errors.New("boom")

	_, err := svc.PlaceOrder(context.Background(), validForm())
	require.Error(t, err)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to place order. Please try again.", last.Message)
}

func TestPlaceOrder_AbandonedResponseIsNotApplied(t *testing.T) {
	svc, c, orders, rec := setup(t)
	fill(t, c)
	rec.Drain()

	ctx, cancel := context.WithCancel(context.Background())
	orders.before = cancel

	order, err := svc.PlaceOrder(ctx, validForm())
	assert.ErrorIs(t, err, ErrAbandoned)
	require.NotNil(t, order)
	assert.Equal(t, 2, c.ItemQuantity("milk"))
	assert.Empty(t, rec.All())
}

func TestPlaceOrder_AbandonedFailureIsSilent(t *testing.T) {
	svc, c, orders, rec := setup(t)
	fill(t, c)
	rec.Drain()

	ctx, cancel := context.WithCancel(context.Background())
	orders.before = cancel
	orders.err = context.Canceled

	order, err := svc.PlaceOrder(ctx, validForm())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, order)
	assert.Equal(t, 2, c.ItemQuantity("milk"))
	assert.Empty(t, rec.All())
}
