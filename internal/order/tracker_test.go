package order

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type fakeSource struct {
	mu       sync.Mutex
	orders   map[string]domain.Order
	gets     atomic.Int32
	gate     chan struct{}
	failNext error
	params   domain.PageParams
}

func newFakeSource() *fakeSource {
	return &fakeSource{orders: map[string]domain.Order{
		"o-1": {ID: "o-1", Status: domain.OrderStatusPending, PaymentMethod: domain.PaymentCard},
	}}
}

func (f *fakeSource) Order(ctx context.Context, id string) (*domain.Order, error) {
	f.gets.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &o, nil
}

func (f *fakeSource) MyOrders(_ context.Context, p domain.PageParams) (*domain.Page[domain.Order], error) {
	f.params = p
	return &domain.Page[domain.Order]{Content: []domain.Order{f.orders["o-1"]}, Size: p.Size, TotalElements: 1, TotalPages: 1, Last: true}, nil
}

func (f *fakeSource) AllOrders(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Order], error) {
	return f.MyOrders(ctx, p)
}

func (f *fakeSource) UpdateOrderStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return nil, err
	}
	o := f.orders[id]
	o.Status = status
	f.orders[id] = o
	return &o, nil
}

func (f *fakeSource) OrderStats(context.Context) (*domain.OrderStats, error) {
	return &domain.OrderStats{TotalOrders: int64(len(f.orders)), PendingOrders: 1}, nil
}

func (f *fakeSource) set(o domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
}

func TestTracker_ServesFreshFromCache(t *testing.T) {
	src := newFakeSource()
	tr := NewTracker(src, time.Minute, nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }
	ctx := context.Background()

	v, err := tr.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, "Pending", v.Status.Label)
	assert.Equal(t, "Card Payment", v.PaymentLabel)
	assert.True(t, v.Timeline[0].Current)

	src.set(domain.Order{ID: "o-1", Status: domain.OrderStatusShipped})
	now = now.Add(30 * time.Second)
	v, err = tr.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, v.Order.Status, "still fresh")
	assert.EqualValues(t, 1, src.gets.Load())

	now = now.Add(time.Minute)
	v, err = tr.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, v.Order.Status)
	assert.EqualValues(t, 2, src.gets.Load())
}

func TestTracker_Invalidate(t *testing.T) {
	src := newFakeSource()
	tr := NewTracker(src, 0, nil)
	ctx := context.Background()

	_, err := tr.Get(ctx, "o-1")
	require.NoError(t, err)
	src.set(domain.Order{ID: "o-1", Status: domain.OrderStatusProcessing})
	tr.Invalidate("o-1")

	v, err := tr.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, v.Order.Status)
}

func TestTracker_ConcurrentGetsShareOneFetch(t *testing.T) {
	src := newFakeSource()
	src.gate = make(chan struct{})
	tr := NewTracker(src, time.Minute, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tr.Get(context.Background(), "o-1")
			assert.NoError(t, err)
		}()
	}
	require.Eventually(t, func() bool { return src.gets.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	assert.EqualValues(t, 1, src.gets.Load())
}

func TestTracker_CancelledGetDoesNotFailOthers(t *testing.T) {
	src := newFakeSource()
	src.gate = make(chan struct{})
	tr := NewTracker(src, time.Minute, nil)

	cctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := tr.Get(cctx, "o-1")
		first <- err
	}()
	require.Eventually(t, func() bool { return src.gets.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() {
		v, err := tr.Get(context.Background(), "o-1")
		if err == nil && v.Order.ID != "o-1" {
			err = errors.New("wrong order " + v.Order.ID)
		}
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)
	close(src.gate)
	assert.NoError(t, <-second)
	assert.EqualValues(t, 1, src.gets.Load())
}

func TestTracker_UpdateStatus(t *testing.T) {
	src := newFakeSource()
	tr := NewTracker(src, time.Hour, nil)
	ctx := context.Background()
	_, err := tr.Get(ctx, "o-1")
	require.NoError(t, err)

	src.failNext = errors.New("forbidden")
	_, err = tr.UpdateStatus(ctx, "o-1", domain.OrderStatusShipped)
	require.Error(t, err)

	// failed update dropped the cached entry
	_, err = tr.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.gets.Load())

	v, err := tr.UpdateStatus(ctx, "o-1", domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.True(t, v.Timeline[2].Current)

	v, err = tr.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, v.Order.Status)
	assert.EqualValues(t, 2, src.gets.Load())
}

func TestTracker_ListDefaults(t *testing.T) {
	src := newFakeSource()
	tr := NewTracker(src, 0, nil)

	_, err := tr.Mine(context.Background(), domain.PageParams{})
	require.NoError(t, err)
	assert.Equal(t, domain.PageParams{Page: 0, Size: 10, SortBy: "orderDate", SortDir: "desc"}, src.params)

	_, err = tr.All(context.Background(), domain.PageParams{Page: 2, Size: 50, SortBy: "totalAmount", SortDir: "asc"})
	require.NoError(t, err)
	assert.Equal(t, domain.PageParams{Page: 2, Size: 50, SortBy: "totalAmount", SortDir: "asc"}, src.params)

	stats, err := tr.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalOrders)
}

func TestTracker_Remember(t *testing.T) {
	src := newFakeSource()
	tr := NewTracker(src, time.Hour, nil)
	tr.Remember(domain.Order{ID: "fresh", Status: domain.OrderStatusPending})

	v, err := tr.Get(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", v.Order.ID)
	assert.Zero(t, src.gets.Load())
}
