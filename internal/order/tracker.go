package order

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"storefront/internal/domain"
)

// DefaultStaleTime is how long a fetched order is served without refetching
const DefaultStaleTime = 5 * time.Minute

// Source is the server side of order tracking
type Source interface {
	Order(ctx context.Context, id string) (*domain.Order, error)
	MyOrders(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Order], error)
	AllOrders(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Order], error)
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	OrderStats(ctx context.Context) (*domain.OrderStats, error)
}

// View is an order together with its interpreted status
type View struct {
	Order        domain.Order `json:"order"`
	Status       StatusInfo   `json:"status"`
	Timeline     []Step       `json:"timeline"`
	PaymentLabel string       `json:"paymentLabel,omitempty"`
}

// NewView interprets o
func NewView(o domain.Order) View {
	v := View{Order: o, Status: Describe(o.Status), Timeline: Timeline(o.Status)}
	if o.PaymentMethod != "" {
		v.PaymentLabel = PaymentMethodLabel(o.PaymentMethod)
	}
	return v
}

type cached struct {
	order     domain.Order
	fetchedAt time.Time
}

// Tracker fetches orders by id and keeps them for a stale window. Concurrent lookups
// of the same id share one request.
type Tracker struct {
	src       Source
	staleTime time.Duration
	now       func() time.Time
	log       logrus.FieldLogger

	mu    sync.Mutex
	cache map[string]cached
	group singleflight.Group
}

func NewTracker(src Source, staleTime time.Duration, log logrus.FieldLogger) *Tracker {
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	return &Tracker{
		src:       src,
		staleTime: staleTime,
		now:       time.Now,
		log:       log.WithField("component", "orders"),
		cache:     make(map[string]cached),
	}
}

// Get returns the order, from cache while it is fresh
func (t *Tracker) Get(ctx context.Context, id string) (View, error) {
	t.mu.Lock()
	c, ok := t.cache[id]
	t.mu.Unlock()
	if ok && t.now().Sub(c.fetchedAt) < t.staleTime {
		return NewView(c.order), nil
	}

	// the shared fetch is detached so one caller leaving does not fail the others
	ch := t.group.DoChan(id, func() (interface{}, error) {
		o, err := t.src.Order(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		t.store(*o)
		return *o, nil
	})
	select {
	case <-ctx.Done():
		return View{}, fmt.Errorf("order %s: %w", id, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return View{}, fmt.Errorf("order %s: %w", id, r.Err)
		}
		return NewView(r.Val.(domain.Order)), nil
	}
}

func (t *Tracker) store(o domain.Order) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache[o.ID] = cached{order: o, fetchedAt: t.now()}
}

// Invalidate forces the next Get of id to hit the server
func (t *Tracker) Invalidate(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cache, id)
}

// Remember seeds the cache, e.g. with the order returned by checkout
func (t *Tracker) Remember(o domain.Order) {
	if o.ID == "" {
		return
	}
	t.store(o)
}

// Mine lists the signed-in customer's orders, newest first by default
func (t *Tracker) Mine(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Order], error) {
	page, err := t.src.MyOrders(ctx, p.WithDefaults(10, "orderDate", "desc"))
	if err != nil {
		return nil, fmt.Errorf("my orders: %w", err)
	}
	return page, nil
}

// All lists every order; administrators only
func (t *Tracker) All(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Order], error) {
	page, err := t.src.AllOrders(ctx, p.WithDefaults(10, "orderDate", "desc"))
	if err != nil {
		return nil, fmt.Errorf("all orders: %w", err)
	}
	return page, nil
}

// Stats returns the administrator dashboard figures
func (t *Tracker) Stats(ctx context.Context) (*domain.OrderStats, error) {
	s, err := t.src.OrderStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	return s, nil
}

// UpdateStatus asks the server to move an order to status. The cached copy is dropped
// first so a failed update never leaves a stale entry behind.
func (t *Tracker) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (View, error) {
	t.Invalidate(id)
	o, err := t.src.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return View{}, fmt.Errorf("update order %s: %w", id, err)
	}
	t.store(*o)
	t.log.WithField("order_id", id).WithField("status", o.Status).Info("order status updated")
	return NewView(*o), nil
}
