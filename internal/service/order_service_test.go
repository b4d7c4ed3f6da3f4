package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

var (
	jane  = domain.User{ID: "u-jane", FullName: "Jane Doe", Email: "jane@example.com", Role: domain.RoleCustomer}
	john  = domain.User{ID: "u-john", FullName: "John Roe", Email: "john@example.com", Role: domain.RoleCustomer}
	admin = domain.User{ID: "u-admin", FullName: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin}
)

func setup(t *testing.T) (*ProductService, *OrderService) {
	t.Helper()
	store := repository.NewMemoryStore()
	ordersRepo := repository.NewMemoryOrders(store)
	tx := repository.NewMemoryTx(store)
	return NewProductService(store), NewOrderService(store, ordersRepo, tx)
}

func request(lines ...domain.OrderItemRequest) domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		OrderItems:      lines,
		DeliveryAddress: "12 Long Street, Springfield",
		ContactNumber:   "+15550001111",
	}
}

func TestCreateOrderAndCancel(t *testing.T) {
	ctx := context.Background()
	ps, os := setup(t)
	p1, err := ps.Create(ctx, domain.Product{Name: "A", Price: dec("10.50"), StockQuantity: 5})
	if err != nil {
		t.Fatalf("create p1: %v", err)
	}
	p2, err := ps.Create(ctx, domain.Product{Name: "B", Price: dec("20"), StockQuantity: 2})
	if err != nil {
		t.Fatalf("create p2: %v", err)
	}

	o, err := os.CreateOrder(ctx, jane, request(
		domain.OrderItemRequest{ProductID: p1.ID, Quantity: 3},
		domain.OrderItemRequest{ProductID: p2.ID, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if o.Status != domain.OrderStatusPending || o.PaymentMethod != domain.PaymentCashOnDelivery {
		t.Fatalf("unexpected initial state: %s %s", o.Status, o.PaymentMethod)
	}
	if !o.TotalAmount.Equal(dec("71.50")) {
		t.Fatalf("total expected 71.50, got %s", o.TotalAmount)
	}
	if o.OrderItems[0].ProductName != "A" || !o.OrderItems[0].Subtotal.Equal(dec("31.50")) {
		t.Fatalf("line not priced from catalog: %+v", o.OrderItems[0])
	}
	if o.EstimatedDeliveryDate == nil || o.CustomerEmail != jane.Email {
		t.Fatalf("order metadata missing: %+v", o)
	}

	p1After, _ := ps.GetByID(ctx, p1.ID)
	p2After, _ := ps.GetByID(ctx, p2.ID)
	if p1After.StockQuantity != 2 || p2After.StockQuantity != 0 {
		t.Fatalf("stock not decreased: %v %v", p1After.StockQuantity, p2After.StockQuantity)
	}

	o2, err := os.UpdateStatus(ctx, o.ID, domain.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if o2.Status != domain.OrderStatusCancelled {
		t.Fatalf("expected cancelled")
	}

	p1R, _ := ps.GetByID(ctx, p1.ID)
	p2R, _ := ps.GetByID(ctx, p2.ID)
	if p1R.StockQuantity != 5 || p2R.StockQuantity != 2 {
		t.Fatalf("stock not restored: %v %v", p1R.StockQuantity, p2R.StockQuantity)
	}
}

func TestCreateOrder_NotEnoughStock(t *testing.T) {
	ctx := context.Background()
	ps, os := setup(t)
	p1, _ := ps.Create(ctx, domain.Product{Name: "Milk", Price: dec("1"), StockQuantity: 1})
	p2, _ := ps.Create(ctx, domain.Product{Name: "Eggs", Price: dec("1"), StockQuantity: 9})

	_, err := os.CreateOrder(ctx, jane, request(
		domain.OrderItemRequest{ProductID: p2.ID, Quantity: 2},
		domain.OrderItemRequest{ProductID: p1.ID, Quantity: 2},
	))
	if !errors.Is(err, ErrNotEnoughStock) {
		t.Fatalf("expected not enough stock, got %v", err)
	}
	want := "Insufficient stock for product: Milk. Available: 1, Requested: 2"
	if err.Error() != want {
		t.Fatalf("message: %q", err.Error())
	}
	// nothing reserved
	p2After, _ := ps.GetByID(ctx, p2.ID)
	if p2After.StockQuantity != 9 {
		t.Fatalf("partial reservation leaked: %d", p2After.StockQuantity)
	}
}

func TestCreateOrder_RepeatedLineCountsTogether(t *testing.T) {
	ctx := context.Background()
	ps, os := setup(t)
	p, _ := ps.Create(ctx, domain.Product{Name: "Tea", Price: dec("2"), StockQuantity: 3})
	_, err := os.CreateOrder(ctx, jane, request(
		domain.OrderItemRequest{ProductID: p.ID, Quantity: 2},
		domain.OrderItemRequest{ProductID: p.ID, Quantity: 2},
	))
	if !errors.Is(err, ErrNotEnoughStock) {
		t.Fatalf("expected not enough stock, got %v", err)
	}
}

func TestCreateOrder_InvalidInput(t *testing.T) {
	ctx := context.Background()
	ps, os := setup(t)
	p1, _ := ps.Create(ctx, domain.Product{Name: "A", Price: dec("10"), StockQuantity: 5})
	if _, err := os.CreateOrder(ctx, domain.User{}, request(domain.OrderItemRequest{ProductID: p1.ID, Quantity: 1})); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for anonymous customer, got %v", err)
	}
	if _, err := os.CreateOrder(ctx, jane, request(domain.OrderItemRequest{ProductID: p1.ID, Quantity: 0})); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if _, err := os.CreateOrder(ctx, jane, request()); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty order, got %v", err)
	}
	if _, err := os.CreateOrder(ctx, jane, request(domain.OrderItemRequest{ProductID: "nope", Quantity: 1})); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetOrder_Access(t *testing.T) {
	ctx := context.Background()
	ps, os := setup(t)
	p, _ := ps.Create(ctx, domain.Product{Name: "A", Price: dec("1"), StockQuantity: 5})
	o, err := os.CreateOrder(ctx, jane, request(domain.OrderItemRequest{ProductID: p.ID, Quantity: 1}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.GetOrder(ctx, jane, o.ID); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if _, err := os.GetOrder(ctx, admin, o.ID); err != nil {
		t.Fatalf("admin: %v", err)
	}
	if _, err := os.GetOrder(ctx, john, o.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestMyOrders_OnlyOwn(t *testing.T) {
	ctx := context.Background()
	ps, os := setup(t)
	p, _ := ps.Create(ctx, domain.Product{Name: "A", Price: dec("1"), StockQuantity: 50})
	for i := 0; i < 3; i++ {
		if _, err := os.CreateOrder(ctx, jane, request(domain.OrderItemRequest{ProductID: p.ID, Quantity: 1})); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := os.CreateOrder(ctx, john, request(domain.OrderItemRequest{ProductID: p.ID, Quantity: 1})); err != nil {
		t.Fatal(err)
	}

	page, err := os.MyOrders(ctx, jane, domain.PageParams{Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalElements != 3 || len(page.Content) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	for _, o := range page.Content {
		if o.CustomerID != jane.ID {
			t.Fatalf("foreign order leaked: %s", o.CustomerID)
		}
	}
	all, _ := os.AllOrders(ctx, domain.PageParams{})
	if all.TotalElements != 4 {
		t.Fatalf("all orders: %d", all.TotalElements)
	}
}

func TestUpdateStatus_TerminalStates(t *testing.T) {
	ctx := context.Background()
	ps, os := setup(t)
	p, _ := ps.Create(ctx, domain.Product{Name: "A", Price: dec("1"), StockQuantity: 10})
	o, _ := os.CreateOrder(ctx, jane, request(domain.OrderItemRequest{ProductID: p.ID, Quantity: 2}))

	for _, st := range []domain.OrderStatus{domain.OrderStatusProcessing, domain.OrderStatusShipped, domain.OrderStatusDelivered} {
		if _, err := os.UpdateStatus(ctx, o.ID, st); err != nil {
			t.Fatalf("move to %s: %v", st, err)
		}
	}
	got, _ := os.GetOrder(ctx, admin, o.ID)
	if got.ActualDeliveryDate == nil {
		t.Fatalf("delivery date not set")
	}
	if _, err := os.UpdateStatus(ctx, o.ID, domain.OrderStatusCancelled); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected invalid state, got %v", err)
	}
	if _, err := os.UpdateStatus(ctx, o.ID, "LOST"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	pp, _ := ps.GetByID(ctx, p.ID)
	if pp.StockQuantity != 8 {
		t.Fatalf("delivered order must keep its stock: %d", pp.StockQuantity)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	ps, os := setup(t)
	p, _ := ps.Create(ctx, domain.Product{Name: "A", Price: dec("2.50"), StockQuantity: 100})
	mk := func(qty int) *domain.Order {
		o, err := os.CreateOrder(ctx, jane, request(domain.OrderItemRequest{ProductID: p.ID, Quantity: qty}))
		if err != nil {
			t.Fatal(err)
		}
		return o
	}
	d := mk(2)
	c := mk(4)
	mk(1)
	pr := mk(1)
	_, _ = os.UpdateStatus(ctx, d.ID, domain.OrderStatusDelivered)
	_, _ = os.UpdateStatus(ctx, c.ID, domain.OrderStatusCancelled)
	_, _ = os.UpdateStatus(ctx, pr.ID, domain.OrderStatusProcessing)

	st, err := os.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalOrders != 4 || st.PendingOrders != 1 || st.ProcessingOrders != 1 || st.DeliveredOrders != 1 || st.CancelledOrders != 1 {
		t.Fatalf("unexpected counts: %+v", st)
	}
	if !st.TotalRevenue.Equal(dec("5")) {
		t.Fatalf("revenue counts delivered orders only, got %s", st.TotalRevenue)
	}
}
