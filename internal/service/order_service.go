package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// DeliveryLead is how far ahead the estimated delivery date is set
const DeliveryLead = 72 * time.Hour

var (
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
)

// StockError reports a line that cannot be reserved
type StockError struct {
	Product   string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Insufficient stock for product: %s. Available: %d, Requested: %d", e.Product, e.Available, e.Requested)
}

// ErrNotEnoughStock matches any *StockError
var ErrNotEnoughStock = errors.New("not enough stock")

func (e *StockError) Is(target error) bool { return target == ErrNotEnoughStock }

// OrderService places orders against the catalog and moves them through their statuses
type OrderService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
	now      func() time.Time
}

func NewOrderService(products repository.ProductRepository, orders repository.OrderRepository, tx repository.TxManager) *OrderService {
	return &OrderService{products: products, orders: orders, tx: tx, now: func() time.Time { return time.Now().UTC() }}
}

// CreateOrder checks and reserves stock for every line atomically, then stores a
// PENDING cash-on-delivery order priced from the catalog.
func (s *OrderService) CreateOrder(ctx context.Context, customer domain.User, req domain.CreateOrderRequest) (*domain.Order, error) {
	if customer.ID == "" || len(req.OrderItems) == 0 {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" || strings.TrimSpace(req.ContactNumber) == "" {
		return nil, ErrInvalidInput
	}
	for _, it := range req.OrderItems {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, ErrInvalidInput
		}
	}

	var created *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		reserved := make(map[string]*domain.Product)
		lines := make([]domain.OrderItem, 0, len(req.OrderItems))
		total := decimal.Zero
		for _, it := range req.OrderItems {
			p, ok := reserved[it.ProductID]
			if !ok {
				var err error
				if p, err = s.products.GetByID(ctx, it.ProductID); err != nil {
					return fmt.Errorf("product %s: %w", it.ProductID, err)
				}
			}
			if p.StockQuantity < it.Quantity {
				return &StockError{Product: p.Name, Available: p.StockQuantity, Requested: it.Quantity}
			}
			p.StockQuantity -= it.Quantity
			reserved[p.ID] = p

			sub := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			total = total.Add(sub)
			lines = append(lines, domain.OrderItem{
				ProductID:    p.ID,
				ProductName:  p.Name,
				ProductImage: p.ImageURL,
				Price:        p.Price,
				Quantity:     it.Quantity,
				Subtotal:     sub,
			})
		}
		for _, p := range reserved {
			if err := s.products.Update(ctx, p); err != nil {
				return err
			}
		}

		now := s.now()
		eta := now.Add(DeliveryLead)
		o := domain.Order{
			CustomerID:            customer.ID,
			CustomerName:          customer.FullName,
			CustomerEmail:         customer.Email,
			OrderItems:            lines,
			TotalAmount:           total,
			Status:                domain.OrderStatusPending,
			PaymentMethod:         domain.PaymentCashOnDelivery,
			DeliveryAddress:       strings.TrimSpace(req.DeliveryAddress),
			ContactNumber:         strings.TrimSpace(req.ContactNumber),
			OrderNotes:            strings.TrimSpace(req.OrderNotes),
			OrderDate:             now,
			EstimatedDeliveryDate: &eta,
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return err
		}
		created = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetOrder returns the order if requester owns it or is an administrator
func (s *OrderService) GetOrder(ctx context.Context, requester domain.User, id string) (*domain.Order, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester.Role != domain.RoleAdmin && o.CustomerID != requester.ID {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *OrderService) MyOrders(ctx context.Context, customer domain.User, p domain.PageParams) (domain.Page[domain.Order], error) {
	return s.list(ctx, repository.OrderFilter{CustomerID: customer.ID}, p)
}

func (s *OrderService) AllOrders(ctx context.Context, p domain.PageParams) (domain.Page[domain.Order], error) {
	return s.list(ctx, repository.OrderFilter{}, p)
}

func (s *OrderService) list(ctx context.Context, f repository.OrderFilter, p domain.PageParams) (domain.Page[domain.Order], error) {
	list, err := s.orders.List(ctx, f)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}
	p = p.WithDefaults(10, "orderDate", "desc")
	less := func(a, b domain.Order) bool { return a.OrderDate.Before(b.OrderDate) }
	switch p.SortBy {
	case "totalAmount":
		less = func(a, b domain.Order) bool { return a.TotalAmount.LessThan(b.TotalAmount) }
	case "status":
		less = func(a, b domain.Order) bool { return a.Status < b.Status }
	}
	desc := strings.EqualFold(p.SortDir, "desc")
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
	return paginate(list, p), nil
}

// UpdateStatus moves an order to status. Delivered and cancelled orders are final.
// Cancelling puts the reserved stock back.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	if _, err := domain.ParseOrderStatus(string(status)); err != nil {
		return nil, ErrInvalidInput
	}
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status == domain.OrderStatusDelivered || o.Status == domain.OrderStatusCancelled {
			return fmt.Errorf("order %s is %s: %w", o.ID, o.Status, ErrInvalidState)
		}
		if status == domain.OrderStatusCancelled {
			for _, it := range o.OrderItems {
				p, err := s.products.GetByID(ctx, it.ProductID)
				if errors.Is(err, repository.ErrNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				p.StockQuantity += it.Quantity
				if err := s.products.Update(ctx, p); err != nil {
					return err
				}
			}
		}
		o.Status = status
		if status == domain.OrderStatusDelivered {
			now := s.now()
			o.ActualDeliveryDate = &now
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Stats counts orders per status; revenue sums delivered orders only
func (s *OrderService) Stats(ctx context.Context) (domain.OrderStats, error) {
	list, err := s.orders.List(ctx, repository.OrderFilter{})
	if err != nil {
		return domain.OrderStats{}, err
	}
	st := domain.OrderStats{TotalOrders: int64(len(list)), TotalRevenue: decimal.Zero}
	for _, o := range list {
		switch o.Status {
		case domain.OrderStatusPending:
			st.PendingOrders++
		case domain.OrderStatusProcessing:
			st.ProcessingOrders++
		case domain.OrderStatusDelivered:
			st.DeliveredOrders++
			st.TotalRevenue = st.TotalRevenue.Add(o.TotalAmount)
		case domain.OrderStatusCancelled:
			st.CancelledOrders++
		}
	}
	return st, nil
}
