package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when a record fails construction-time validation
var ErrInvalidInput = errors.New("invalid input")

// Product is a catalog entry as served by the storefront API
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Category      string          `json:"category,omitempty"`
	InStock       bool            `json:"inStock"`
	AverageRating float64         `json:"averageRating"`
	ReviewCount   int             `json:"reviewCount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// CartItem is one line of the shopper's cart
type CartItem struct {
	ProductID     string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Category      string          `json:"category,omitempty"`
	Quantity      int             `json:"quantity"`
	StockQuantity *int            `json:"stockQuantity,omitempty"`
}

// NewCartItem snapshots a product into a cart line
func NewCartItem(p Product, quantity int) (CartItem, error) {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
		return CartItem{}, ErrInvalidInput
	}
	if p.Price.IsNegative() || quantity < 1 {
		return CartItem{}, ErrInvalidInput
	}
	stock := p.StockQuantity
	return CartItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		ImageURL:      p.ImageURL,
		Category:      p.Category,
		Quantity:      quantity,
		StockQuantity: &stock,
	}, nil
}

// Subtotal returns price × quantity
func (c CartItem) Subtotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// ExceedsStock reports whether the quantity is above a known stock bound
func (c CartItem) ExceedsStock() bool {
	return c.StockQuantity != nil && c.Quantity > *c.StockQuantity
}

// OrderStatus is the server-reported state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every status the server may report
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus accepts a status name in any case
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range OrderStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", ErrInvalidInput
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentOnline         PaymentMethod = "ONLINE_PAYMENT"
	PaymentCard           PaymentMethod = "CARD_PAYMENT"
)

// OrderItem is an immutable line of a placed order
type OrderItem struct {
	ID           string          `json:"id,omitempty"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductImage string          `json:"productImage,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// Order as returned by the server
type Order struct {
	ID                    string          `json:"id"`
	CustomerID            string          `json:"customerId"`
	CustomerName          string          `json:"customerName,omitempty"`
	CustomerEmail         string          `json:"customerEmail,omitempty"`
	OrderItems            []OrderItem     `json:"orderItems"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	Status                OrderStatus     `json:"status"`
	PaymentMethod         PaymentMethod   `json:"paymentMethod,omitempty"`
	DeliveryAddress       string          `json:"deliveryAddress"`
	ContactNumber         string          `json:"contactNumber"`
	OrderNotes            string          `json:"orderNotes,omitempty"`
	OrderDate             time.Time       `json:"orderDate"`
	EstimatedDeliveryDate *time.Time      `json:"estimatedDeliveryDate,omitempty"`
	ActualDeliveryDate    *time.Time      `json:"actualDeliveryDate,omitempty"`
}

// TotalItems sums the quantities of all order lines
func (o Order) TotalItems() int {
	n := 0
	for _, it := range o.OrderItems {
		n += it.Quantity
	}
	return n
}

// OrderItemRequest is the minimal line sent on order creation; the server prices it
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

var contactNumber = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)

// IsContactNumber accepts 10 to 15 digits with an optional leading plus
func IsContactNumber(s string) bool { return contactNumber.MatchString(s) }

// CreateOrderRequest payload of the order-creation call
type CreateOrderRequest struct {
	OrderItems      []OrderItemRequest `json:"orderItems"`
	DeliveryAddress string             `json:"deliveryAddress"`
	ContactNumber   string             `json:"contactNumber"`
	OrderNotes      string             `json:"orderNotes,omitempty"`
}

// OrderStats aggregate figures for administrators
type OrderStats struct {
	TotalOrders      int64           `json:"totalOrders"`
	PendingOrders    int64           `json:"pendingOrders"`
	ProcessingOrders int64           `json:"processingOrders"`
	DeliveredOrders  int64           `json:"deliveredOrders"`
	CancelledOrders  int64           `json:"cancelledOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
}
