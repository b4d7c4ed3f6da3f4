package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/notify"
)

// ErrAbandoned is returned when the order call completed after the caller gave up.
// The order may exist on the server; the cart is left as it was.
var ErrAbandoned = errors.New("checkout abandoned before the order was confirmed")

// OrderCreator submits an order to the server
type OrderCreator interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error)
}

// Service drives a checkout from cart to placed order
type Service struct {
	cart     *cart.Store
	orders   OrderCreator
	notifier notify.Notifier
	log      logrus.FieldLogger
	tracer   trace.Tracer
}

func NewService(c *cart.Store, orders OrderCreator, n notify.Notifier, log logrus.FieldLogger) *Service {
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	return &Service{
		cart:     c,
		orders:   orders,
		notifier: n,
		log:      log.WithField("component", "checkout"),
		tracer:   otel.Tracer("storefront.checkout"),
	}
}

// userMessage is implemented by errors that carry text fit for the shopper
type userMessage interface {
	UserMessage() string
}

// PlaceOrder validates the cart and the form, creates the order and empties the cart.
// Cart problems are notified; form problems come back as FieldErrors only. A server
// rejection leaves the cart untouched.
func (s *Service) PlaceOrder(ctx context.Context, f Form) (*domain.Order, error) {
	items := s.cart.Items()
	ctx, span := s.tracer.Start(ctx, "Checkout.PlaceOrder",
		trace.WithAttributes(
			attribute.Int("cart.lines", len(items)),
			attribute.Int("cart.units", s.cart.TotalItems()),
		),
	)
	defer span.End()

	if err := cart.ValidateItems(items); err != nil {
		s.notifier.Error(err.Error())
		span.SetStatus(codes.Error, "cart rejected")
		return nil, err
	}
	req, err := Validate(items, f)
	if err != nil {
		span.SetStatus(codes.Error, "form rejected")
		return nil, err
	}

	order, err := s.orders.CreateOrder(ctx, req)
	if err != nil && ctx.Err() != nil {
		s.log.WithError(err).Warn("checkout abandoned while the order was in flight")
		span.SetStatus(codes.Error, "abandoned")
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order creation failed")
		msg := "Failed to place order. Please try again."
		var um userMessage
		if errors.As(err, &um) && um.UserMessage() != "" {
			msg = um.UserMessage()
		}
		s.notifier.Error(msg)
		s.log.WithError(err).Warn("order creation failed")
		return nil, fmt.Errorf("create order: %w", err)
	}

	if ctx.Err() != nil {
		s.log.WithField("order_id", order.ID).Warn("order response arrived after checkout was abandoned")
		span.SetStatus(codes.Error, "abandoned")
		return order, ErrAbandoned
	}

	span.SetAttributes(attribute.String("order.id", order.ID))
	if err := s.cart.Clear(ctx); err != nil {
		// order already exists, keep going
		s.log.WithError(err).WithField("order_id", order.ID).Error("clearing cart after checkout")
	}
	s.notifier.Success("Order placed successfully!")
	s.log.WithField("order_id", order.ID).WithField("total", order.TotalAmount.String()).Info("order placed")
	return order, nil
}
