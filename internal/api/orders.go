package api

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/domain"
)

const ordersPath = "/api/orders"

func (c *Client) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	var o domain.Order
	if err := c.do(ctx, call{kind: Mutation, method: http.MethodPost, path: ordersPath, body: req}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) Order(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := c.do(ctx, call{kind: Query, method: http.MethodGet, path: ordersPath + "/" + url.PathEscape(id)}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) orderPage(ctx context.Context, path string, p domain.PageParams) (*domain.Page[domain.Order], error) {
	var page domain.Page[domain.Order]
	q := pageQuery(p.WithDefaults(10, "orderDate", "desc"))
	if err := c.do(ctx, call{kind: Query, method: http.MethodGet, path: path, query: q}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// MyOrders lists the signed-in customer's orders
func (c *Client) MyOrders(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Order], error) {
	return c.orderPage(ctx, ordersPath+"/my-orders", p)
}

// AllOrders lists every order; admin only
func (c *Client) AllOrders(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Order], error) {
	return c.orderPage(ctx, ordersPath+"/admin/all", p)
}

// UpdateOrderStatus moves an order to status; admin only
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	var o domain.Order
	q := url.Values{"status": {string(status)}}
	err := c.do(ctx, call{kind: Mutation, method: http.MethodPut, path: ordersPath + "/" + url.PathEscape(id) + "/status", query: q}, &o)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) OrderStats(ctx context.Context) (*domain.OrderStats, error) {
	var s domain.OrderStats
	if err := c.do(ctx, call{kind: Query, method: http.MethodGet, path: ordersPath + "/admin/statistics"}, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
