package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

const productsPath = "/api/products"

func (c *Client) productPage(ctx context.Context, path string, q url.Values) (*domain.Page[domain.Product], error) {
	var page domain.Page[domain.Product]
	if err := c.do(ctx, call{kind: Query, method: http.MethodGet, path: path, query: q}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Products lists the catalog, newest first unless p says otherwise
func (c *Client) Products(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Product], error) {
	return c.productPage(ctx, productsPath, pageQuery(p.WithDefaults(12, "createdAt", "desc")))
}

// Product fetches a single product
func (c *Client) Product(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, call{kind: Query, method: http.MethodGet, path: productsPath + "/" + url.PathEscape(id)}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) SearchProducts(ctx context.Context, term string, p domain.PageParams) (*domain.Page[domain.Product], error) {
	q := pageQuery(p.WithDefaults(12, "", ""))
	q.Set("searchTerm", term)
	return c.productPage(ctx, productsPath+"/search", q)
}

func (c *Client) ProductsByPriceRange(ctx context.Context, min, max decimal.Decimal, p domain.PageParams) (*domain.Page[domain.Product], error) {
	if min.GreaterThan(max) {
		return nil, fmt.Errorf("price range %s..%s: %w", min, max, domain.ErrInvalidInput)
	}
	q := pageQuery(p.WithDefaults(12, "", ""))
	q.Set("minPrice", min.String())
	q.Set("maxPrice", max.String())
	return c.productPage(ctx, productsPath+"/price-range", q)
}

func (c *Client) TopRatedProducts(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Product], error) {
	return c.productPage(ctx, productsPath+"/top-rated", pageQuery(p.WithDefaults(12, "", "")))
}

func (c *Client) RecentProducts(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Product], error) {
	return c.productPage(ctx, productsPath+"/recent", pageQuery(p.WithDefaults(12, "", "")))
}

func (c *Client) MostReviewedProducts(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Product], error) {
	return c.productPage(ctx, productsPath+"/most-reviewed", pageQuery(p.WithDefaults(12, "", "")))
}

func (c *Client) InStockProducts(ctx context.Context, p domain.PageParams) (*domain.Page[domain.Product], error) {
	return c.productPage(ctx, productsPath+"/in-stock", pageQuery(p.WithDefaults(12, "", "")))
}
