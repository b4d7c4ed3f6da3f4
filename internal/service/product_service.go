package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

var ErrInvalidInput = errors.New("invalid input")

// ProductService serves the catalog
type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if strings.TrimSpace(p.Name) == "" || p.Price.IsNegative() || p.StockQuantity < 0 {
		return nil, ErrInvalidInput
	}
	cp := p
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// SetStock overwrites the stock level of a product
func (s *ProductService) SetStock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	if qty < 0 {
		return nil, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.StockQuantity = qty
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List pages through the catalog; p is expected to carry defaults already
func (s *ProductService) List(ctx context.Context, f repository.ProductFilter, p domain.PageParams) (domain.Page[domain.Product], error) {
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return domain.Page[domain.Product]{}, err
	}
	sortProducts(list, p.SortBy, p.SortDir)
	return paginate(list, p), nil
}

// Search matches the term against names and descriptions
func (s *ProductService) Search(ctx context.Context, term string, p domain.PageParams) (domain.Page[domain.Product], error) {
	if strings.TrimSpace(term) == "" {
		return domain.Page[domain.Product]{}, ErrInvalidInput
	}
	return s.List(ctx, repository.ProductFilter{NameSubstring: strings.TrimSpace(term)}, p)
}

func (s *ProductService) PriceRange(ctx context.Context, min, max decimal.Decimal, p domain.PageParams) (domain.Page[domain.Product], error) {
	if min.IsNegative() || min.GreaterThan(max) {
		return domain.Page[domain.Product]{}, ErrInvalidInput
	}
	return s.List(ctx, repository.ProductFilter{MinPrice: &min, MaxPrice: &max}, p)
}

func (s *ProductService) TopRated(ctx context.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
	p.SortBy, p.SortDir = "averageRating", "desc"
	return s.List(ctx, repository.ProductFilter{}, p)
}

func (s *ProductService) Recent(ctx context.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
	p.SortBy, p.SortDir = "createdAt", "desc"
	return s.List(ctx, repository.ProductFilter{}, p)
}

func (s *ProductService) MostReviewed(ctx context.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
	p.SortBy, p.SortDir = "reviewCount", "desc"
	return s.List(ctx, repository.ProductFilter{}, p)
}

func (s *ProductService) InStock(ctx context.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
	return s.List(ctx, repository.ProductFilter{InStockOnly: true}, p)
}

func sortProducts(list []domain.Product, by, dir string) {
	less := func(a, b domain.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch by {
	case "name":
		less = func(a, b domain.Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "price":
		less = func(a, b domain.Product) bool { return a.Price.LessThan(b.Price) }
	case "averageRating":
		less = func(a, b domain.Product) bool { return a.AverageRating < b.AverageRating }
	case "reviewCount":
		less = func(a, b domain.Product) bool { return a.ReviewCount < b.ReviewCount }
	case "stockQuantity":
		less = func(a, b domain.Product) bool { return a.StockQuantity < b.StockQuantity }
	}
	desc := strings.EqualFold(dir, "desc")
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

// paginate slices list into the requested page
func paginate[T any](list []T, p domain.PageParams) domain.Page[T] {
	size := p.Size
	if size <= 0 {
		size = len(list)
		if size == 0 {
			size = 1
		}
	}
	total := len(list)
	pages := (total + size - 1) / size
	start := p.Page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return domain.Page[T]{
		Content:       append([]T{}, list[start:end]...),
		Page:          p.Page,
		Size:          size,
		TotalElements: int64(total),
		TotalPages:    pages,
		Last:          p.Page >= pages-1,
	}
}
