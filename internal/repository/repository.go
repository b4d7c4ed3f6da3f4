// Package repository stores the sandbox storefront backend's catalog, accounts, tokens
// and orders.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var (
	// ErrNotFound is returned when the entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique key is already taken
	ErrConflict = errors.New("already exists")
)

// ProductFilter narrows a product listing; zero values match everything
type ProductFilter struct {
	NameSubstring string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	InStockOnly   bool
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	CustomerID string
	Status     domain.OrderStatus
}

// Account is a registered user with credentials
type Account struct {
	domain.User
	PasswordHash  []byte
	Address       string
	ContactNumber string
	CreatedAt     time.Time
}

// Token is an issued bearer token
type Token struct {
	Value     string
	UserID    string
	ExpiresAt time.Time
}

type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	List(ctx context.Context, f OrderFilter) ([]domain.Order, error)
}

type AccountRepository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

type TokenRepository interface {
	Save(ctx context.Context, t Token) error
	Get(ctx context.Context, value string) (*Token, error)
	Delete(ctx context.Context, value string) error
}

// TxManager runs fn atomically. The in-memory store holds its write lock for the duration.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
