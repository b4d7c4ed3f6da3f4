package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// Demo accounts created by Seed
const (
	DemoAdminEmail       = "admin@grocery.local"
	DemoAdminPassword    = "admin123"
	DemoCustomerEmail    = "customer@grocery.local"
	DemoCustomerPassword = "customer123"
)

type seedProduct struct {
	name, category, price string
	stock                 int
	rating                float64
	reviews               int
}

var demoCatalog = []seedProduct{
	{"Organic Bananas", "fresh-produce", "1.29", 120, 4.6, 38},
	{"Hass Avocado", "fresh-produce", "1.99", 40, 4.2, 21},
	{"Whole Milk 1L", "dairy", "1.49", 60, 4.4, 17},
	{"Greek Yogurt", "dairy", "3.75", 25, 4.8, 52},
	{"Sourdough Loaf", "bakery", "4.50", 12, 4.7, 44},
	{"Free Range Eggs (12)", "dairy", "3.99", 30, 4.5, 29},
	{"Atlantic Salmon Fillet", "meat-seafood", "12.90", 8, 4.3, 11},
	{"Chicken Breast 500g", "meat-seafood", "6.49", 20, 4.1, 14},
	{"Arabica Coffee Beans", "coffee", "9.99", 15, 4.9, 63},
	{"Dark Chocolate 70%", "candy", "2.79", 0, 4.6, 27},
	{"Basmati Rice 1kg", "pantry", "3.20", 50, 4.0, 9},
	{"Extra Virgin Olive Oil", "pantry", "8.40", 18, 4.7, 33},
}

// Seed fills an empty sandbox with a demo catalog and one admin and one customer account
func Seed(ctx context.Context, products repository.ProductRepository, accounts repository.AccountRepository) error {
	base := time.Now().UTC().Add(-time.Duration(len(demoCatalog)) * time.Hour)
	for i, sp := range demoCatalog {
		p := domain.Product{
			Name:          sp.name,
			Description:   sp.name + " from the demo catalog",
			Price:         decimal.RequireFromString(sp.price),
			StockQuantity: sp.stock,
			Category:      sp.category,
			AverageRating: sp.rating,
			ReviewCount:   sp.reviews,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		if err := products.Create(ctx, &p); err != nil {
			return err
		}
	}
	users := []struct {
		name, email, password string
		role                  domain.Role
	}{
		{"Store Admin", DemoAdminEmail, DemoAdminPassword, domain.RoleAdmin},
		{"Demo Customer", DemoCustomerEmail, DemoCustomerPassword, domain.RoleCustomer},
	}
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		a := repository.Account{
			User:         domain.User{FullName: u.name, Email: u.email, Role: u.role},
			PasswordHash: hash,
		}
		if err := accounts.Create(ctx, &a); err != nil {
			return err
		}
	}
	return nil
}
