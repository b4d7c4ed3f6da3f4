package httpapi

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"storefront/internal/repository"
	"storefront/internal/service"
)

// NewSandbox builds a seeded in-memory server with tokens living for ttl
func NewSandbox(ctx context.Context, ttl time.Duration, log logrus.FieldLogger) (*Server, error) {
	store := repository.NewMemoryStore()
	accounts := repository.NewMemoryAccounts(store)
	if err := service.Seed(ctx, store, accounts); err != nil {
		return nil, err
	}
	products := service.NewProductService(store)
	orders := service.NewOrderService(store, repository.NewMemoryOrders(store), repository.NewMemoryTx(store))
	auth := service.NewAuthService(accounts, repository.NewMemoryTokens(store), ttl)
	return NewServer(products, orders, auth, log), nil
}

// Auth exposes token administration, used to revoke sessions from tests
func (s *Server) Auth() *service.AuthService { return s.auth }

func (s *Server) Products() *service.ProductService { return s.products }

func (s *Server) Orders() *service.OrderService { return s.orders }
