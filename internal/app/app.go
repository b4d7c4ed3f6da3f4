// Package app wires the storefront client together from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/order"
	"storefront/internal/session"
	"storefront/internal/storage"
)

// App is one client process: a session, a cart and the services around them
type App struct {
	Config   *config.Config
	Log      *logrus.Logger
	Notifier notify.Notifier
	Client   *api.Client
	Session  *session.Manager
	Cart     *cart.Store
	Checkout *checkout.Service
	Orders   *order.Tracker

	storage storage.Storage
}

// Option customizes New
type Option func(*App)

// WithNotifier replaces the log-backed notifier
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) { a.Notifier = n }
}

// WithStorage replaces the configured backend
func WithStorage(s storage.Storage) Option {
	return func(a *App) { a.storage = s }
}

func New(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = logrus.New()
		log.Out = io.Discard
	}
	a := &App{Config: cfg, Log: log}
	for _, opt := range opts {
		opt(a)
	}
	if a.Notifier == nil {
		a.Notifier = notify.NewLog(log)
	}
	if a.storage == nil {
		s, err := storage.Open(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		a.storage = s
	}

	client, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Retry:   cfg.Retry,
		Log:     log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Client = client
	a.Session = session.NewManager(client, a.storage, a.Notifier, log)
	client.UseSession(a.Session)
	a.Cart = cart.NewStore(ctx, a.storage, a.Notifier, log)
	a.Checkout = checkout.NewService(a.Cart, client, a.Notifier, log)
	a.Orders = order.NewTracker(client, cfg.Orders.StaleTime, log)
	return a, nil
}

// Initialize restores the persisted session
func (a *App) Initialize(ctx context.Context) error {
	return a.Session.Initialize(ctx)
}

// SyncCart fetches the current product of every cart line and reconciles the cart.
// Products the server no longer knows are dropped; any other failure aborts the pass
// and leaves the cart untouched.
func (a *App) SyncCart(ctx context.Context) (cart.SyncResult, error) {
	items := a.Cart.Items()
	catalog := make([]domain.Product, 0, len(items))
	for _, it := range items {
		p, err := a.Client.Product(ctx, it.ProductID)
		if errors.Is(err, api.ErrNotFound) {
			continue
		}
		if err != nil {
			return cart.SyncResult{}, fmt.Errorf("fetch product %s: %w", it.ProductID, err)
		}
		catalog = append(catalog, *p)
	}
	return a.Cart.SyncWithProducts(ctx, catalog)
}

// Close releases the storage backend
func (a *App) Close() error {
	if c, ok := a.storage.(storage.Closer); ok {
		return c.Close()
	}
	return nil
}
