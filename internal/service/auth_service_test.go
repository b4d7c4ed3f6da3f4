package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

func setupAuth(t *testing.T) (*AuthService, *time.Time) {
	t.Helper()
	store := repository.NewMemoryStore()
	if err := Seed(context.Background(), store, repository.NewMemoryAccounts(store)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := NewAuthService(repository.NewMemoryAccounts(store), repository.NewMemoryTokens(store), time.Hour)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestAuth_LoginSeededUsers(t *testing.T) {
	ctx := context.Background()
	s, _ := setupAuth(t)

	res, err := s.Login(ctx, domain.Credentials{Email: DemoAdminEmail, Password: DemoAdminPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Role != domain.RoleAdmin || res.Token == "" || res.Type != "Bearer" || res.ExpiresIn != time.Hour.Milliseconds() {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := s.Login(ctx, domain.Credentials{Email: DemoCustomerEmail, Password: "wrong"}); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected bad credentials, got %v", err)
	}
	if _, err := s.Login(ctx, domain.Credentials{Email: "nobody@example.com", Password: "x"}); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected bad credentials for unknown email, got %v", err)
	}
}

func TestAuth_Register(t *testing.T) {
	ctx := context.Background()
	s, _ := setupAuth(t)

	reg := domain.Registration{FullName: "Ada Lovelace", Email: "ada@example.com", Password: "secret1", ConfirmPassword: "secret1"}
	res, err := s.Register(ctx, reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Role != domain.RoleCustomer {
		t.Fatalf("new accounts are customers, got %s", res.Role)
	}
	if _, err := s.Register(ctx, reg); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
	mismatch := reg
	mismatch.Email, mismatch.ConfirmPassword = "other@example.com", "secret2"
	if _, err := s.Register(ctx, mismatch); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	badEmail := reg
	badEmail.Email = "not-an-email"
	if _, err := s.Register(ctx, badEmail); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAuth_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	s, now := setupAuth(t)

	res, _ := s.Login(ctx, domain.Credentials{Email: DemoCustomerEmail, Password: DemoCustomerPassword})
	u, err := s.Authenticate(ctx, res.Token)
	if err != nil || u.Email != DemoCustomerEmail {
		t.Fatalf("authenticate: %v", err)
	}

	fresh, err := s.Refresh(ctx, res.Token)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if fresh.Token == res.Token {
		t.Fatalf("refresh must issue a new token")
	}
	if s.Validate(ctx, res.Token) {
		t.Fatalf("old token still valid after refresh")
	}
	if !s.Validate(ctx, fresh.Token) {
		t.Fatalf("new token rejected")
	}

	*now = now.Add(90 * time.Minute)
	if _, err := s.Authenticate(ctx, fresh.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
	again, err := s.Refresh(ctx, fresh.Token)
	if err != nil {
		t.Fatalf("recently expired token should be refreshable: %v", err)
	}

	*now = now.Add(2 * time.Hour)
	if _, err := s.Refresh(ctx, again.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token past the grace window cannot be refreshed, got %v", err)
	}
}

func TestAuth_Expire(t *testing.T) {
	ctx := context.Background()
	s, _ := setupAuth(t)

	res, _ := s.Login(ctx, domain.Credentials{Email: DemoCustomerEmail, Password: DemoCustomerPassword})
	if err := s.Expire(ctx, res.Token); err != nil {
		t.Fatalf("expire: %v", err)
	}
	if s.Validate(ctx, res.Token) {
		t.Fatalf("expired token still valid")
	}
	if _, err := s.Refresh(ctx, res.Token); err != nil {
		t.Fatalf("expired token should be refreshable: %v", err)
	}
}

func TestAuth_LogoutAndRevoke(t *testing.T) {
	ctx := context.Background()
	s, _ := setupAuth(t)

	a, _ := s.Login(ctx, domain.Credentials{Email: DemoCustomerEmail, Password: DemoCustomerPassword})
	if err := s.Logout(ctx, a.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := s.Logout(ctx, a.Token); err != nil {
		t.Fatalf("second logout should be a no-op: %v", err)
	}
	b, _ := s.Login(ctx, domain.Credentials{Email: DemoCustomerEmail, Password: DemoCustomerPassword})
	if err := s.Revoke(ctx, b.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if s.Validate(ctx, b.Token) {
		t.Fatalf("revoked token still valid")
	}
}
