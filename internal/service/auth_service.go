package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrEmailTaken     = errors.New("email is already in use")
	ErrInvalidToken   = errors.New("invalid token")
)

// AuthService issues opaque bearer tokens with a fixed lifetime. An expired token can
// still be exchanged on refresh for one more lifetime.
type AuthService struct {
	accounts repository.AccountRepository
	tokens   repository.TokenRepository
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(accounts repository.AccountRepository, tokens repository.TokenRepository, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthService{accounts: accounts, tokens: tokens, ttl: ttl, now: time.Now}
}

// Register creates a customer account and signs it in
func (s *AuthService) Register(ctx context.Context, r domain.Registration) (*domain.AuthResult, error) {
	email := strings.TrimSpace(r.Email)
	if strings.TrimSpace(r.FullName) == "" || len(r.Password) < 6 {
		return nil, ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidInput
	}
	if r.ConfirmPassword != "" && r.ConfirmPassword != r.Password {
		return nil, fmt.Errorf("passwords do not match: %w", ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	a := repository.Account{
		User:          domain.User{FullName: strings.TrimSpace(r.FullName), Email: email, Role: domain.RoleCustomer},
		PasswordHash:  hash,
		Address:       strings.TrimSpace(r.Address),
		ContactNumber: strings.TrimSpace(r.ContactNumber),
	}
	if err := s.accounts.Create(ctx, &a); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.issue(ctx, a.User)
}

func (s *AuthService) Login(ctx context.Context, c domain.Credentials) (*domain.AuthResult, error) {
	a, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(c.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(c.Password)) != nil {
		return nil, ErrBadCredentials
	}
	return s.issue(ctx, a.User)
}

// Authenticate resolves a live token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, ErrInvalidToken
	}
	t, err := s.tokens.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, ErrInvalidToken
	}
	if err != nil {
		return domain.User{}, err
	}
	if !s.now().Before(t.ExpiresAt) {
		return domain.User{}, ErrInvalidToken
	}
	return s.owner(ctx, t)
}

func (s *AuthService) owner(ctx context.Context, t *repository.Token) (domain.User, error) {
	a, err := s.accounts.GetByID(ctx, t.UserID)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}
	return a.User, nil
}

// Refresh swaps a token that is live or expired for less than one lifetime for a new one
func (s *AuthService) Refresh(ctx context.Context, token string) (*domain.AuthResult, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	t, err := s.tokens.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !s.now().Before(t.ExpiresAt.Add(s.ttl)) {
		_ = s.tokens.Delete(ctx, token)
		return nil, ErrInvalidToken
	}
	u, err := s.owner(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Delete(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return s.issue(ctx, u)
}

// Expire ends the lifetime of a token now; it stays refreshable
func (s *AuthService) Expire(ctx context.Context, token string) error {
	t, err := s.tokens.Get(ctx, token)
	if err != nil {
		return err
	}
	t.ExpiresAt = s.now()
	return s.tokens.Save(ctx, *t)
}

func (s *AuthService) Validate(ctx context.Context, token string) bool {
	_, err := s.Authenticate(ctx, token)
	return err == nil
}

// Logout forgets the token; unknown tokens are ignored
func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.tokens.Delete(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

// Revoke invalidates a token without telling its holder
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	return s.tokens.Delete(ctx, token)
}

func (s *AuthService) issue(ctx context.Context, u domain.User) (*domain.AuthResult, error) {
	t := repository.Token{Value: uuid.NewString(), UserID: u.ID, ExpiresAt: s.now().Add(s.ttl)}
	if err := s.tokens.Save(ctx, t); err != nil {
		return nil, err
	}
	return &domain.AuthResult{
		Token:     t.Value,
		Type:      "Bearer",
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		ExpiresIn: s.ttl.Milliseconds(),
	}, nil
}
