package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slatepad/slatepad/internal/auth"
	"github.com/slatepad/slatepad/internal/metrics"
	"github.com/slatepad/slatepad/internal/model"
	"github.com/slatepad/slatepad/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for both unknown emails and wrong
	// passwords so login responses do not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthStore is the persistence surface the auth service needs.
type AuthStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetTenantByID(ctx context.Context, id string) (*model.Tenant, error)
}

// AuthService authenticates users and issues session tokens.
type AuthService struct {
	store   AuthStore
	tokens  *auth.TokenManager
	metrics metrics.Recorder

	// decoyHash is verified against when the email is unknown, so a login
	// attempt costs roughly the same whether or not the account exists.
	decoyHash string
}

func NewAuthService(store AuthStore, tokens *auth.TokenManager, rec metrics.Recorder) (*AuthService, error) {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	decoy, err := auth.HashPassword("decoy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("generating decoy hash: %w", err)
	}
	return &AuthService{
		store:     store,
		tokens:    tokens,
		metrics:   rec,
		decoyHash: decoy,
	}, nil
}

// LoginResult carries everything a successful login produces.
type LoginResult struct {
	Token  string
	User   *model.User
	Tenant *model.Tenant
}

// Login verifies the credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.metrics.IncLoginFailed()
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn a verify anyway so unknown emails are not faster to probe.
			_, _ = auth.VerifyPassword(password, s.decoyHash)
			s.metrics.IncLoginFailed()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.metrics.IncLoginFailed()
		return nil, ErrInvalidCredentials
	}

	tenant, err := s.store.GetTenantByID(ctx, user.TenantID)
	if err != nil {
		return nil, fmt.Errorf("loading tenant: %w", err)
	}

	token, err := s.tokens.Issue(user, tenant)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.metrics.IncLoginSucceeded()
	return &LoginResult{Token: token, User: user, Tenant: tenant}, nil
}
