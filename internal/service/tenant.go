package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slatepad/slatepad/internal/auth"
	"github.com/slatepad/slatepad/internal/metrics"
	"github.com/slatepad/slatepad/internal/model"
	"github.com/slatepad/slatepad/internal/repository"
)

// DefaultInvitePassword is assigned to invited users until password
// management exists. Invited users log in with it and should change it
// out of band.
const DefaultInvitePassword = "password"

var (
	ErrForbidden      = errors.New("admin role required")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrUserExists     = errors.New("a user with this email already exists")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrInvalidRole    = errors.New("role must be admin or member")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TenantStore is the persistence surface the tenant service needs.
type TenantStore interface {
	GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	UpgradeTenantPlan(ctx context.Context, slug string, plan model.Plan) (*model.Tenant, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
}

// TenantCache caches tenants by slug. A nil cache disables caching.
type TenantCache interface {
	GetTenant(ctx context.Context, slug string) (*model.Tenant, error)
	SetTenant(ctx context.Context, tenant *model.Tenant) error
	InvalidateTenant(ctx context.Context, slug string) error
}

// TenantService handles tenant lookup, plan upgrades, and user invites.
type TenantService struct {
	store   TenantStore
	cache   TenantCache
	metrics metrics.Recorder
}

func NewTenantService(store TenantStore, cache TenantCache, rec metrics.Recorder) *TenantService {
	if rec == nil {
		rec = metrics.NewNoop()
	}
	return &TenantService{store: store, cache: cache, metrics: rec}
}

// GetTenant returns the tenant with the given slug, serving from cache
// when possible. Cache failures fall through to the store.
func (s *TenantService) GetTenant(ctx context.Context, slug string) (*model.Tenant, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTenant(ctx, slug); err == nil && cached != nil {
			return cached, nil
		}
	}

	tenant, err := s.store.GetTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("loading tenant: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetTenant(ctx, tenant)
	}
	return tenant, nil
}

// Upgrade moves the tenant to the pro plan. Upgrading a tenant that is
// already pro succeeds and reports the unchanged tenant.
func (s *TenantService) Upgrade(ctx context.Context, caller auth.Caller, slug string) (*model.Tenant, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	tenant, err := s.store.UpgradeTenantPlan(ctx, slug, model.PlanPro)
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("upgrading tenant: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateTenant(ctx, slug)
	}
	s.metrics.IncTenantUpgraded()
	return tenant, nil
}

// InviteInput carries the fields needed to invite a user into a tenant.
type InviteInput struct {
	Email string
	Role  model.Role
}

// Invite creates a user in the given tenant with the default password.
func (s *TenantService) Invite(ctx context.Context, caller auth.Caller, slug string, input InviteInput) (*model.User, error) {
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}

	tenant, err := s.store.GetTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrTenantNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("loading tenant: %w", err)
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := auth.HashPassword(DefaultInvitePassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		TenantID:     tenant.ID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.metrics.IncUserInvited()
	return user, nil
}
