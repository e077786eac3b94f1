package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/slatepad/slatepad/internal/model"
)

// Common errors for tenant repository operations.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrSlugExists     = errors.New("slug already exists")
)

// CreateTenant inserts a new tenant into the database.
func (r *Repository) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, plan)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Slug,
		tenant.Plan,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugExists
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// GetTenantByID retrieves a tenant by its ID.
func (r *Repository) GetTenantByID(ctx context.Context, id string) (*model.Tenant, error) {
	query := `
		SELECT id, name, slug, plan
		FROM tenants
		WHERE id = $1
	`

	var tenant model.Tenant
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Slug,
		&tenant.Plan,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by ID: %w", err)
	}

	return &tenant, nil
}

// GetTenantBySlug retrieves a tenant by its unique slug.
func (r *Repository) GetTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	query := `
		SELECT id, name, slug, plan
		FROM tenants
		WHERE slug = $1
	`

	var tenant model.Tenant
	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Slug,
		&tenant.Plan,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by slug: %w", err)
	}

	return &tenant, nil
}

// UpgradeTenantPlan sets a tenant's plan and returns the updated row.
// Setting a plan the tenant already has is a no-op success.
func (r *Repository) UpgradeTenantPlan(ctx context.Context, slug string, plan model.Plan) (*model.Tenant, error) {
	query := `
		UPDATE tenants
		SET plan = $2
		WHERE slug = $1
		RETURNING id, name, slug, plan
	`

	var tenant model.Tenant
	err := r.pool.QueryRow(ctx, query, slug, plan).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Slug,
		&tenant.Plan,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to upgrade tenant plan: %w", err)
	}

	return &tenant, nil
}
