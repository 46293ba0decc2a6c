package repository

import (
	"context"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
)

// TenantRepository defines the interface for tenant data access
type TenantRepository interface {
	// Create creates a new tenant
	Create(ctx context.Context, tenant *domain.Tenant) error
	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	// GetBySlug retrieves a tenant by subdomain slug
	GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	// GetByCustomDomain retrieves a tenant by its custom domain
	GetByCustomDomain(ctx context.Context, domainName string) (*domain.Tenant, error)
	// Update updates a tenant
	Update(ctx context.Context, tenant *domain.Tenant) error
	// ExistsBySlug checks if a tenant exists with the given slug
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	// SetPlan changes the tenant's plan reference
	SetPlan(ctx context.Context, id, planID string) error
	// SetTheme changes the tenant's selected theme
	SetTheme(ctx context.Context, id, themeID string) error
	// SetFeatureOverride sets a single override leaf; a nil value clears it
	SetFeatureOverride(ctx context.Context, id, path string, enabled *bool) error
	// GetUsage retrieves the tenant's current usage counters
	GetUsage(ctx context.Context, id string) (*domain.Usage, error)
	// ReserveUsage atomically increments a usage counter when it is below
	// the limit. Returns false when the limit is already reached. A
	// negative limit means unlimited.
	ReserveUsage(ctx context.Context, id string, resource domain.Resource, limit int) (bool, error)
	// ReleaseUsage decrements a usage counter, flooring at zero
	ReleaseUsage(ctx context.Context, id string, resource domain.Resource) error
}

// PlanRepository defines the interface for plan data access
type PlanRepository interface {
	// GetByID retrieves a plan by its unique name
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	// List retrieves all plans for the administrative UI
	List(ctx context.Context) ([]*domain.Plan, error)
	// Upsert inserts or updates a plan, bumping its version on update
	Upsert(ctx context.Context, plan *domain.Plan) error
}
