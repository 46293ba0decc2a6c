package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
)

// PostgresTenantRepository implements TenantRepository using PostgreSQL
type PostgresTenantRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTenantRepository creates a new PostgresTenantRepository
func NewPostgresTenantRepository(pool *pgxpool.Pool) *PostgresTenantRepository {
	return &PostgresTenantRepository{pool: pool}
}

const tenantColumns = `id, name, slug, plan_id, theme_id, COALESCE(custom_domain, '') as custom_domain,
	       COALESCE(feature_overrides, '{}'::jsonb) as feature_overrides, is_active, created_at, updated_at, deleted_at`

// Create creates a new tenant
func (r *PostgresTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, plan_id, theme_id, custom_domain, feature_overrides, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Slug,
		tenant.PlanID,
		tenant.ThemeID,
		nullStringOrValue(tenant.CustomDomain),
		tenant.FeatureOverrides,
		tenant.IsActive,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	return err
}

// GetByID retrieves a tenant by ID
func (r *PostgresTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE id = $1 AND deleted_at IS NULL`, tenantColumns)
	return r.scanTenant(r.pool.QueryRow(ctx, query, id))
}

// GetBySlug retrieves a tenant by subdomain slug
func (r *PostgresTenantRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE slug = $1 AND deleted_at IS NULL`, tenantColumns)
	return r.scanTenant(r.pool.QueryRow(ctx, query, slug))
}

// GetByCustomDomain retrieves a tenant by its custom domain
func (r *PostgresTenantRepository) GetByCustomDomain(ctx context.Context, domainName string) (*domain.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE custom_domain = $1 AND deleted_at IS NULL`, tenantColumns)
	return r.scanTenant(r.pool.QueryRow(ctx, query, domainName))
}

func (r *PostgresTenantRepository) scanTenant(row pgx.Row) (*domain.Tenant, error) {
	tenant := &domain.Tenant{}
	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Slug,
		&tenant.PlanID,
		&tenant.ThemeID,
		&tenant.CustomDomain,
		&tenant.FeatureOverrides,
		&tenant.IsActive,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
		&tenant.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tenant, nil
}

// Update updates a tenant
func (r *PostgresTenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, plan_id = $3, theme_id = $4, custom_domain = $5, feature_overrides = $6, is_active = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`
	tenant.UpdatedAt = time.Now()
	result, err := r.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.PlanID,
		tenant.ThemeID,
		nullStringOrValue(tenant.CustomDomain),
		tenant.FeatureOverrides,
		tenant.IsActive,
		tenant.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tenant not found or already deleted")
	}
	return nil
}

// ExistsBySlug checks if a tenant exists with the given slug
func (r *PostgresTenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tenants WHERE slug = $1 AND deleted_at IS NULL)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, slug).Scan(&exists)
	return exists, err
}

// SetPlan changes the tenant's plan reference
func (r *PostgresTenantRepository) SetPlan(ctx context.Context, id, planID string) error {
	query := `
		UPDATE tenants
		SET plan_id = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query, id, planID, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tenant not found or already deleted")
	}
	return nil
}

// SetTheme changes the tenant's selected theme
func (r *PostgresTenantRepository) SetTheme(ctx context.Context, id, themeID string) error {
	query := `
		UPDATE tenants
		SET theme_id = $2, updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query, id, themeID, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tenant not found or already deleted")
	}
	return nil
}

// SetFeatureOverride sets a single override leaf; a nil value clears it
func (r *PostgresTenantRepository) SetFeatureOverride(ctx context.Context, id, path string, enabled *bool) error {
	var query string
	var args []interface{}
	if enabled == nil {
		query = `
			UPDATE tenants
			SET feature_overrides = feature_overrides - $2, updated_at = $3
			WHERE id = $1 AND deleted_at IS NULL
		`
		args = []interface{}{id, path, time.Now()}
	} else {
		query = `
			UPDATE tenants
			SET feature_overrides = jsonb_set(COALESCE(feature_overrides, '{}'::jsonb), ARRAY[$2], to_jsonb($3::boolean), true), updated_at = $4
			WHERE id = $1 AND deleted_at IS NULL
		`
		args = []interface{}{id, path, *enabled, time.Now()}
	}
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("tenant not found or already deleted")
	}
	return nil
}

// GetUsage retrieves the tenant's current usage counters
func (r *PostgresTenantRepository) GetUsage(ctx context.Context, id string) (*domain.Usage, error) {
	query := `SELECT resource, count FROM tenant_usage WHERE tenant_id = $1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := &domain.Usage{}
	for rows.Next() {
		var resource string
		var count int
		if err := rows.Scan(&resource, &count); err != nil {
			return nil, err
		}
		switch domain.Resource(resource) {
		case domain.ResourceProducts:
			usage.Products = count
		case domain.ResourceCategories:
			usage.Categories = count
		case domain.ResourceStaff:
			usage.Staff = count
		case domain.ResourceStorageMB:
			usage.StorageMB = count
		}
	}
	return usage, rows.Err()
}

// ReserveUsage atomically increments a usage counter when it is below the
// limit. The conditional UPDATE makes the check-and-increment a single
// statement, so concurrent reservations cannot overshoot the ceiling.
func (r *PostgresTenantRepository) ReserveUsage(ctx context.Context, id string, resource domain.Resource, limit int) (bool, error) {
	query := `
		INSERT INTO tenant_usage (tenant_id, resource, count)
		SELECT $1, $2, 1 WHERE $3::int <> 0
		ON CONFLICT (tenant_id, resource)
		DO UPDATE SET count = tenant_usage.count + 1
		WHERE $3 < 0 OR tenant_usage.count < $3
	`
	result, err := r.pool.Exec(ctx, query, id, string(resource), limit)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// ReleaseUsage decrements a usage counter, flooring at zero
func (r *PostgresTenantRepository) ReleaseUsage(ctx context.Context, id string, resource domain.Resource) error {
	query := `
		UPDATE tenant_usage
		SET count = GREATEST(count - 1, 0)
		WHERE tenant_id = $1 AND resource = $2
	`
	_, err := r.pool.Exec(ctx, query, id, string(resource))
	return err
}

// nullStringOrValue returns nil for empty strings, otherwise returns the value
func nullStringOrValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
