package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
)

// MemoryTenantRepository is an in-memory implementation of TenantRepository
// for tests and local development
type MemoryTenantRepository struct {
	mu       sync.RWMutex
	tenants  map[string]*domain.Tenant
	bySlug   map[string]string // slug -> tenantID
	byDomain map[string]string // custom domain -> tenantID
	usage    map[string]map[domain.Resource]int
}

// NewMemoryTenantRepository creates a new in-memory tenant repository
func NewMemoryTenantRepository() *MemoryTenantRepository {
	return &MemoryTenantRepository{
		tenants:  make(map[string]*domain.Tenant),
		bySlug:   make(map[string]string),
		byDomain: make(map[string]string),
		usage:    make(map[string]map[domain.Resource]int),
	}
}

// Create creates a new tenant
func (r *MemoryTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tenants[tenant.ID]; exists {
		return fmt.Errorf("tenant %s already exists", tenant.ID)
	}
	copied := copyTenant(tenant)
	r.tenants[tenant.ID] = copied
	r.bySlug[tenant.Slug] = tenant.ID
	if tenant.CustomDomain != "" {
		r.byDomain[tenant.CustomDomain] = tenant.ID
	}
	return nil
}

// GetByID retrieves a tenant by ID
func (r *MemoryTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getLocked(id), nil
}

// GetBySlug retrieves a tenant by subdomain slug
func (r *MemoryTenantRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getLocked(r.bySlug[slug]), nil
}

// GetByCustomDomain retrieves a tenant by its custom domain
func (r *MemoryTenantRepository) GetByCustomDomain(ctx context.Context, domainName string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getLocked(r.byDomain[domainName]), nil
}

func (r *MemoryTenantRepository) getLocked(id string) *domain.Tenant {
	tenant, exists := r.tenants[id]
	if !exists || tenant.DeletedAt != nil {
		return nil
	}
	return copyTenant(tenant)
}

// Update updates a tenant
func (r *MemoryTenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.tenants[tenant.ID]
	if !exists || existing.DeletedAt != nil {
		return fmt.Errorf("tenant not found or already deleted")
	}
	if existing.CustomDomain != "" {
		delete(r.byDomain, existing.CustomDomain)
	}
	tenant.UpdatedAt = time.Now()
	copied := copyTenant(tenant)
	r.tenants[tenant.ID] = copied
	r.bySlug[tenant.Slug] = tenant.ID
	if tenant.CustomDomain != "" {
		r.byDomain[tenant.CustomDomain] = tenant.ID
	}
	return nil
}

// ExistsBySlug checks if a tenant exists with the given slug
func (r *MemoryTenantRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySlug[slug]
	if !ok {
		return false, nil
	}
	tenant, exists := r.tenants[id]
	return exists && tenant.DeletedAt == nil, nil
}

// SetPlan changes the tenant's plan reference
func (r *MemoryTenantRepository) SetPlan(ctx context.Context, id, planID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.tenants[id]
	if !exists || tenant.DeletedAt != nil {
		return fmt.Errorf("tenant not found or already deleted")
	}
	tenant.PlanID = planID
	tenant.UpdatedAt = time.Now()
	return nil
}

// SetTheme changes the tenant's selected theme
func (r *MemoryTenantRepository) SetTheme(ctx context.Context, id, themeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.tenants[id]
	if !exists || tenant.DeletedAt != nil {
		return fmt.Errorf("tenant not found or already deleted")
	}
	tenant.ThemeID = themeID
	tenant.UpdatedAt = time.Now()
	return nil
}

// SetFeatureOverride sets a single override leaf; a nil value clears it
func (r *MemoryTenantRepository) SetFeatureOverride(ctx context.Context, id, path string, enabled *bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tenant, exists := r.tenants[id]
	if !exists || tenant.DeletedAt != nil {
		return fmt.Errorf("tenant not found or already deleted")
	}
	if tenant.FeatureOverrides == nil {
		tenant.FeatureOverrides = make(map[string]bool)
	}
	if enabled == nil {
		delete(tenant.FeatureOverrides, path)
	} else {
		tenant.FeatureOverrides[path] = *enabled
	}
	tenant.UpdatedAt = time.Now()
	return nil
}

// GetUsage retrieves the tenant's current usage counters
func (r *MemoryTenantRepository) GetUsage(ctx context.Context, id string) (*domain.Usage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	usage := &domain.Usage{}
	counters := r.usage[id]
	usage.Products = counters[domain.ResourceProducts]
	usage.Categories = counters[domain.ResourceCategories]
	usage.Staff = counters[domain.ResourceStaff]
	usage.StorageMB = counters[domain.ResourceStorageMB]
	return usage, nil
}

// SetUsage seeds a usage counter directly, for tests
func (r *MemoryTenantRepository) SetUsage(id string, resource domain.Resource, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usage[id] == nil {
		r.usage[id] = make(map[domain.Resource]int)
	}
	r.usage[id][resource] = count
}

// ReserveUsage atomically increments a usage counter when it is below the limit
func (r *MemoryTenantRepository) ReserveUsage(ctx context.Context, id string, resource domain.Resource, limit int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usage[id] == nil {
		r.usage[id] = make(map[domain.Resource]int)
	}
	current := r.usage[id][resource]
	if limit >= 0 && current >= limit {
		return false, nil
	}
	r.usage[id][resource] = current + 1
	return true, nil
}

// ReleaseUsage decrements a usage counter, flooring at zero
func (r *MemoryTenantRepository) ReleaseUsage(ctx context.Context, id string, resource domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usage[id] == nil || r.usage[id][resource] == 0 {
		return nil
	}
	r.usage[id][resource]--
	return nil
}

func copyTenant(tenant *domain.Tenant) *domain.Tenant {
	copied := *tenant
	if tenant.FeatureOverrides != nil {
		copied.FeatureOverrides = make(map[string]bool, len(tenant.FeatureOverrides))
		for path, enabled := range tenant.FeatureOverrides {
			copied.FeatureOverrides[path] = enabled
		}
	}
	return &copied
}
