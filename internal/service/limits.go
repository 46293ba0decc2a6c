package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/internal/repository"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

// ErrLimitExceeded is the recoverable business condition surfaced to the
// end user as "upgrade your plan". Never a server error.
var ErrLimitExceeded = errors.New("plan limit exceeded")

// LimitCheck is the outcome of comparing a usage counter against a plan
// ceiling
type LimitCheck struct {
	Allowed  bool            `json:"allowed"`
	Resource domain.Resource `json:"resource"`
	Limit    int             `json:"limit"` // -1 = unlimited
	Current  int             `json:"current"`
}

// Err returns nil when allowed, otherwise an error wrapping
// ErrLimitExceeded with the offending resource and ceiling
func (c *LimitCheck) Err() error {
	if c.Allowed {
		return nil
	}
	return fmt.Errorf("%w: %s at %d of %d", ErrLimitExceeded, c.Resource, c.Current, c.Limit)
}

// LimitEnforcer compares usage counters against plan ceilings.
//
// Check is advisory: it reads a counter that the caller increments in a
// separate step, so two concurrent creates can both pass and overshoot the
// ceiling by up to (concurrent requests - 1). That is an accepted soft
// limit for business-tier ceilings. Reserve is the strict alternative: an
// atomic check-and-increment against the counter row that cannot
// overshoot. Callers pick one per call site.
type LimitEnforcer interface {
	// Check compares a caller-supplied current count against the
	// tenant's plan ceiling. Allowed iff the limit is unlimited (-1) or
	// currentCount < limit; the check runs before the increment, so the
	// limit itself is a reachable ceiling.
	Check(ctx context.Context, tenant *domain.Tenant, resource domain.Resource, currentCount int) *LimitCheck
	// CheckCurrent is Check against the stored usage counter
	CheckCurrent(ctx context.Context, tenant *domain.Tenant, resource domain.Resource) (*LimitCheck, error)
	// Reserve atomically claims one unit of the resource, failing when
	// the ceiling is reached. Strict; safe under concurrency.
	Reserve(ctx context.Context, tenant *domain.Tenant, resource domain.Resource) (*LimitCheck, error)
	// Release returns one unit claimed by Reserve, for creates that
	// fail after reserving
	Release(ctx context.Context, tenant *domain.Tenant, resource domain.Resource) error
}

// limitEnforcer implements LimitEnforcer
type limitEnforcer struct {
	catalog    PlanCatalog
	tenantRepo repository.TenantRepository
	log        *logger.Logger
}

// NewLimitEnforcer creates a new LimitEnforcer
func NewLimitEnforcer(catalog PlanCatalog, tenantRepo repository.TenantRepository, log *logger.Logger) LimitEnforcer {
	return &limitEnforcer{catalog: catalog, tenantRepo: tenantRepo, log: log}
}

// Check compares a caller-supplied current count against the tenant's
// plan ceiling. Never mutates counters.
func (e *limitEnforcer) Check(ctx context.Context, tenant *domain.Tenant, resource domain.Resource, currentCount int) *LimitCheck {
	plan := e.catalog.EffectivePlan(ctx, tenant)
	limit := plan.Limit(resource)
	return &LimitCheck{
		Allowed:  limit == domain.UnlimitedLimit || currentCount < limit,
		Resource: resource,
		Limit:    limit,
		Current:  currentCount,
	}
}

// CheckCurrent is Check against the stored usage counter
func (e *limitEnforcer) CheckCurrent(ctx context.Context, tenant *domain.Tenant, resource domain.Resource) (*LimitCheck, error) {
	usage, err := e.tenantRepo.GetUsage(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("load usage for tenant %s: %w", tenant.ID, err)
	}
	return e.Check(ctx, tenant, resource, usage.Count(resource)), nil
}

// Reserve atomically claims one unit of the resource
func (e *limitEnforcer) Reserve(ctx context.Context, tenant *domain.Tenant, resource domain.Resource) (*LimitCheck, error) {
	plan := e.catalog.EffectivePlan(ctx, tenant)
	limit := plan.Limit(resource)

	reserved, err := e.tenantRepo.ReserveUsage(ctx, tenant.ID, resource, limit)
	if err != nil {
		return nil, fmt.Errorf("reserve %s for tenant %s: %w", resource, tenant.ID, err)
	}

	usage, err := e.tenantRepo.GetUsage(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("load usage for tenant %s: %w", tenant.ID, err)
	}
	return &LimitCheck{
		Allowed:  reserved,
		Resource: resource,
		Limit:    limit,
		Current:  usage.Count(resource),
	}, nil
}

// Release returns one unit claimed by Reserve
func (e *limitEnforcer) Release(ctx context.Context, tenant *domain.Tenant, resource domain.Resource) error {
	return e.tenantRepo.ReleaseUsage(ctx, tenant.ID, resource)
}
