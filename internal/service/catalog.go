package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/internal/repository"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

// PlanCatalog serves plan records through a process-local cache. Plans
// change rarely; callers get "eventually consistent within one cache TTL"
// freshness, tightened by explicit invalidation on administrative update.
type PlanCatalog interface {
	// GetPlan retrieves a plan by id. Returns ErrPlanNotFound for an
	// unknown id.
	GetPlan(ctx context.Context, planID string) (*domain.Plan, error)
	// EffectivePlan resolves the plan a tenant is on. A missing or
	// dangling plan_id is recovered by substituting the built-in free
	// plan; this never fails a request.
	EffectivePlan(ctx context.Context, tenant *domain.Tenant) *domain.Plan
	// List retrieves all plans for the administrative UI
	List(ctx context.Context) ([]*domain.Plan, error)
	// Upsert creates or updates a plan and invalidates its cache entry
	Upsert(ctx context.Context, plan *domain.Plan) error
	// Invalidate drops a single plan from the cache
	Invalidate(planID string)
	// InvalidateAll drops every cached plan
	InvalidateAll()
}

type planCacheEntry struct {
	plan      *domain.Plan // nil caches a confirmed miss
	expiresAt time.Time
}

// planCatalog implements PlanCatalog
type planCatalog struct {
	planRepo repository.PlanRepository
	ttl      time.Duration
	log      *logger.Logger

	mu    sync.RWMutex
	cache map[string]planCacheEntry
}

// NewPlanCatalog creates a new PlanCatalog with the given cache TTL
func NewPlanCatalog(planRepo repository.PlanRepository, ttl time.Duration, log *logger.Logger) PlanCatalog {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &planCatalog{
		planRepo: planRepo,
		ttl:      ttl,
		log:      log,
		cache:    make(map[string]planCacheEntry),
	}
}

// GetPlan retrieves a plan by id
func (c *planCatalog) GetPlan(ctx context.Context, planID string) (*domain.Plan, error) {
	if planID == "" {
		return nil, ErrPlanNotFound
	}

	c.mu.RLock()
	entry, cached := c.cache[planID]
	c.mu.RUnlock()
	if cached && time.Now().Before(entry.expiresAt) {
		if entry.plan == nil {
			return nil, ErrPlanNotFound
		}
		return entry.plan, nil
	}

	plan, err := c.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", planID, err)
	}

	c.mu.Lock()
	c.cache[planID] = planCacheEntry{plan: plan, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// EffectivePlan resolves the plan a tenant is on, substituting the
// built-in free plan when the reference is missing or invalid
func (c *planCatalog) EffectivePlan(ctx context.Context, tenant *domain.Tenant) *domain.Plan {
	plan, err := c.GetPlan(ctx, tenant.PlanID)
	if err != nil {
		c.log.Warn("tenant plan unresolvable, substituting fallback free plan",
			zap.String("tenant_id", tenant.ID),
			zap.String("plan_id", tenant.PlanID),
			zap.Error(err))
		return domain.FallbackFreePlan()
	}
	return plan
}

// List retrieves all plans for the administrative UI. Listing bypasses
// the cache; it is an admin-frequency read.
func (c *planCatalog) List(ctx context.Context) ([]*domain.Plan, error) {
	return c.planRepo.List(ctx)
}

// Upsert creates or updates a plan and invalidates its cache entry
func (c *planCatalog) Upsert(ctx context.Context, plan *domain.Plan) error {
	for _, themeID := range plan.AllowedThemes {
		if themeID == domain.ThemeWildcard {
			continue
		}
		if _, ok := domain.ThemeByID(themeID); !ok {
			return fmt.Errorf("%w: allowed theme %q", ErrUnknownTheme, themeID)
		}
	}

	if err := c.planRepo.Upsert(ctx, plan); err != nil {
		return fmt.Errorf("upsert plan %s: %w", plan.ID, err)
	}
	c.Invalidate(plan.ID)

	c.log.Info("plan updated",
		zap.String("plan_id", plan.ID),
		zap.Int("version", plan.Version))
	return nil
}

// Invalidate drops a single plan from the cache
func (c *planCatalog) Invalidate(planID string) {
	c.mu.Lock()
	delete(c.cache, planID)
	c.mu.Unlock()
}

// InvalidateAll drops every cached plan
func (c *planCatalog) InvalidateAll() {
	c.mu.Lock()
	c.cache = make(map[string]planCacheEntry)
	c.mu.Unlock()
}
