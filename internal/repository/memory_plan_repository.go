package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
)

// MemoryPlanRepository is an in-memory implementation of PlanRepository
// for tests and local development
type MemoryPlanRepository struct {
	mu    sync.RWMutex
	plans map[string]*domain.Plan
}

// NewMemoryPlanRepository creates a new in-memory plan repository
func NewMemoryPlanRepository() *MemoryPlanRepository {
	return &MemoryPlanRepository{plans: make(map[string]*domain.Plan)}
}

// GetByID retrieves a plan by its unique name
func (r *MemoryPlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, exists := r.plans[id]
	if !exists {
		return nil, nil
	}
	return copyPlan(plan), nil
}

// List retrieves all plans for the administrative UI
func (r *MemoryPlanRepository) List(ctx context.Context) ([]*domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plans := make([]*domain.Plan, 0, len(r.plans))
	for _, plan := range r.plans {
		plans = append(plans, copyPlan(plan))
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	return plans, nil
}

// Upsert inserts or updates a plan, bumping its version on update
func (r *MemoryPlanRepository) Upsert(ctx context.Context, plan *domain.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := copyPlan(plan)
	copied.UpdatedAt = time.Now()
	if existing, exists := r.plans[plan.ID]; exists {
		copied.Version = existing.Version + 1
		copied.CreatedAt = existing.CreatedAt
	} else {
		copied.Version = 1
		copied.CreatedAt = copied.UpdatedAt
	}
	r.plans[plan.ID] = copied
	plan.Version = copied.Version
	return nil
}

func copyPlan(plan *domain.Plan) *domain.Plan {
	copied := *plan
	copied.AllowedThemes = append([]string(nil), plan.AllowedThemes...)
	if plan.Features != nil {
		copied.Features = make(map[string]bool, len(plan.Features))
		for path, enabled := range plan.Features {
			copied.Features[path] = enabled
		}
	}
	return &copied
}
