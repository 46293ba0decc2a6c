package service

import (
	"context"
	"testing"
	"time"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/internal/repository"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

// testEnv wires the in-memory repositories behind the real services
type testEnv struct {
	tenantRepo *repository.MemoryTenantRepository
	planRepo   *repository.MemoryPlanRepository
	catalog    PlanCatalog
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tenantRepo: repository.NewMemoryTenantRepository(),
		planRepo:   repository.NewMemoryPlanRepository(),
	}
	env.catalog = NewPlanCatalog(env.planRepo, time.Minute, logger.NewNop())
	env.seedPlans(t)
	return env
}

func (env *testEnv) seedPlans(t *testing.T) {
	t.Helper()

	plans := []*domain.Plan{
		{
			ID:   "free",
			Name: "Free",
			Limits: domain.Limits{
				MaxProducts:   10,
				MaxCategories: 3,
				MaxStaff:      1,
				MaxStorageMB:  100,
			},
			AllowedThemes: []string{"classic"},
			Features: map[string]bool{
				"modules.pos":     false,
				"modules.reports": false,
			},
		},
		{
			ID:   "basic",
			Name: "Basic",
			Limits: domain.Limits{
				MaxProducts:   100,
				MaxCategories: 20,
				MaxStaff:      3,
				MaxStorageMB:  1024,
			},
			AllowedThemes: []string{"classic", "boutique"},
			Features: map[string]bool{
				"modules.pos":     false,
				"modules.reports": true,
			},
		},
		{
			ID:   "pro",
			Name: "Pro",
			Limits: domain.Limits{
				MaxProducts:   domain.UnlimitedLimit,
				MaxCategories: domain.UnlimitedLimit,
				MaxStaff:      domain.UnlimitedLimit,
				MaxStorageMB:  domain.UnlimitedLimit,
			},
			AllowedThemes: []string{domain.ThemeWildcard},
			Features: map[string]bool{
				"modules.pos":      true,
				"modules.reports":  true,
				"checkout.coupons": true,
			},
		},
	}
	for _, plan := range plans {
		if err := env.planRepo.Upsert(context.Background(), plan); err != nil {
			t.Fatalf("seed plan %s: %v", plan.ID, err)
		}
	}
}

func (env *testEnv) seedTenant(t *testing.T, tenant *domain.Tenant) *domain.Tenant {
	t.Helper()

	now := time.Now()
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = now
		tenant.UpdatedAt = now
	}
	if err := env.tenantRepo.Create(context.Background(), tenant); err != nil {
		t.Fatalf("seed tenant %s: %v", tenant.Slug, err)
	}
	return tenant
}

func activeTenant(id, slug, planID, themeID string) *domain.Tenant {
	return &domain.Tenant{
		ID:       id,
		Name:     slug,
		Slug:     slug,
		PlanID:   planID,
		ThemeID:  themeID,
		IsActive: true,
	}
}
