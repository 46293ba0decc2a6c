package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

// FeatureService answers feature gate queries for a tenant by merging
// three layers of flat dot-path maps, later layers winning per-leaf:
//
//  1. platform defaults (the registry of valid paths)
//  2. the tenant's plan features
//  3. the tenant's own overrides
//
// A path absent from all three layers resolves to true. This fail-open
// default is a deliberate contract: shipping a new gated feature never
// breaks tenants that predate its registry entry. The flip side is that a
// genuinely restrictive feature is unenforceable until it is registered
// with an explicit platform default.
type FeatureService interface {
	// IsEnabled answers a point query for one feature path
	IsEnabled(ctx context.Context, tenant *domain.Tenant, path string) bool
	// Effective returns the full merged feature map for the tenant,
	// computed once and reusable for the whole request
	Effective(ctx context.Context, tenant *domain.Tenant) map[string]bool
}

// featureService implements FeatureService
type featureService struct {
	catalog PlanCatalog
	log     *logger.Logger
}

// NewFeatureService creates a new FeatureService
func NewFeatureService(catalog PlanCatalog, log *logger.Logger) FeatureService {
	return &featureService{catalog: catalog, log: log}
}

// IsEnabled answers a point query for one feature path
func (s *featureService) IsEnabled(ctx context.Context, tenant *domain.Tenant, path string) bool {
	merged := s.Effective(ctx, tenant)
	if enabled, ok := merged[path]; ok {
		return enabled
	}
	// Unknown path: fail open. Not an error.
	s.log.Debug("unknown feature path, defaulting to enabled",
		zap.String("tenant_id", tenant.ID),
		zap.String("path", path))
	return true
}

// Effective returns the full merged feature map for the tenant
func (s *featureService) Effective(ctx context.Context, tenant *domain.Tenant) map[string]bool {
	plan := s.catalog.EffectivePlan(ctx, tenant)
	return domain.MergeFeatures(domain.DefaultFeatures(), plan.Features, tenant.FeatureOverrides)
}
