package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/internal/service"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
	"github.com/adelfree2023-dev/storefront-engine/pkg/response"
	"github.com/adelfree2023-dev/storefront-engine/pkg/telemetry"
)

// ContextKeyStorefront is the gin context key holding the StorefrontContext
const ContextKeyStorefront = "storefront_context"

// StorefrontContext is everything the engine derives for one request:
// the resolved tenant, its effective plan and feature set, and the theme
// variants to render. Computed once here, passed explicitly downstream;
// handlers never re-resolve or read ambient globals.
type StorefrontContext struct {
	Tenant       *domain.Tenant
	Plan         *domain.Plan
	Features     map[string]bool
	Variants     map[domain.Slot]string
	ThemeAllowed bool
}

// IsEnabled answers a feature point query against the precomputed merge,
// with the same fail-open default as the evaluator
func (sc *StorefrontContext) IsEnabled(path string) bool {
	if enabled, ok := sc.Features[path]; ok {
		return enabled
	}
	return true
}

// TenantMiddleware resolves the request host to a tenant and attaches the
// computed StorefrontContext before route handling. An unresolvable host
// ends the request with the public "store not found" response.
func TenantMiddleware(
	resolver service.TenantResolver,
	catalog service.PlanCatalog,
	features service.FeatureService,
	themes service.ThemeDispatcher,
	metrics *telemetry.EngineMetrics,
	log *logger.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		tenant, err := resolver.Resolve(ctx, c.Request.Host)
		if err != nil {
			if errors.Is(err, service.ErrTenantNotFound) {
				metrics.RecordResolution(ctx, "not_found")
				c.AbortWithStatusJSON(http.StatusNotFound, response.StoreNotFound())
				return
			}
			metrics.RecordResolution(ctx, "error")
			log.WithContext(ctx).Error("tenant resolution failed",
				zap.String("host", c.Request.Host),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.InternalError(""))
			return
		}
		metrics.RecordResolution(ctx, "ok")

		plan := catalog.EffectivePlan(ctx, tenant)
		c.Set(ContextKeyStorefront, &StorefrontContext{
			Tenant:       tenant,
			Plan:         plan,
			Features:     features.Effective(ctx, tenant),
			Variants:     themes.ResolveAll(tenant),
			ThemeAllowed: themes.IsTenantThemeAllowed(ctx, tenant),
		})
		c.Next()
	}
}

// StorefrontFrom extracts the StorefrontContext attached by
// TenantMiddleware
func StorefrontFrom(c *gin.Context) (*StorefrontContext, bool) {
	value, exists := c.Get(ContextKeyStorefront)
	if !exists {
		return nil, false
	}
	sc, ok := value.(*StorefrontContext)
	return sc, ok
}
