package main

import (
	"github.com/gin-gonic/gin"

	"github.com/adelfree2023-dev/storefront-engine/internal/di"
	"github.com/adelfree2023-dev/storefront-engine/internal/middleware"
	"github.com/adelfree2023-dev/storefront-engine/pkg/config"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
	"github.com/adelfree2023-dev/storefront-engine/pkg/telemetry"
)

func newRouter(cfg *config.Config, log *logger.Logger, c *di.Container, metrics *telemetry.EngineMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", c.HealthHandler.Live)
	router.GET("/health/ready", c.HealthHandler.Ready)

	// Tenant-scoped storefront surface: the middleware resolves the host
	// and attaches the computed context before any handler runs
	storefront := router.Group("/api/v1/storefront")
	storefront.Use(middleware.TenantMiddleware(c.Resolver, c.Catalog, c.Features, c.Themes, metrics, log))
	{
		storefront.GET("/context", c.StorefrontHandler.Context)
		storefront.GET("/features/*path", c.StorefrontHandler.Feature)
	}

	// Platform administration
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.AdminAuth(&middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}))
	admin.Use(middleware.RequireRole(middleware.RolePlatformAdmin))
	{
		admin.POST("/tenants", c.TenantHandler.Provision)
		admin.GET("/tenants/:id", c.TenantHandler.GetByID)
		admin.PUT("/tenants/:id/plan", c.TenantHandler.SetPlan)
		admin.PUT("/tenants/:id/theme", c.TenantHandler.SetTheme)
		admin.PUT("/tenants/:id/features", c.TenantHandler.SetFeatureOverride)
		admin.DELETE("/tenants/:id/features/*path", c.TenantHandler.ClearFeatureOverride)
		admin.GET("/tenants/:id/limits/:resource", c.TenantHandler.LimitStatus)
		admin.POST("/tenants/:id/limits/:resource/reserve", c.TenantHandler.Reserve)

		admin.GET("/plans", c.PlanHandler.List)
		admin.GET("/plans/:id", c.PlanHandler.GetByID)
		admin.PUT("/plans/:id", c.PlanHandler.Upsert)
	}

	return router
}
