package di

import (
	"github.com/redis/go-redis/v9"

	"github.com/adelfree2023-dev/storefront-engine/internal/events"
	"github.com/adelfree2023-dev/storefront-engine/internal/handler"
	"github.com/adelfree2023-dev/storefront-engine/internal/repository"
	"github.com/adelfree2023-dev/storefront-engine/internal/service"
	"github.com/adelfree2023-dev/storefront-engine/pkg/config"
	"github.com/adelfree2023-dev/storefront-engine/pkg/database"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
	"github.com/adelfree2023-dev/storefront-engine/pkg/telemetry"
)

// Container holds all dependencies for the storefront engine
type Container struct {
	// Infrastructure
	DB      *database.PostgresDB
	Redis   redis.UniversalClient
	Metrics *telemetry.EngineMetrics

	// Repositories
	TenantRepo repository.TenantRepository
	PlanRepo   repository.PlanRepository

	// Services
	Resolver      service.TenantResolver
	Catalog       service.PlanCatalog
	Features      service.FeatureService
	Limits        service.LimitEnforcer
	Themes        service.ThemeDispatcher
	TenantService service.TenantService

	// Events
	Publisher events.PlanEventPublisher

	// Handlers
	HealthHandler     *handler.HealthHandler
	StorefrontHandler *handler.StorefrontHandler
	TenantHandler     *handler.TenantHandler
	PlanHandler       *handler.PlanHandler
}

// ContainerConfig contains the externally constructed pieces
type ContainerConfig struct {
	Config     *config.Config
	Log        *logger.Logger
	DB         *database.PostgresDB
	Redis      redis.UniversalClient
	Metrics    *telemetry.EngineMetrics
	TenantRepo repository.TenantRepository
	PlanRepo   repository.PlanRepository
	Publisher  events.PlanEventPublisher
}

// NewContainer wires repositories, services and handlers
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:         cfg.DB,
		Redis:      cfg.Redis,
		Metrics:    cfg.Metrics,
		TenantRepo: cfg.TenantRepo,
		PlanRepo:   cfg.PlanRepo,
		Publisher:  cfg.Publisher,
	}

	c.Resolver = service.NewTenantResolver(c.TenantRepo, c.Redis, service.ResolverConfig{
		BaseDomain:         cfg.Config.Engine.BaseDomain,
		DevFallbackEnabled: cfg.Config.Engine.DevFallbackEnabled,
		DevFallbackSlug:    cfg.Config.Engine.DevFallbackSlug,
		CacheTTL:           cfg.Config.Engine.ResolverCacheTTL,
	}, cfg.Log)
	c.Catalog = service.NewPlanCatalog(c.PlanRepo, cfg.Config.Engine.PlanCacheTTL, cfg.Log)
	c.Features = service.NewFeatureService(c.Catalog, cfg.Log)
	c.Limits = service.NewLimitEnforcer(c.Catalog, c.TenantRepo, cfg.Log)
	c.Themes = service.NewThemeDispatcher(c.Catalog, cfg.Log)
	c.TenantService = service.NewTenantService(c.TenantRepo, c.Catalog, cfg.Log)

	c.HealthHandler = handler.NewHealthHandler(c.DB)
	c.StorefrontHandler = handler.NewStorefrontHandler()
	c.TenantHandler = handler.NewTenantHandler(c.TenantService, c.TenantRepo, c.Limits, c.Metrics)
	c.PlanHandler = handler.NewPlanHandler(c.Catalog, c.Publisher)

	return c
}
