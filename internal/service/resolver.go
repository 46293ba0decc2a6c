package service

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/internal/repository"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantAlreadyExists = errors.New("tenant with this slug already exists")
	ErrPlanNotFound        = errors.New("plan not found")
	ErrUnknownTheme        = errors.New("theme is not registered")
	ErrThemeNotAllowed     = errors.New("theme is not allowed by the tenant's plan")
)

// resolveCacheKeyPrefix namespaces host->tenant entries in Redis
const resolveCacheKeyPrefix = "storefront:resolve:"

// ResolverConfig holds tenant resolution settings
type ResolverConfig struct {
	// BaseDomain is the platform domain that tenant subdomains hang off,
	// e.g. "shops.example.com" for "acme.shops.example.com"
	BaseDomain string
	// DevFallbackEnabled resolves bare hosts (localhost, the base domain
	// itself) to DevFallbackSlug. Development only; config validation
	// refuses it in production.
	DevFallbackEnabled bool
	// DevFallbackSlug is the tenant slug used by the dev fallback
	DevFallbackSlug string
	// CacheTTL bounds how long a host->tenant mapping is cached
	CacheTTL time.Duration
}

// TenantResolver maps an inbound request host to the tenant that owns it
type TenantResolver interface {
	// Resolve maps a Host header to a tenant. Returns ErrTenantNotFound
	// when no tenant matches; callers must treat that as a public
	// "store not found" response, never substitute another tenant.
	Resolve(ctx context.Context, hostHeader string) (*domain.Tenant, error)
}

// tenantResolver implements TenantResolver
type tenantResolver struct {
	tenantRepo repository.TenantRepository
	cache      redis.UniversalClient // optional, nil disables caching
	cfg        ResolverConfig
	log        *logger.Logger
}

// NewTenantResolver creates a new TenantResolver. The Redis client is
// optional; when nil every resolution hits the repository.
func NewTenantResolver(tenantRepo repository.TenantRepository, cache redis.UniversalClient, cfg ResolverConfig, log *logger.Logger) TenantResolver {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &tenantResolver{
		tenantRepo: tenantRepo,
		cache:      cache,
		cfg:        cfg,
		log:        log,
	}
}

// Resolve maps a Host header to a tenant
func (r *tenantResolver) Resolve(ctx context.Context, hostHeader string) (*domain.Tenant, error) {
	host := NormalizeHost(hostHeader)
	if host == "" {
		return nil, ErrTenantNotFound
	}

	if id := r.cachedTenantID(ctx, host); id != "" {
		tenant, err := r.tenantRepo.GetByID(ctx, id)
		if err == nil && tenant != nil && tenant.IsActive {
			return tenant, nil
		}
		// Stale cache entry; fall through to a full lookup
	}

	tenant, err := r.lookup(ctx, host)
	if err != nil {
		return nil, err
	}

	r.cacheTenantID(ctx, host, tenant.ID)
	return tenant, nil
}

func (r *tenantResolver) lookup(ctx context.Context, host string) (*domain.Tenant, error) {
	// Custom domains win over subdomain slugs
	tenant, err := r.tenantRepo.GetByCustomDomain(ctx, host)
	if err != nil {
		return nil, err
	}
	if tenant != nil && tenant.IsActive {
		return tenant, nil
	}

	if slug, ok := r.subdomainSlug(host); ok {
		tenant, err = r.tenantRepo.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if tenant != nil && tenant.IsActive {
			return tenant, nil
		}
		return nil, ErrTenantNotFound
	}

	// Bare host: explicit development fallback only
	if r.cfg.DevFallbackEnabled && r.isBareHost(host) {
		tenant, err = r.tenantRepo.GetBySlug(ctx, r.cfg.DevFallbackSlug)
		if err != nil {
			return nil, err
		}
		if tenant != nil && tenant.IsActive {
			r.log.Debug("resolved dev fallback tenant",
				zap.String("host", host),
				zap.String("slug", r.cfg.DevFallbackSlug))
			return tenant, nil
		}
	}

	return nil, ErrTenantNotFound
}

// subdomainSlug extracts the tenant slug from a subdomain of the base
// domain. "acme.shops.example.com" -> "acme" when BaseDomain is
// "shops.example.com".
func (r *tenantResolver) subdomainSlug(host string) (string, bool) {
	if r.cfg.BaseDomain == "" {
		return "", false
	}
	suffix := "." + r.cfg.BaseDomain
	if !strings.HasSuffix(host, suffix) {
		return "", false
	}
	slug := strings.TrimSuffix(host, suffix)
	if slug == "" || strings.Contains(slug, ".") {
		return "", false
	}
	return slug, true
}

// isBareHost reports whether the host carries no tenant information:
// the base domain itself, or a dot-less development host like "localhost"
func (r *tenantResolver) isBareHost(host string) bool {
	return host == r.cfg.BaseDomain || !strings.Contains(host, ".")
}

func (r *tenantResolver) cachedTenantID(ctx context.Context, host string) string {
	if r.cache == nil {
		return ""
	}
	id, err := r.cache.Get(ctx, resolveCacheKeyPrefix+host).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn("resolver cache read failed", zap.String("host", host), zap.Error(err))
		}
		return ""
	}
	return id
}

func (r *tenantResolver) cacheTenantID(ctx context.Context, host, tenantID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, resolveCacheKeyPrefix+host, tenantID, r.cfg.CacheTTL).Err(); err != nil {
		r.log.Warn("resolver cache write failed", zap.String("host", host), zap.Error(err))
	}
}

// NormalizeHost lowercases a Host header and strips any port and
// trailing dot
func NormalizeHost(hostHeader string) string {
	host := strings.TrimSpace(strings.ToLower(hostHeader))
	if host == "" {
		return ""
	}
	if stripped, _, err := net.SplitHostPort(host); err == nil {
		host = stripped
	}
	return strings.TrimSuffix(host, ".")
}
