package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

func newTestResolver(env *testEnv, cfg ResolverConfig) TenantResolver {
	if cfg.BaseDomain == "" {
		cfg.BaseDomain = "shops.example.com"
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Minute
	}
	return NewTenantResolver(env.tenantRepo, nil, cfg, logger.NewNop())
}

func TestResolveBySubdomainSlug(t *testing.T) {
	env := newTestEnv(t)
	env.seedTenant(t, activeTenant("t-acme", "acme", "basic", "boutique"))
	resolver := newTestResolver(env, ResolverConfig{})

	tenant, err := resolver.Resolve(context.Background(), "acme.shops.example.com")
	require.NoError(t, err)
	assert.Equal(t, "t-acme", tenant.ID)
}

func TestResolveByCustomDomain(t *testing.T) {
	env := newTestEnv(t)
	seeded := activeTenant("t-acme", "acme", "basic", "boutique")
	seeded.CustomDomain = "www.acme-store.com"
	env.seedTenant(t, seeded)
	resolver := newTestResolver(env, ResolverConfig{})

	tenant, err := resolver.Resolve(context.Background(), "www.acme-store.com")
	require.NoError(t, err)
	assert.Equal(t, "t-acme", tenant.ID)
}

func TestResolveCustomDomainWinsOverSubdomain(t *testing.T) {
	env := newTestEnv(t)

	// a tenant whose custom domain happens to look like another tenant's
	// subdomain
	byDomain := activeTenant("t-domain", "domain-owner", "pro", "classic")
	byDomain.CustomDomain = "acme.shops.example.com"
	env.seedTenant(t, byDomain)
	env.seedTenant(t, activeTenant("t-acme", "acme", "basic", "classic"))

	resolver := newTestResolver(env, ResolverConfig{})

	tenant, err := resolver.Resolve(context.Background(), "acme.shops.example.com")
	require.NoError(t, err)
	assert.Equal(t, "t-domain", tenant.ID)
}

func TestResolveNormalizesHost(t *testing.T) {
	env := newTestEnv(t)
	env.seedTenant(t, activeTenant("t-acme", "acme", "basic", "classic"))
	resolver := newTestResolver(env, ResolverConfig{})

	for _, host := range []string{
		"ACME.Shops.Example.COM",
		"acme.shops.example.com:8080",
		"acme.shops.example.com.",
	} {
		tenant, err := resolver.Resolve(context.Background(), host)
		require.NoError(t, err, "host %q", host)
		assert.Equal(t, "t-acme", tenant.ID, "host %q", host)
	}
}

func TestResolveUnknownHost(t *testing.T) {
	env := newTestEnv(t)
	resolver := newTestResolver(env, ResolverConfig{})

	for _, host := range []string{
		"ghost.shops.example.com",
		"unrelated.example.org",
		"a.b.shops.example.com", // nested subdomains carry no slug
		"",
	} {
		_, err := resolver.Resolve(context.Background(), host)
		assert.ErrorIs(t, err, ErrTenantNotFound, "host %q", host)
	}
}

func TestResolveInactiveTenant(t *testing.T) {
	env := newTestEnv(t)
	inactive := activeTenant("t-ghost", "ghost", "free", "classic")
	inactive.IsActive = false
	env.seedTenant(t, inactive)
	resolver := newTestResolver(env, ResolverConfig{})

	_, err := resolver.Resolve(context.Background(), "ghost.shops.example.com")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestResolveDevFallback(t *testing.T) {
	env := newTestEnv(t)
	env.seedTenant(t, activeTenant("t-demo", "demo", "free", "classic"))

	enabled := newTestResolver(env, ResolverConfig{
		DevFallbackEnabled: true,
		DevFallbackSlug:    "demo",
	})
	disabled := newTestResolver(env, ResolverConfig{})

	for _, host := range []string{"localhost", "shops.example.com", "localhost:3000"} {
		tenant, err := enabled.Resolve(context.Background(), host)
		require.NoError(t, err, "host %q", host)
		assert.Equal(t, "t-demo", tenant.ID, "host %q", host)

		_, err = disabled.Resolve(context.Background(), host)
		assert.ErrorIs(t, err, ErrTenantNotFound, "host %q with fallback disabled", host)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedTenant(t, activeTenant("t-acme", "acme", "basic", "classic"))
	resolver := newTestResolver(env, ResolverConfig{})

	var first *domain.Tenant
	for i := 0; i < 5; i++ {
		tenant, err := resolver.Resolve(context.Background(), "acme.shops.example.com")
		require.NoError(t, err)
		if first == nil {
			first = tenant
			continue
		}
		assert.Equal(t, first.ID, tenant.ID)
	}
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Acme.Shops.Example.COM", "acme.shops.example.com"},
		{"acme.shops.example.com:443", "acme.shops.example.com"},
		{"acme.shops.example.com.", "acme.shops.example.com"},
		{"  localhost:3000 ", "localhost"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeHost(tt.in), "input %q", tt.in)
	}
}
