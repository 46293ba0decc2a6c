package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

func TestIsEnabledLayering(t *testing.T) {
	env := newTestEnv(t)
	features := NewFeatureService(env.catalog, logger.NewNop())

	tenant := activeTenant("t-acme", "acme", "basic", "classic")
	tenant.FeatureOverrides = map[string]bool{
		"modules.pos": true, // tenant paid for POS although basic excludes it
	}

	ctx := context.Background()
	tests := []struct {
		path     string
		expected bool
	}{
		{"modules.pos", true},            // override beats plan
		{"modules.reports", true},        // plan beats platform default
		{"checkout.coupons", false},      // platform default, untouched by basic
		{"storefront.pages.about", true}, // platform default, enabled
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, features.IsEnabled(ctx, tenant, tt.path), "path %q", tt.path)
	}
}

func TestIsEnabledFailsOpenForUnknownPath(t *testing.T) {
	env := newTestEnv(t)
	features := NewFeatureService(env.catalog, logger.NewNop())

	tenant := activeTenant("t-demo", "demo", "free", "classic")

	// A path absent from defaults, plan, and overrides resolves to
	// enabled: new features never break existing tenants.
	assert.True(t, features.IsEnabled(context.Background(), tenant, "modules.some_future_module"))
}

func TestIsEnabledOverrideCanDisable(t *testing.T) {
	env := newTestEnv(t)
	features := NewFeatureService(env.catalog, logger.NewNop())

	tenant := activeTenant("t-pro", "prostore", "pro", "classic")
	tenant.FeatureOverrides = map[string]bool{"checkout.coupons": false}

	assert.False(t, features.IsEnabled(context.Background(), tenant, "checkout.coupons"),
		"override should win even against a pro plan grant")
}

func TestEffectiveMergesAllLayers(t *testing.T) {
	env := newTestEnv(t)
	features := NewFeatureService(env.catalog, logger.NewNop())

	tenant := activeTenant("t-acme", "acme", "basic", "classic")
	tenant.FeatureOverrides = map[string]bool{"modules.pos": true}

	merged := features.Effective(context.Background(), tenant)

	assert.True(t, merged["modules.pos"])
	assert.True(t, merged["modules.reports"])
	assert.False(t, merged["checkout.coupons"])
}

func TestEffectiveFallsBackToFreePlan(t *testing.T) {
	env := newTestEnv(t)
	features := NewFeatureService(env.catalog, logger.NewNop())

	// dangling plan reference: feature resolution must still answer
	tenant := activeTenant("t-orphan", "orphan", "retired-plan", "classic")

	merged := features.Effective(context.Background(), tenant)
	assert.False(t, merged["modules.pos"], "fallback free plan disables pos")
}

func TestFeatureOverrideRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	features := NewFeatureService(env.catalog, logger.NewNop())
	tenants := NewTenantService(env.tenantRepo, env.catalog, logger.NewNop())

	seeded := env.seedTenant(t, activeTenant("t-acme", "acme", "basic", "classic"))
	ctx := context.Background()

	reload := func() bool {
		tenant, err := env.tenantRepo.GetByID(ctx, seeded.ID)
		require.NoError(t, err)
		require.NotNil(t, tenant)
		return features.IsEnabled(ctx, tenant, "modules.pos")
	}

	assert.False(t, reload(), "basic plan starts with pos disabled")

	require.NoError(t, tenants.SetFeatureOverride(ctx, seeded.ID, "modules.pos", true))
	assert.True(t, reload(), "override enables pos")

	require.NoError(t, tenants.ClearFeatureOverride(ctx, seeded.ID, "modules.pos"))
	assert.False(t, reload(), "clearing the override restores plan inheritance")
}
