package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

func newTestEnforcer(env *testEnv) LimitEnforcer {
	return NewLimitEnforcer(env.catalog, env.tenantRepo, logger.NewNop())
}

func TestCheckBoundary(t *testing.T) {
	env := newTestEnv(t)
	enforcer := newTestEnforcer(env)
	tenant := activeTenant("t-acme", "acme", "basic", "classic") // 100 products

	ctx := context.Background()
	tests := []struct {
		name    string
		current int
		allowed bool
	}{
		{"well under the limit", 50, true},
		{"one below the limit", 99, true},
		{"at the limit", 100, false},
		{"over the limit", 150, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := enforcer.Check(ctx, tenant, domain.ResourceProducts, tt.current)
			assert.Equal(t, tt.allowed, check.Allowed)
			assert.Equal(t, 100, check.Limit)
			assert.Equal(t, tt.current, check.Current)
			if tt.allowed {
				assert.NoError(t, check.Err())
			} else {
				assert.ErrorIs(t, check.Err(), ErrLimitExceeded)
			}
		})
	}
}

func TestCheckUnlimited(t *testing.T) {
	env := newTestEnv(t)
	enforcer := newTestEnforcer(env)
	tenant := activeTenant("t-pro", "prostore", "pro", "classic")

	check := enforcer.Check(context.Background(), tenant, domain.ResourceProducts, 1_000_000)
	assert.True(t, check.Allowed)
	assert.Equal(t, domain.UnlimitedLimit, check.Limit)
}

func TestCheckFallsBackToFreePlanLimits(t *testing.T) {
	env := newTestEnv(t)
	enforcer := newTestEnforcer(env)
	tenant := activeTenant("t-orphan", "orphan", "retired-plan", "classic")

	check := enforcer.Check(context.Background(), tenant, domain.ResourceProducts, 10)
	assert.False(t, check.Allowed, "fallback free plan caps products at 10")
	assert.Equal(t, 10, check.Limit)
}

func TestCheckCurrentReadsUsage(t *testing.T) {
	env := newTestEnv(t)
	enforcer := newTestEnforcer(env)
	tenant := env.seedTenant(t, activeTenant("t-acme", "acme", "basic", "classic"))
	env.tenantRepo.SetUsage(tenant.ID, domain.ResourceStaff, 3) // basic caps staff at 3

	check, err := enforcer.CheckCurrent(context.Background(), tenant, domain.ResourceStaff)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, 3, check.Current)
}

func TestReserveStopsAtLimit(t *testing.T) {
	env := newTestEnv(t)
	enforcer := newTestEnforcer(env)
	tenant := env.seedTenant(t, activeTenant("t-demo", "demo", "free", "classic")) // 1 staff

	ctx := context.Background()

	check, err := enforcer.Reserve(ctx, tenant, domain.ResourceStaff)
	require.NoError(t, err)
	assert.True(t, check.Allowed)
	assert.Equal(t, 1, check.Current)

	check, err = enforcer.Reserve(ctx, tenant, domain.ResourceStaff)
	require.NoError(t, err)
	assert.False(t, check.Allowed, "second reservation must fail at the ceiling")
	assert.Equal(t, 1, check.Current, "a denied reservation must not bump the counter")
}

func TestReserveNeverOvershootsUnderConcurrency(t *testing.T) {
	env := newTestEnv(t)
	enforcer := newTestEnforcer(env)
	tenant := env.seedTenant(t, activeTenant("t-acme", "acme", "basic", "classic")) // 3 staff

	ctx := context.Background()
	const attempts = 50

	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			check, err := enforcer.Reserve(ctx, tenant, domain.ResourceStaff)
			if err != nil {
				t.Error(err)
				return
			}
			results <- check.Allowed
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for allowed := range results {
		if allowed {
			granted++
		}
	}
	assert.Equal(t, 3, granted, "exactly limit reservations may succeed")

	usage, err := env.tenantRepo.GetUsage(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, usage.Staff, "the counter must land exactly on the ceiling")
}

func TestAdvisoryCheckCanOvershoot(t *testing.T) {
	// Demonstrates the documented soft-limit behavior: two callers that
	// both Check before either increments will both be allowed at N-1.
	env := newTestEnv(t)
	enforcer := newTestEnforcer(env)
	tenant := env.seedTenant(t, activeTenant("t-demo", "demo", "free", "classic")) // 1 staff
	ctx := context.Background()

	first := enforcer.Check(ctx, tenant, domain.ResourceStaff, 0)
	second := enforcer.Check(ctx, tenant, domain.ResourceStaff, 0)

	assert.True(t, first.Allowed)
	assert.True(t, second.Allowed, "advisory checks do not serialize; use Reserve for strictness")
}

func TestReleaseReturnsAUnit(t *testing.T) {
	env := newTestEnv(t)
	enforcer := newTestEnforcer(env)
	tenant := env.seedTenant(t, activeTenant("t-demo", "demo", "free", "classic")) // 1 staff
	ctx := context.Background()

	check, err := enforcer.Reserve(ctx, tenant, domain.ResourceStaff)
	require.NoError(t, err)
	require.True(t, check.Allowed)

	require.NoError(t, enforcer.Release(ctx, tenant, domain.ResourceStaff))

	check, err = enforcer.Reserve(ctx, tenant, domain.ResourceStaff)
	require.NoError(t, err)
	assert.True(t, check.Allowed, "released capacity is reservable again")
}

func TestReserveUnlimitedPlan(t *testing.T) {
	env := newTestEnv(t)
	enforcer := newTestEnforcer(env)
	tenant := env.seedTenant(t, activeTenant("t-pro", "prostore", "pro", "classic"))
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		check, err := enforcer.Reserve(ctx, tenant, domain.ResourceProducts)
		require.NoError(t, err)
		assert.True(t, check.Allowed)
	}
}
