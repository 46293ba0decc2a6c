package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/internal/repository"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

// countingPlanRepo wraps a PlanRepository and counts GetByID calls so the
// tests can observe cache hits
type countingPlanRepo struct {
	repository.PlanRepository
	gets atomic.Int64
}

func (r *countingPlanRepo) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	r.gets.Add(1)
	return r.PlanRepository.GetByID(ctx, id)
}

func newCountingCatalog(t *testing.T, ttl time.Duration) (PlanCatalog, *countingPlanRepo) {
	t.Helper()
	env := newTestEnv(t)
	counting := &countingPlanRepo{PlanRepository: env.planRepo}
	return NewPlanCatalog(counting, ttl, logger.NewNop()), counting
}

func TestGetPlanCachesHits(t *testing.T) {
	catalog, repo := newCountingCatalog(t, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		plan, err := catalog.GetPlan(ctx, "basic")
		require.NoError(t, err)
		assert.Equal(t, "basic", plan.ID)
	}
	assert.Equal(t, int64(1), repo.gets.Load(), "repeated reads within the TTL hit the cache")
}

func TestGetPlanCachesMisses(t *testing.T) {
	catalog, repo := newCountingCatalog(t, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := catalog.GetPlan(ctx, "no-such-plan")
		assert.ErrorIs(t, err, ErrPlanNotFound)
	}
	assert.Equal(t, int64(1), repo.gets.Load(), "a confirmed miss is cached too")
}

func TestGetPlanEmptyID(t *testing.T) {
	catalog, repo := newCountingCatalog(t, time.Minute)

	_, err := catalog.GetPlan(context.Background(), "")
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.Zero(t, repo.gets.Load(), "an empty id never reaches the repository")
}

func TestGetPlanTTLExpiry(t *testing.T) {
	catalog, repo := newCountingCatalog(t, 10*time.Millisecond)
	ctx := context.Background()

	_, err := catalog.GetPlan(ctx, "basic")
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, err = catalog.GetPlan(ctx, "basic")
	require.NoError(t, err)
	assert.Equal(t, int64(2), repo.gets.Load(), "an expired entry reloads from the repository")
}

func TestInvalidateDropsEntry(t *testing.T) {
	catalog, repo := newCountingCatalog(t, time.Minute)
	ctx := context.Background()

	_, err := catalog.GetPlan(ctx, "basic")
	require.NoError(t, err)

	catalog.Invalidate("basic")

	_, err = catalog.GetPlan(ctx, "basic")
	require.NoError(t, err)
	assert.Equal(t, int64(2), repo.gets.Load())
}

func TestUpsertInvalidatesAndBumpsVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stale, err := env.catalog.GetPlan(ctx, "basic")
	require.NoError(t, err)

	updated := *stale
	updated.Limits.MaxProducts = 500
	require.NoError(t, env.catalog.Upsert(ctx, &updated))

	fresh, err := env.catalog.GetPlan(ctx, "basic")
	require.NoError(t, err)
	assert.Equal(t, 500, fresh.Limits.MaxProducts, "upsert must invalidate the cached entry")
	assert.Equal(t, stale.Version+1, fresh.Version)
}

func TestUpsertRejectsUnknownAllowedTheme(t *testing.T) {
	env := newTestEnv(t)

	err := env.catalog.Upsert(context.Background(), &domain.Plan{
		ID:            "neon-tier",
		Name:          "Neon",
		AllowedThemes: []string{"classic", "neon"},
	})
	assert.ErrorIs(t, err, ErrUnknownTheme)
}

func TestUpsertAcceptsWildcardTheme(t *testing.T) {
	env := newTestEnv(t)

	err := env.catalog.Upsert(context.Background(), &domain.Plan{
		ID:            "enterprise",
		Name:          "Enterprise",
		AllowedThemes: []string{domain.ThemeWildcard},
	})
	assert.NoError(t, err)
}

func TestEffectivePlanSubstitutesFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resolved := env.catalog.EffectivePlan(ctx, activeTenant("t-orphan", "orphan", "retired-plan", "classic"))
	assert.Equal(t, domain.FallbackPlanID, resolved.ID)

	resolved = env.catalog.EffectivePlan(ctx, activeTenant("t-acme", "acme", "basic", "classic"))
	assert.Equal(t, "basic", resolved.ID)
}

func TestListBypassesCache(t *testing.T) {
	catalog, repo := newCountingCatalog(t, time.Minute)

	plans, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, plans, 3)
	assert.Zero(t, repo.gets.Load())
}
