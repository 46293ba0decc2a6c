package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/internal/middleware"
	"github.com/adelfree2023-dev/storefront-engine/internal/repository"
	"github.com/adelfree2023-dev/storefront-engine/internal/service"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
	"github.com/adelfree2023-dev/storefront-engine/pkg/response"
)

type handlerFixture struct {
	router     *gin.Engine
	tenantRepo *repository.MemoryTenantRepository
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tenantRepo := repository.NewMemoryTenantRepository()
	planRepo := repository.NewMemoryPlanRepository()
	log := logger.NewNop()

	for _, plan := range []*domain.Plan{
		{
			ID: "free", Name: "Free",
			Limits:        domain.Limits{MaxProducts: 10, MaxCategories: 3, MaxStaff: 1, MaxStorageMB: 100},
			AllowedThemes: []string{"classic"},
		},
		{
			ID: "basic", Name: "Basic",
			Limits:        domain.Limits{MaxProducts: 100, MaxCategories: 20, MaxStaff: 3, MaxStorageMB: 1024},
			AllowedThemes: []string{"classic", "boutique"},
			Features:      map[string]bool{"modules.reports": true},
		},
	} {
		require.NoError(t, planRepo.Upsert(context.Background(), plan))
	}

	catalog := service.NewPlanCatalog(planRepo, time.Minute, log)
	resolver := service.NewTenantResolver(tenantRepo, nil, service.ResolverConfig{
		BaseDomain: "shops.example.com",
	}, log)
	features := service.NewFeatureService(catalog, log)
	themes := service.NewThemeDispatcher(catalog, log)
	limits := service.NewLimitEnforcer(catalog, tenantRepo, log)
	tenants := service.NewTenantService(tenantRepo, catalog, log)

	storefrontHandler := NewStorefrontHandler()
	tenantHandler := NewTenantHandler(tenants, tenantRepo, limits, nil)

	router := gin.New()
	storefront := router.Group("/api/v1/storefront")
	storefront.Use(middleware.TenantMiddleware(resolver, catalog, features, themes, nil, log))
	storefront.GET("/context", storefrontHandler.Context)
	storefront.GET("/features/*path", storefrontHandler.Feature)

	admin := router.Group("/api/v1/admin")
	admin.POST("/tenants", tenantHandler.Provision)
	admin.GET("/tenants/:id", tenantHandler.GetByID)
	admin.PUT("/tenants/:id/plan", tenantHandler.SetPlan)
	admin.PUT("/tenants/:id/theme", tenantHandler.SetTheme)
	admin.PUT("/tenants/:id/features", tenantHandler.SetFeatureOverride)
	admin.GET("/tenants/:id/limits/:resource", tenantHandler.LimitStatus)
	admin.POST("/tenants/:id/limits/:resource/reserve", tenantHandler.Reserve)

	return &handlerFixture{router: router, tenantRepo: tenantRepo}
}

func (f *handlerFixture) seedTenant(t *testing.T, tenant *domain.Tenant) *domain.Tenant {
	t.Helper()
	now := time.Now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	require.NoError(t, f.tenantRepo.Create(context.Background(), tenant))
	return tenant
}

func (f *handlerFixture) do(method, path, host string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if host != "" {
		req.Host = host
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestStorefrontContextEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedTenant(t, &domain.Tenant{
		ID: "t-acme", Name: "Acme", Slug: "acme",
		PlanID: "basic", ThemeID: "boutique", IsActive: true,
	})

	rec := f.do(http.MethodGet, "/api/v1/storefront/context", "acme.shops.example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.True(t, body.Success)

	data := body.Data.(map[string]interface{})
	assert.Equal(t, "t-acme", data["tenant_id"])
	assert.Equal(t, "basic", data["plan_id"])
	assert.Equal(t, "boutique", data["theme_id"])
	assert.Equal(t, true, data["theme_allowed"])
}

func TestStorefrontContextUnknownHost(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/storefront/context", "ghost.shops.example.com", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decode(t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrCodeStoreNotFound, body.Error.Code)
}

func TestStorefrontFeatureEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.seedTenant(t, &domain.Tenant{
		ID: "t-acme", Name: "Acme", Slug: "acme",
		PlanID: "basic", ThemeID: "classic", IsActive: true,
	})

	tests := []struct {
		path    string
		enabled bool
	}{
		{"/api/v1/storefront/features/modules/reports", true},   // plan grant
		{"/api/v1/storefront/features/modules/pos", false},      // platform default
		{"/api/v1/storefront/features/modules/new_thing", true}, // unknown fails open
	}
	for _, tt := range tests {
		rec := f.do(http.MethodGet, tt.path, "acme.shops.example.com", nil)
		require.Equal(t, http.StatusOK, rec.Code, tt.path)

		data := decode(t, rec).Data.(map[string]interface{})
		assert.Equal(t, tt.enabled, data["enabled"], tt.path)
	}
}

func TestProvisionEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/admin/tenants", "", gin.H{
		"name": "Acme Store", "slug": "acme", "plan_id": "basic",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	data := decode(t, rec).Data.(map[string]interface{})
	assert.Equal(t, "acme", data["slug"])
	assert.Equal(t, "basic", data["plan_id"])
	assert.Equal(t, "classic", data["theme_id"])

	// same slug again
	rec = f.do(http.MethodPost, "/api/v1/admin/tenants", "", gin.H{
		"name": "Acme Again", "slug": "acme",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, response.ErrCodeTenantExists, decode(t, rec).Error.Code)
}

func TestProvisionRejectsBadSlug(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/admin/tenants", "", gin.H{
		"name": "Acme", "slug": "Not A Slug",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, response.ErrCodeInvalidSlug, decode(t, rec).Error.Code)
}

func TestSetThemeEndpointConflict(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, &domain.Tenant{
		ID: "t-acme", Name: "Acme", Slug: "acme",
		PlanID: "basic", ThemeID: "classic", IsActive: true,
	})

	rec := f.do(http.MethodPut, "/api/v1/admin/tenants/"+tenant.ID+"/theme", "", gin.H{
		"theme_id": "marketplace",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, response.ErrCodeThemeNotAllowed, decode(t, rec).Error.Code)
}

func TestReserveEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, &domain.Tenant{
		ID: "t-demo", Name: "Demo", Slug: "demo",
		PlanID: "free", ThemeID: "classic", IsActive: true,
	})

	url := "/api/v1/admin/tenants/" + tenant.ID + "/limits/staff/reserve"

	rec := f.do(http.MethodPost, url, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, "first reservation within the free plan's single staff seat")

	rec = f.do(http.MethodPost, url, "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode(t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, response.ErrCodeLimitExceeded, body.Error.Code)
	assert.Equal(t, "staff", body.Error.Details["resource"])
	assert.Equal(t, "1", body.Error.Details["limit"])
}

func TestLimitStatusEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, &domain.Tenant{
		ID: "t-acme", Name: "Acme", Slug: "acme",
		PlanID: "basic", ThemeID: "classic", IsActive: true,
	})
	f.tenantRepo.SetUsage(tenant.ID, domain.ResourceProducts, 99)

	rec := f.do(http.MethodGet, "/api/v1/admin/tenants/"+tenant.ID+"/limits/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decode(t, rec).Data.(map[string]interface{})
	assert.Equal(t, float64(100), data["limit"])
	assert.Equal(t, float64(99), data["current"])
	assert.Equal(t, true, data["allowed"])
}

func TestLimitStatusUnknownResource(t *testing.T) {
	f := newHandlerFixture(t)
	tenant := f.seedTenant(t, &domain.Tenant{
		ID: "t-acme", Name: "Acme", Slug: "acme",
		PlanID: "basic", ThemeID: "classic", IsActive: true,
	})

	rec := f.do(http.MethodGet, "/api/v1/admin/tenants/"+tenant.ID+"/limits/widgets", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
