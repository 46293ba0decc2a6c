package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/internal/dto"
	"github.com/adelfree2023-dev/storefront-engine/internal/repository"
	"github.com/adelfree2023-dev/storefront-engine/internal/service"
	"github.com/adelfree2023-dev/storefront-engine/pkg/response"
	"github.com/adelfree2023-dev/storefront-engine/pkg/telemetry"
)

// TenantHandler handles administrative tenant requests
type TenantHandler struct {
	tenantService service.TenantService
	tenantRepo    repository.TenantRepository
	limits        service.LimitEnforcer
	metrics       *telemetry.EngineMetrics
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService service.TenantService, tenantRepo repository.TenantRepository, limits service.LimitEnforcer, metrics *telemetry.EngineMetrics) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		tenantRepo:    tenantRepo,
		limits:        limits,
		metrics:       metrics,
	}
}

// Provision handles store provisioning
// POST /api/v1/admin/tenants
func (h *TenantHandler) Provision(c *gin.Context) {
	var req dto.ProvisionTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}
	if valid, msg := req.ValidateSlug(); !valid {
		c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeInvalidSlug, msg))
		return
	}

	result, err := h.tenantService.Provision(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTenantAlreadyExists):
			c.JSON(http.StatusConflict, response.Error(response.ErrCodeTenantExists, "Tenant with this slug already exists"))
		case errors.Is(err, service.ErrPlanNotFound):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodePlanNotFound, "Plan does not exist"))
		case errors.Is(err, service.ErrUnknownTheme):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeUnknownTheme, "Theme is not registered"))
		default:
			c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		}
		return
	}
	c.JSON(http.StatusCreated, response.Success(result))
}

// GetByID handles retrieving a tenant by ID
// GET /api/v1/admin/tenants/:id
func (h *TenantHandler) GetByID(c *gin.Context) {
	result, err := h.tenantService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			c.JSON(http.StatusNotFound, response.NotFound("Tenant not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(result))
}

// SetPlan handles moving a tenant to another plan
// PUT /api/v1/admin/tenants/:id/plan
func (h *TenantHandler) SetPlan(c *gin.Context) {
	var req dto.SetPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	err := h.tenantService.SetPlan(c.Request.Context(), c.Param("id"), req.PlanID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTenantNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("Tenant not found"))
		case errors.Is(err, service.ErrPlanNotFound):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodePlanNotFound, "Plan does not exist"))
		default:
			c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"plan_id": req.PlanID}))
}

// SetTheme handles changing a tenant's theme
// PUT /api/v1/admin/tenants/:id/theme
func (h *TenantHandler) SetTheme(c *gin.Context) {
	var req dto.SetThemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	err := h.tenantService.SetTheme(c.Request.Context(), c.Param("id"), req.ThemeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTenantNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("Tenant not found"))
		case errors.Is(err, service.ErrUnknownTheme):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeUnknownTheme, "Theme is not registered"))
		case errors.Is(err, service.ErrThemeNotAllowed):
			// Signals the upgrade boundary; the storefront UI redirects
			// to the upgrade flow
			c.JSON(http.StatusConflict, response.Error(response.ErrCodeThemeNotAllowed, "Theme is not included in the current plan"))
		default:
			c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"theme_id": req.ThemeID}))
}

// SetFeatureOverride handles setting one override leaf
// PUT /api/v1/admin/tenants/:id/features
func (h *TenantHandler) SetFeatureOverride(c *gin.Context) {
	var req dto.SetFeatureOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	err := h.tenantService.SetFeatureOverride(c.Request.Context(), c.Param("id"), req.Path, *req.Enabled)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTenantNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("Tenant not found"))
		case errors.Is(err, service.ErrInvalidFeaturePath):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeInvalidFeaturePath, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"path": req.Path, "enabled": *req.Enabled}))
}

// ClearFeatureOverride removes one override leaf
// DELETE /api/v1/admin/tenants/:id/features/*path
func (h *TenantHandler) ClearFeatureOverride(c *gin.Context) {
	path := featurePathParam(c)
	if path == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Feature path is required"))
		return
	}

	err := h.tenantService.ClearFeatureOverride(c.Request.Context(), c.Param("id"), path)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTenantNotFound):
			c.JSON(http.StatusNotFound, response.NotFound("Tenant not found"))
		case errors.Is(err, service.ErrInvalidFeaturePath):
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeInvalidFeaturePath, err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		}
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"path": path}))
}

// LimitStatus reports the tenant's usage against one plan ceiling
// GET /api/v1/admin/tenants/:id/limits/:resource
func (h *TenantHandler) LimitStatus(c *gin.Context) {
	tenant, resource, ok := h.tenantAndResource(c)
	if !ok {
		return
	}

	check, err := h.limits.CheckCurrent(c.Request.Context(), tenant, resource)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(&dto.LimitStatusResponse{
		Resource: string(check.Resource),
		Limit:    check.Limit,
		Current:  check.Current,
		Allowed:  check.Allowed,
	}))
}

// Reserve atomically claims one unit of a resource ahead of a create.
// Strict: concurrent reservations can never overshoot the ceiling.
// POST /api/v1/admin/tenants/:id/limits/:resource/reserve
func (h *TenantHandler) Reserve(c *gin.Context) {
	tenant, resource, ok := h.tenantAndResource(c)
	if !ok {
		return
	}

	check, err := h.limits.Reserve(c.Request.Context(), tenant, resource)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}
	if !check.Allowed {
		h.metrics.RecordLimitCheck(c.Request.Context(), string(resource), "exceeded")
		c.JSON(http.StatusUnprocessableEntity, response.LimitExceeded(string(check.Resource), check.Limit, check.Current))
		return
	}
	h.metrics.RecordLimitCheck(c.Request.Context(), string(resource), "allowed")
	c.JSON(http.StatusOK, response.Success(&dto.LimitStatusResponse{
		Resource: string(check.Resource),
		Limit:    check.Limit,
		Current:  check.Current,
		Allowed:  true,
	}))
}

func (h *TenantHandler) tenantAndResource(c *gin.Context) (*domain.Tenant, domain.Resource, bool) {
	resource := domain.Resource(c.Param("resource"))
	if !resource.IsValid() {
		c.JSON(http.StatusBadRequest, response.BadRequest("Unknown resource type"))
		return nil, "", false
	}

	tenant, err := h.tenantRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return nil, "", false
	}
	if tenant == nil {
		c.JSON(http.StatusNotFound, response.NotFound("Tenant not found"))
		return nil, "", false
	}
	return tenant, resource, true
}

// featurePathParam reads a wildcard feature path param and converts it to
// the dot-delimited form
func featurePathParam(c *gin.Context) string {
	path := strings.Trim(c.Param("path"), "/")
	return strings.ReplaceAll(path, "/", ".")
}
