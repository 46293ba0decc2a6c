package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adelfree2023-dev/storefront-engine/internal/dto"
	"github.com/adelfree2023-dev/storefront-engine/internal/middleware"
	"github.com/adelfree2023-dev/storefront-engine/pkg/response"
)

// StorefrontHandler serves the tenant-scoped storefront surface. Every
// route runs behind TenantMiddleware, so the resolved context is always
// present.
type StorefrontHandler struct{}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler() *StorefrontHandler {
	return &StorefrontHandler{}
}

// Context returns the full per-request storefront context
// GET /api/v1/storefront/context
func (h *StorefrontHandler) Context(c *gin.Context) {
	sc, ok := middleware.StorefrontFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, response.InternalError("Storefront context missing"))
		return
	}

	variants := make(map[string]string, len(sc.Variants))
	for slot, variant := range sc.Variants {
		variants[string(slot)] = variant
	}

	c.JSON(http.StatusOK, response.Success(&dto.StorefrontContextResponse{
		TenantID:     sc.Tenant.ID,
		TenantName:   sc.Tenant.Name,
		Slug:         sc.Tenant.Slug,
		PlanID:       sc.Plan.ID,
		ThemeID:      sc.Tenant.ThemeID,
		ThemeAllowed: sc.ThemeAllowed,
		Features:     sc.Features,
		Variants:     variants,
	}))
}

// Feature answers a point feature query
// GET /api/v1/storefront/features/*path
func (h *StorefrontHandler) Feature(c *gin.Context) {
	sc, ok := middleware.StorefrontFrom(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, response.InternalError("Storefront context missing"))
		return
	}

	// Wildcard params arrive with a leading slash; the public shape is
	// dot-delimited
	path := strings.Trim(c.Param("path"), "/")
	path = strings.ReplaceAll(path, "/", ".")
	if path == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("Feature path is required"))
		return
	}

	c.JSON(http.StatusOK, response.Success(&dto.FeatureQueryResponse{
		Path:    path,
		Enabled: sc.IsEnabled(path),
	}))
}
