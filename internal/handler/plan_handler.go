package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adelfree2023-dev/storefront-engine/internal/dto"
	"github.com/adelfree2023-dev/storefront-engine/internal/events"
	"github.com/adelfree2023-dev/storefront-engine/internal/service"
	"github.com/adelfree2023-dev/storefront-engine/pkg/response"
)

// PlanHandler handles plan administration requests
type PlanHandler struct {
	catalog   service.PlanCatalog
	publisher events.PlanEventPublisher
}

// NewPlanHandler creates a new PlanHandler. The publisher may be nil when
// messaging is disabled.
func NewPlanHandler(catalog service.PlanCatalog, publisher events.PlanEventPublisher) *PlanHandler {
	return &PlanHandler{catalog: catalog, publisher: publisher}
}

// List retrieves all plans
// GET /api/v1/admin/plans
func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.catalog.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	responses := make([]*dto.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		responses = append(responses, dto.NewPlanResponse(plan))
	}
	c.JSON(http.StatusOK, response.Success(responses))
}

// GetByID retrieves a plan
// GET /api/v1/admin/plans/:id
func (h *PlanHandler) GetByID(c *gin.Context) {
	plan, err := h.catalog.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, response.Error(response.ErrCodePlanNotFound, "Plan not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(dto.NewPlanResponse(plan)))
}

// Upsert creates or updates a plan
// PUT /api/v1/admin/plans/:id
func (h *PlanHandler) Upsert(c *gin.Context) {
	var req dto.UpsertPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest(err.Error()))
		return
	}

	plan, err := req.ToPlan(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeValidationFailed, err.Error()))
		return
	}

	if err := h.catalog.Upsert(c.Request.Context(), plan); err != nil {
		if errors.Is(err, service.ErrUnknownTheme) {
			c.JSON(http.StatusBadRequest, response.Error(response.ErrCodeUnknownTheme, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalError(err.Error()))
		return
	}

	// Other instances converge through the event, or through TTL expiry
	// when messaging is off
	if h.publisher != nil {
		h.publisher.PlanUpdated(c.Request.Context(), plan.ID)
	}

	c.JSON(http.StatusOK, response.Success(dto.NewPlanResponse(plan)))
}
