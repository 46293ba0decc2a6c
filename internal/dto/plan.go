package dto

import (
	"time"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
)

// UpsertPlanRequest creates or updates a plan. Features accepts either a
// flat dot-path map or a nested tree; nested input is flattened before
// storage.
type UpsertPlanRequest struct {
	Name          string                 `json:"name" binding:"required,min=2,max=255"`
	MaxProducts   *int                   `json:"max_products" binding:"required,min=-1"`
	MaxCategories *int                   `json:"max_categories" binding:"required,min=-1"`
	MaxStaff      *int                   `json:"max_staff" binding:"required,min=-1"`
	MaxStorageMB  *int                   `json:"max_storage_mb" binding:"required,min=-1"`
	AllowedThemes []string               `json:"allowed_themes" binding:"required,min=1"`
	Features      map[string]interface{} `json:"features" binding:"omitempty"`
}

// ToPlan converts the request into a domain.Plan, flattening any nested
// feature tree
func (r *UpsertPlanRequest) ToPlan(id string) (*domain.Plan, error) {
	features, err := domain.FlattenFeatures(r.Features)
	if err != nil {
		return nil, err
	}
	return &domain.Plan{
		ID:   id,
		Name: r.Name,
		Limits: domain.Limits{
			MaxProducts:   *r.MaxProducts,
			MaxCategories: *r.MaxCategories,
			MaxStaff:      *r.MaxStaff,
			MaxStorageMB:  *r.MaxStorageMB,
		},
		AllowedThemes: r.AllowedThemes,
		Features:      features,
		UpdatedAt:     time.Now(),
	}, nil
}

// PlanResponse represents plan data in responses
type PlanResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	MaxProducts   int             `json:"max_products"`
	MaxCategories int             `json:"max_categories"`
	MaxStaff      int             `json:"max_staff"`
	MaxStorageMB  int             `json:"max_storage_mb"`
	AllowedThemes []string        `json:"allowed_themes"`
	Features      map[string]bool `json:"features"`
	Version       int             `json:"version"`
	UpdatedAt     string          `json:"updated_at"`
}

// NewPlanResponse converts a domain.Plan to a PlanResponse
func NewPlanResponse(plan *domain.Plan) *PlanResponse {
	return &PlanResponse{
		ID:            plan.ID,
		Name:          plan.Name,
		MaxProducts:   plan.Limits.MaxProducts,
		MaxCategories: plan.Limits.MaxCategories,
		MaxStaff:      plan.Limits.MaxStaff,
		MaxStorageMB:  plan.Limits.MaxStorageMB,
		AllowedThemes: plan.AllowedThemes,
		Features:      plan.Features,
		Version:       plan.Version,
		UpdatedAt:     plan.UpdatedAt.Format(time.RFC3339),
	}
}
