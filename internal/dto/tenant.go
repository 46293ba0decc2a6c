package dto

import (
	"regexp"
	"time"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// ProvisionTenantRequest represents a request to provision a new store
type ProvisionTenantRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=255"`
	Slug         string `json:"slug" binding:"required,min=2,max=100"`
	PlanID       string `json:"plan_id" binding:"omitempty,max=100"`
	ThemeID      string `json:"theme_id" binding:"omitempty,max=100"`
	CustomDomain string `json:"custom_domain" binding:"omitempty,max=255,fqdn"`
}

// ValidateSlug validates slug format (lowercase alphanumeric and hyphens only)
func (r *ProvisionTenantRequest) ValidateSlug() (bool, string) {
	if !slugRegex.MatchString(r.Slug) {
		return false, "Slug must contain only lowercase letters, numbers, and hyphens"
	}
	if len(r.Slug) < 2 {
		return false, "Slug must be at least 2 characters"
	}
	if len(r.Slug) > 100 {
		return false, "Slug must not exceed 100 characters"
	}
	return true, ""
}

// SetPlanRequest changes the plan a tenant subscribes to
type SetPlanRequest struct {
	PlanID string `json:"plan_id" binding:"required,max=100"`
}

// SetThemeRequest changes the tenant's selected theme
type SetThemeRequest struct {
	ThemeID string `json:"theme_id" binding:"required,max=100"`
}

// SetFeatureOverrideRequest sets one override leaf on the tenant's
// feature tree
type SetFeatureOverrideRequest struct {
	Path    string `json:"path" binding:"required,max=255"`
	Enabled *bool  `json:"enabled" binding:"required"`
}

// TenantResponse represents tenant data in responses
type TenantResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	PlanID           string          `json:"plan_id"`
	ThemeID          string          `json:"theme_id"`
	CustomDomain     string          `json:"custom_domain,omitempty"`
	FeatureOverrides map[string]bool `json:"feature_overrides,omitempty"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

// NewTenantResponse converts a domain.Tenant to a TenantResponse
func NewTenantResponse(tenant *domain.Tenant) *TenantResponse {
	return &TenantResponse{
		ID:               tenant.ID,
		Name:             tenant.Name,
		Slug:             tenant.Slug,
		PlanID:           tenant.PlanID,
		ThemeID:          tenant.ThemeID,
		CustomDomain:     tenant.CustomDomain,
		FeatureOverrides: tenant.FeatureOverrides,
		IsActive:         tenant.IsActive,
		CreatedAt:        tenant.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        tenant.UpdatedAt.Format(time.RFC3339),
	}
}
