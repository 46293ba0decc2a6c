package domain

import (
	"time"
)

// Tenant represents a single store in the multi-tenant platform
type Tenant struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	PlanID           string          `json:"plan_id"`
	ThemeID          string          `json:"theme_id"`
	CustomDomain     string          `json:"custom_domain,omitempty"`
	FeatureOverrides map[string]bool `json:"feature_overrides,omitempty"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        *time.Time      `json:"deleted_at,omitempty"` // Soft delete support
}

// Resource identifies a plan-limited resource type
type Resource string

const (
	ResourceProducts   Resource = "products"
	ResourceCategories Resource = "categories"
	ResourceStaff      Resource = "staff"
	ResourceStorageMB  Resource = "storage_mb"
)

// KnownResources lists every resource the engine enforces limits for
var KnownResources = []Resource{
	ResourceProducts,
	ResourceCategories,
	ResourceStaff,
	ResourceStorageMB,
}

// IsValid reports whether the resource is one the engine knows about
func (r Resource) IsValid() bool {
	for _, known := range KnownResources {
		if r == known {
			return true
		}
	}
	return false
}

// Usage holds a tenant's current usage counters. The counters are
// maintained by the surrounding CRUD layer; the engine only reads them,
// except through the strict reservation path.
type Usage struct {
	Products   int `json:"products"`
	Categories int `json:"categories"`
	Staff      int `json:"staff"`
	StorageMB  int `json:"storage_mb"`
}

// Count returns the counter for a resource
func (u Usage) Count(resource Resource) int {
	switch resource {
	case ResourceProducts:
		return u.Products
	case ResourceCategories:
		return u.Categories
	case ResourceStaff:
		return u.Staff
	case ResourceStorageMB:
		return u.StorageMB
	default:
		return 0
	}
}
