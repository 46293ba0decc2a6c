package domain

import (
	"time"
)

// ThemeWildcard in a plan's allowed-theme list grants every theme
const ThemeWildcard = "*"

// UnlimitedLimit is the sentinel meaning "no ceiling" for a plan limit
const UnlimitedLimit = -1

// Limits holds a plan's numeric resource ceilings. -1 means unlimited.
type Limits struct {
	MaxProducts   int `json:"max_products"`
	MaxCategories int `json:"max_categories"`
	MaxStaff      int `json:"max_staff"`
	MaxStorageMB  int `json:"max_storage_mb"`
}

// Plan represents a subscription plan. Plans are administered by platform
// operators, versioned by update, and never deleted while a tenant
// references them.
type Plan struct {
	ID            string          `json:"id"` // unique plan name, e.g. "free", "basic", "pro"
	Name          string          `json:"name"`
	Limits        Limits          `json:"limits"`
	AllowedThemes []string        `json:"allowed_themes"`
	Features      map[string]bool `json:"features"` // flattened dot-path -> enabled
	Version       int             `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Limit returns the plan's ceiling for a resource, -1 for unlimited.
// Unknown resources are unlimited; enforcement for a new resource type
// requires a schema field, not a runtime guess.
func (p *Plan) Limit(resource Resource) int {
	switch resource {
	case ResourceProducts:
		return p.Limits.MaxProducts
	case ResourceCategories:
		return p.Limits.MaxCategories
	case ResourceStaff:
		return p.Limits.MaxStaff
	case ResourceStorageMB:
		return p.Limits.MaxStorageMB
	default:
		return UnlimitedLimit
	}
}

// AllowsTheme reports whether the plan grants the given theme, either
// explicitly or through the wildcard sentinel
func (p *Plan) AllowsTheme(themeID string) bool {
	for _, allowed := range p.AllowedThemes {
		if allowed == ThemeWildcard || allowed == themeID {
			return true
		}
	}
	return false
}

// FallbackPlanID is the plan substituted when a tenant references a
// missing or invalid plan
const FallbackPlanID = "free"

// FallbackFreePlan returns the built-in free plan used when a tenant's
// plan_id cannot be resolved. Defined in code so plan resolution can never
// fail a request, even with an empty plan table.
func FallbackFreePlan() *Plan {
	return &Plan{
		ID:   FallbackPlanID,
		Name: "Free",
		Limits: Limits{
			MaxProducts:   10,
			MaxCategories: 3,
			MaxStaff:      1,
			MaxStorageMB:  100,
		},
		AllowedThemes: []string{DefaultThemeID},
		Features: map[string]bool{
			"modules.pos":     false,
			"modules.reports": false,
		},
		Version: 1,
	}
}
