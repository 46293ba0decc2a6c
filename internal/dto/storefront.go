package dto

// StorefrontContextResponse is the per-request storefront context: the
// resolved tenant, its effective feature set, and the theme variants to
// render, computed once by the tenant middleware
type StorefrontContextResponse struct {
	TenantID     string            `json:"tenant_id"`
	TenantName   string            `json:"tenant_name"`
	Slug         string            `json:"slug"`
	PlanID       string            `json:"plan_id"`
	ThemeID      string            `json:"theme_id"`
	ThemeAllowed bool              `json:"theme_allowed"`
	Features     map[string]bool   `json:"features"`
	Variants     map[string]string `json:"variants"` // slot -> variant id
}

// FeatureQueryResponse answers a point feature query
type FeatureQueryResponse struct {
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
}

// LimitStatusResponse reports usage against a plan ceiling
type LimitStatusResponse struct {
	Resource string `json:"resource"`
	Limit    int    `json:"limit"` // -1 = unlimited
	Current  int    `json:"current"`
	Allowed  bool   `json:"allowed"`
}
