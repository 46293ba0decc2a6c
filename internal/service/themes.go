package service

import (
	"context"
	"fmt"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
	"github.com/adelfree2023-dev/storefront-engine/pkg/logger"
)

// ThemeDispatcher resolves which concrete UI variant renders a slot for a
// tenant's selected theme. Resolution never fails a page render: an
// unregistered theme id falls back to the default theme and an unmapped
// slot falls back to the baseline "v1" variant. Whether the plan permits
// the theme is a separate signal (IsThemeAllowed); the dispatcher reports
// it but enforcement (the upgrade redirect) belongs to the caller.
type ThemeDispatcher interface {
	// ResolveVariant names the variant for one slot
	ResolveVariant(tenant *domain.Tenant, slot domain.Slot) string
	// ResolveAll names the variant for every known slot, for a single
	// per-render pass
	ResolveAll(tenant *domain.Tenant) map[domain.Slot]string
	// IsThemeAllowed reports whether the plan grants the theme, via the
	// explicit list or the "*" wildcard
	IsThemeAllowed(plan *domain.Plan, themeID string) bool
	// IsTenantThemeAllowed is IsThemeAllowed against the tenant's
	// effective plan and selected theme
	IsTenantThemeAllowed(ctx context.Context, tenant *domain.Tenant) bool
}

// themeDispatcher implements ThemeDispatcher
type themeDispatcher struct {
	catalog PlanCatalog
	log     *logger.Logger
}

// NewThemeDispatcher creates a new ThemeDispatcher. ValidateVariants
// should have run at boot before the dispatcher serves requests.
func NewThemeDispatcher(catalog PlanCatalog, log *logger.Logger) ThemeDispatcher {
	return &themeDispatcher{catalog: catalog, log: log}
}

// ResolveVariant names the variant for one slot
func (d *themeDispatcher) ResolveVariant(tenant *domain.Tenant, slot domain.Slot) string {
	return d.themeEntry(tenant).Variant(slot)
}

// ResolveAll names the variant for every known slot
func (d *themeDispatcher) ResolveAll(tenant *domain.Tenant) map[domain.Slot]string {
	entry := d.themeEntry(tenant)
	variants := make(map[domain.Slot]string, len(domain.KnownSlots))
	for _, slot := range domain.KnownSlots {
		variants[slot] = entry.Variant(slot)
	}
	return variants
}

func (d *themeDispatcher) themeEntry(tenant *domain.Tenant) *domain.ThemeEntry {
	if entry, ok := domain.ThemeByID(tenant.ThemeID); ok {
		return entry
	}
	entry, _ := domain.ThemeByID(domain.DefaultThemeID)
	return entry
}

// IsThemeAllowed reports whether the plan grants the theme
func (d *themeDispatcher) IsThemeAllowed(plan *domain.Plan, themeID string) bool {
	return plan.AllowsTheme(themeID)
}

// IsTenantThemeAllowed is IsThemeAllowed against the tenant's effective
// plan and selected theme
func (d *themeDispatcher) IsTenantThemeAllowed(ctx context.Context, tenant *domain.Tenant) bool {
	themeID := tenant.ThemeID
	if _, ok := domain.ThemeByID(themeID); !ok {
		themeID = domain.DefaultThemeID
	}
	return d.catalog.EffectivePlan(ctx, tenant).AllowsTheme(themeID)
}

// ValidateVariants checks the static theme registry against the variants
// that have registered implementations. Called once at process boot;
// a failure is a deployment-configuration error and aborts startup.
func ValidateVariants() error {
	if err := domain.ValidateThemeRegistry(domain.RegisteredVariantImplementations()); err != nil {
		return fmt.Errorf("theme registry validation: %w", err)
	}
	return nil
}
