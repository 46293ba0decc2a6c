package domain

import (
	"fmt"
	"sort"
)

// Slot identifies a storefront UI slot that a theme maps to a variant
type Slot string

const (
	SlotHeader      Slot = "header"
	SlotFooter      Slot = "footer"
	SlotHero        Slot = "hero"
	SlotProductCard Slot = "product_card"
)

// KnownSlots lists every slot the dispatcher resolves
var KnownSlots = []Slot{SlotHeader, SlotFooter, SlotHero, SlotProductCard}

// BaselineVariant is the universal fallback variant. Every slot has a v1
// implementation, so an unmapped slot always resolves.
const BaselineVariant = "v1"

// DefaultThemeID is substituted when a tenant's theme_id is not registered
const DefaultThemeID = "classic"

// ThemeEntry is a static, code-defined theme: display metadata plus a
// slot -> variant map. Changing an entry requires a deployment, not a
// database write.
type ThemeEntry struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Slots       map[Slot]string `json:"slots"`
}

// Variant returns the variant for a slot, falling back to BaselineVariant
// when the slot is unmapped
func (t *ThemeEntry) Variant(slot Slot) string {
	if variant, ok := t.Slots[slot]; ok && variant != "" {
		return variant
	}
	return BaselineVariant
}

// themeRegistry is the static theme table. Immutable at runtime.
var themeRegistry = map[string]*ThemeEntry{
	"classic": {
		ID:          "classic",
		Name:        "Classic",
		Description: "Baseline theme available on every plan",
		Slots: map[Slot]string{
			SlotHeader:      "v1",
			SlotFooter:      "v1",
			SlotHero:        "v1",
			SlotProductCard: "v1",
		},
	},
	"boutique": {
		ID:          "boutique",
		Name:        "Boutique",
		Description: "Editorial layout with a large hero",
		Slots: map[Slot]string{
			SlotHeader: "v2",
			SlotHero:   "v2",
			// footer and product_card fall through to v1
		},
	},
	"marketplace": {
		ID:          "marketplace",
		Name:        "Marketplace",
		Description: "Dense catalog layout for large inventories",
		Slots: map[Slot]string{
			SlotHeader:      "v3",
			SlotFooter:      "v2",
			SlotProductCard: "v2",
		},
	},
}

// implementedVariants lists, per slot, the variants with a concrete
// statically-linked implementation in this build. The theme registry is
// validated against this at boot; adding a registry variant without an
// implementation fails startup, not a tenant's page render.
var implementedVariants = map[Slot][]string{
	SlotHeader:      {"v1", "v2", "v3"},
	SlotFooter:      {"v1", "v2"},
	SlotHero:        {"v1", "v2"},
	SlotProductCard: {"v1", "v2"},
}

// RegisteredVariantImplementations returns a copy of the per-slot
// implemented variant lists
func RegisteredVariantImplementations() map[Slot][]string {
	implemented := make(map[Slot][]string, len(implementedVariants))
	for slot, variants := range implementedVariants {
		implemented[slot] = append([]string(nil), variants...)
	}
	return implemented
}

// ThemeByID looks up a theme registry entry
func ThemeByID(id string) (*ThemeEntry, bool) {
	entry, ok := themeRegistry[id]
	return entry, ok
}

// ThemeIDs returns the registered theme ids in stable order
func ThemeIDs() []string {
	ids := make([]string, 0, len(themeRegistry))
	for id := range themeRegistry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ValidateThemeRegistry checks every registry entry against the set of
// variants that actually have implementations, per slot. Run at process
// boot: a missing variant is a deployment-configuration error and must
// never surface per-request.
func ValidateThemeRegistry(implemented map[Slot][]string) error {
	for _, id := range ThemeIDs() {
		entry := themeRegistry[id]
		for _, slot := range KnownSlots {
			variant := entry.Variant(slot)
			if !containsVariant(implemented[slot], variant) {
				return fmt.Errorf("theme %q: slot %q maps to variant %q with no registered implementation", id, slot, variant)
			}
		}
	}
	return nil
}

func containsVariant(variants []string, variant string) bool {
	for _, v := range variants {
		if v == variant {
			return true
		}
	}
	return false
}
