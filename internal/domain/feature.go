package domain

import (
	"fmt"
	"strings"
)

// FeaturePathSeparator delimits segments in a feature path,
// e.g. "storefront.pages.about"
const FeaturePathSeparator = "."

// platformDefaults is the authoritative registry of known feature paths and
// their platform-wide defaults. A feature missing from this registry is
// fail-open (treated as enabled), so any feature that must be restrictable
// has to be registered here with an explicit default.
var platformDefaults = map[string]bool{
	"storefront.pages.home":     true,
	"storefront.pages.about":    true,
	"storefront.pages.contact":  true,
	"storefront.pages.blog":     false,
	"storefront.announcements":  true,
	"catalog.collections":       true,
	"catalog.reviews":           false,
	"catalog.inventory_alerts":  false,
	"checkout.coupons":          false,
	"checkout.gift_cards":       false,
	"checkout.abandoned_carts":  false,
	"modules.pos":               false,
	"modules.reports":           false,
	"modules.multi_currency":    false,
	"modules.staff_permissions": false,
}

// DefaultFeatures returns a copy of the platform default feature map.
// Callers may mutate the copy freely.
func DefaultFeatures() map[string]bool {
	defaults := make(map[string]bool, len(platformDefaults))
	for path, enabled := range platformDefaults {
		defaults[path] = enabled
	}
	return defaults
}

// IsKnownFeaturePath reports whether the path is registered in the
// platform defaults
func IsKnownFeaturePath(path string) bool {
	_, ok := platformDefaults[path]
	return ok
}

// ValidateFeaturePath checks the syntactic shape of a feature path:
// non-empty dot-separated segments of lowercase letters, digits and
// underscores. It does not require the path to be registered.
func ValidateFeaturePath(path string) error {
	if path == "" {
		return fmt.Errorf("feature path is empty")
	}
	for _, segment := range strings.Split(path, FeaturePathSeparator) {
		if segment == "" {
			return fmt.Errorf("feature path %q has an empty segment", path)
		}
		for _, ch := range segment {
			if (ch < 'a' || ch > 'z') && (ch < '0' || ch > '9') && ch != '_' {
				return fmt.Errorf("feature path %q has an invalid character %q", path, ch)
			}
		}
	}
	return nil
}

// FlattenFeatures converts an arbitrarily nested feature tree (as stored in
// plan or tenant JSON) into a flat dot-path -> bool map. Non-boolean leaves
// are rejected: a leaf that is an object at one layer and a boolean at
// another has no defined merge, so the flat form is the only shape the
// engine stores.
func FlattenFeatures(tree map[string]interface{}) (map[string]bool, error) {
	flat := make(map[string]bool)
	if err := flattenInto(flat, "", tree); err != nil {
		return nil, err
	}
	return flat, nil
}

func flattenInto(flat map[string]bool, prefix string, tree map[string]interface{}) error {
	for key, value := range tree {
		path := key
		if prefix != "" {
			path = prefix + FeaturePathSeparator + key
		}
		switch v := value.(type) {
		case bool:
			flat[path] = v
		case map[string]interface{}:
			if err := flattenInto(flat, path, v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("feature %q: expected bool or nested object, got %T", path, value)
		}
	}
	return nil
}

// MergeFeatures applies the three-layer merge: platform defaults, then plan
// features, then tenant overrides, each layer replacing only the leaves it
// explicitly defines. The result is a fresh map.
func MergeFeatures(defaults, plan, overrides map[string]bool) map[string]bool {
	merged := make(map[string]bool, len(defaults)+len(plan)+len(overrides))
	for path, enabled := range defaults {
		merged[path] = enabled
	}
	for path, enabled := range plan {
		merged[path] = enabled
	}
	for path, enabled := range overrides {
		merged[path] = enabled
	}
	return merged
}
