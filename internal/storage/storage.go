// Package storage persists the product catalog and scalar preferences.
// The catalog is always written as one whole array; there is no delta or
// per-record persistence.
package storage

import (
	"context"

	"github.com/cartodev/carto/internal/models"
)

// Preference keys shared by all backends.
const (
	PrefAccentColor         = "carto-accent-color"
	PrefDarkMode            = "carto-dark-mode"
	PrefCurrency            = "carto-currency"
	PrefOnboardingDone      = "carto-onboarding-completed"
	PrefAPIOnboardingDone   = "carto-api-onboarding-completed"
	PrefEcommerceAPIKey     = "carto-ecommerce-api-key"
	PrefPriceTrackingAPIKey = "carto-price-tracking-api-key"
)

type Store interface {
	// SaveProducts replaces the stored catalog with the given array.
	SaveProducts(ctx context.Context, products []models.Product) error

	// LoadProducts returns the stored catalog. A store that has never been
	// written returns an empty slice, not an error.
	LoadProducts(ctx context.Context) ([]models.Product, error)

	// SavePreference stores one scalar preference under its key.
	SavePreference(ctx context.Context, key, value string) error

	// LoadPreference returns the stored value, or "" when the key is unset.
	LoadPreference(ctx context.Context, key string) (string, error)
}
