package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/cartodev/carto/internal/models"
	"github.com/cartodev/carto/internal/storage"
)

// Snapshot is the export/import file format: the full product array plus
// the scalar preferences that travel with it.
type Snapshot struct {
	Products    []models.Product `json:"products"`
	AccentColor string           `json:"accentColor,omitempty"`
	DarkMode    string           `json:"darkMode,omitempty"`
	Currency    string           `json:"currency,omitempty"`
	ExportDate  time.Time        `json:"exportDate"`
}

// Export captures the current catalog and preferences.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	accent, err := s.store.LoadPreference(ctx, storage.PrefAccentColor)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	darkMode, err := s.store.LoadPreference(ctx, storage.PrefDarkMode)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	currency, err := s.store.LoadPreference(ctx, storage.PrefCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	return &Snapshot{
		Products:    s.List(),
		AccentColor: accent,
		DarkMode:    darkMode,
		Currency:    currency,
		ExportDate:  time.Now(),
	}, nil
}

// Import replaces the catalog with the snapshot's products and applies any
// preferences the snapshot carries. Importing an unmodified export restores
// an identical product array.
func (s *Service) Import(ctx context.Context, snapshot Snapshot) error {
	if snapshot.Products == nil {
		return fmt.Errorf("snapshot contains no products array")
	}

	for i := range snapshot.Products {
		if problems := snapshot.Products[i].Validate(); len(problems) > 0 {
			return fmt.Errorf("invalid product %q: %s", snapshot.Products[i].ID, problems[0])
		}
	}

	s.mu.Lock()
	s.products = make([]models.Product, len(snapshot.Products))
	copy(s.products, snapshot.Products)
	err := s.persist(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	prefs := map[string]string{
		storage.PrefAccentColor: snapshot.AccentColor,
		storage.PrefDarkMode:    snapshot.DarkMode,
		storage.PrefCurrency:    snapshot.Currency,
	}
	for key, value := range prefs {
		if value == "" {
			continue
		}
		if err := s.store.SavePreference(ctx, key, value); err != nil {
			return fmt.Errorf("failed to save preference %s: %w", key, err)
		}
	}

	s.logger.Info("catalog imported", "products", len(snapshot.Products))
	return nil
}
