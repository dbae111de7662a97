// Package catalog owns the in-memory product collection. Every mutation
// validates its input, applies the change in memory and writes the whole
// catalog through the configured store as one unit. The service is the only
// writer; callers never mutate products directly.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cartodev/carto/internal/config"
	"github.com/cartodev/carto/internal/models"
	"github.com/cartodev/carto/internal/storage"
)

var ErrNotFound = errors.New("product not found")

type Service struct {
	mu              sync.RWMutex
	store           storage.Store
	products        []models.Product
	defaultCurrency string
	logger          *slog.Logger
}

// NewService loads the persisted catalog from the store.
func NewService(ctx context.Context, store storage.Store, cfg config.CatalogConfig, logger *slog.Logger) (*Service, error) {
	products, err := store.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return &Service{
		store:           store,
		products:        products,
		defaultCurrency: cfg.DefaultCurrency,
		logger:          logger.With("component", "catalog"),
	}, nil
}

// List returns a copy of the catalog.
func (s *Service) List() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, len(s.products))
	copy(products, s.products)
	return products
}

func (s *Service) Get(id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.products {
		if s.products[i].ID == id {
			product := s.products[i]
			return &product, nil
		}
	}

	return nil, ErrNotFound
}

// Add creates a product from a draft. The price history is seeded with one
// entry at the draft price. A draft without a currency gets the configured
// default.
func (s *Service) Add(ctx context.Context, draft models.Draft) (*models.Product, error) {
	if draft.Name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if draft.Price < 0 {
		return nil, fmt.Errorf("product price must not be negative")
	}
	if draft.Currency == "" {
		draft.Currency = s.defaultCurrency
	}

	product := models.NewProduct(draft)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, *product)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("product added", "id", product.ID, "name", product.Name)
	return product, nil
}

// Update overwrites the stored product's mutable fields. When the price
// changes, exactly one history entry is appended together with the change.
// ID, CreatedAt and the existing history are preserved.
func (s *Service) Update(ctx context.Context, updated models.Product) (*models.Product, error) {
	if updated.Name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if updated.Price < 0 {
		return nil, fmt.Errorf("product price must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID != updated.ID {
			continue
		}

		current := s.products[i]

		updated.CreatedAt = current.CreatedAt
		updated.PriceHistory = current.PriceHistory
		if updated.Price != current.Price {
			updated.PriceHistory = append(updated.PriceHistory, models.PriceEntry{
				Price: updated.Price,
				Date:  time.Now(),
			})
		}

		s.products[i] = updated
		if err := s.persist(ctx); err != nil {
			return nil, err
		}

		s.logger.Info("product updated", "id", updated.ID)
		product := s.products[i]
		return &product, nil
	}

	return nil, ErrNotFound
}

// Delete removes a product. Deleting an absent id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			if err := s.persist(ctx); err != nil {
				return err
			}
			s.logger.Info("product deleted", "id", id)
			return nil
		}
	}

	return nil
}

// MarkBought toggles the bought flag. Both purchase dates are set together
// on the transition to bought and cleared together on the way back.
func (s *Service) MarkBought(ctx context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID != id {
			continue
		}

		p := &s.products[i]
		p.IsBought = !p.IsBought
		if p.IsBought {
			now := time.Now()
			p.PurchaseDate = &now
			p.BoughtDate = &now
		} else {
			p.PurchaseDate = nil
			p.BoughtDate = nil
		}

		if err := s.persist(ctx); err != nil {
			return nil, err
		}

		s.logger.Info("product bought state toggled", "id", id, "isBought", p.IsBought)
		product := *p
		return &product, nil
	}

	return nil, ErrNotFound
}

// BatchDelete removes all matching products in one persistence write, so
// readers never observe a partial batch.
func (s *Service) BatchDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.products[:0]
	removed := 0
	for _, p := range s.products {
		if drop[p.ID] {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.products = kept

	if removed == 0 {
		return nil
	}

	if err := s.persist(ctx); err != nil {
		return err
	}

	s.logger.Info("batch delete", "requested", len(ids), "removed", removed)
	return nil
}

// persist writes the whole catalog. Callers must hold the write lock.
func (s *Service) persist(ctx context.Context) error {
	if err := s.store.SaveProducts(ctx, s.products); err != nil {
		s.logger.Error("failed to persist catalog", "error", err)
		return fmt.Errorf("failed to persist catalog: %w", err)
	}
	return nil
}
