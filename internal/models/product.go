package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Category            string       `json:"category"`
	Notes               string       `json:"notes,omitempty"`
	Price               float64      `json:"price"`
	Currency            string       `json:"currency,omitempty"`
	URL                 string       `json:"url,omitempty"`
	Image               string       `json:"image,omitempty"`
	Description         string       `json:"description,omitempty"`
	Rating              float64      `json:"rating,omitempty"`
	IsBought            bool         `json:"isBought"`
	PurchaseDate        *time.Time   `json:"purchaseDate"`
	BoughtDate          *time.Time   `json:"boughtDate"`
	PurchasingThisMonth bool         `json:"purchasingThisMonth"`
	PriceHistory        []PriceEntry `json:"priceHistory"`
	CreatedAt           time.Time    `json:"createdAt"`
}

// PriceEntry is one observed price point. Entries are append-only and never
// modified after being added to a product's history.
type PriceEntry struct {
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
}

// Draft holds in-progress add/edit input before it is committed to the
// catalog. It is never persisted.
type Draft struct {
	URL                 string  `json:"url,omitempty"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	Currency            string  `json:"currency,omitempty"`
	Category            string  `json:"category,omitempty"`
	Notes               string  `json:"notes,omitempty"`
	Image               string  `json:"image,omitempty"`
	Description         string  `json:"description,omitempty"`
	Rating              float64 `json:"rating,omitempty"`
	PurchasingThisMonth bool    `json:"purchasingThisMonth,omitempty"`
}

// NewProduct builds a product from a draft. The price history is seeded with
// one entry at the draft price so it is never empty for a live product.
func NewProduct(draft Draft) *Product {
	now := time.Now()
	return &Product{
		ID:                  uuid.NewString(),
		Name:                draft.Name,
		Category:            draft.Category,
		Notes:               draft.Notes,
		Price:               draft.Price,
		Currency:            draft.Currency,
		URL:                 draft.URL,
		Image:               draft.Image,
		Description:         draft.Description,
		Rating:              draft.Rating,
		PurchasingThisMonth: draft.PurchasingThisMonth,
		PriceHistory:        []PriceEntry{{Price: draft.Price, Date: now}},
		CreatedAt:           now,
	}
}

func (p *Product) Validate() []string {
	var errors []string

	if p.Name == "" {
		errors = append(errors, "Name is required")
	}

	if p.Price < 0 {
		errors = append(errors, "Price must not be negative")
	}

	if len(p.PriceHistory) == 0 {
		errors = append(errors, "Price history must not be empty")
	}

	if (p.PurchaseDate == nil) != (p.BoughtDate == nil) {
		errors = append(errors, "Purchase and bought dates must be set together")
	}

	return errors
}
