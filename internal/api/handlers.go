package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cartodev/carto/internal/analytics"
	"github.com/cartodev/carto/internal/catalog"
	"github.com/cartodev/carto/internal/importer"
	"github.com/cartodev/carto/internal/models"
	"github.com/cartodev/carto/internal/pricetracking"
	"github.com/cartodev/carto/internal/storage"
)

// PriceHistoryClient fetches remote price history for a product URL.
type PriceHistoryClient interface {
	GetPriceHistory(ctx context.Context, productURL string) (*pricetracking.Summary, error)
}

type Handlers struct {
	catalog  *catalog.Service
	importer *importer.Session
	prices   PriceHistoryClient
	store    storage.Store
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandlers(cat *catalog.Service, imp *importer.Session, prices PriceHistoryClient, store storage.Store, logger *slog.Logger) *Handlers {
	return &Handlers{
		catalog:  cat,
		importer: imp,
		prices:   prices,
		store:    store,
		validate: validator.New(),
		logger:   logger.With("component", "api"),
	}
}

// ListProducts returns the full catalog.
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.catalog.List())
}

// ProductRequest carries draft fields for create and update.
type ProductRequest struct {
	URL                 string  `json:"url"`
	Name                string  `json:"name" validate:"required"`
	Price               float64 `json:"price" validate:"gte=0"`
	Currency            string  `json:"currency"`
	Category            string  `json:"category"`
	Notes               string  `json:"notes"`
	Image               string  `json:"image"`
	Description         string  `json:"description"`
	Rating              float64 `json:"rating" validate:"gte=0,lte=5"`
	PurchasingThisMonth bool    `json:"purchasingThisMonth"`
}

func (req *ProductRequest) draft() models.Draft {
	return models.Draft{
		URL:                 req.URL,
		Name:                req.Name,
		Price:               req.Price,
		Currency:            req.Currency,
		Category:            req.Category,
		Notes:               req.Notes,
		Image:               req.Image,
		Description:         req.Description,
		Rating:              req.Rating,
		PurchasingThisMonth: req.PurchasingThisMonth,
	}
}

// CreateProduct adds a product from a submitted draft.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	product, err := h.catalog.Add(r.Context(), req.draft())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, product)
}

// GetProduct returns one product by id.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(chi.URLParam(r, "productID"))
	if errors.Is(err, catalog.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// UpdateProduct overwrites a product's mutable fields.
func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	id := chi.URLParam(r, "productID")
	current, err := h.catalog.Get(id)
	if errors.Is(err, catalog.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}

	updated := *current
	updated.URL = req.URL
	updated.Name = req.Name
	updated.Price = req.Price
	updated.Currency = req.Currency
	updated.Category = req.Category
	updated.Notes = req.Notes
	updated.Image = req.Image
	updated.Description = req.Description
	updated.Rating = req.Rating
	updated.PurchasingThisMonth = req.PurchasingThisMonth

	product, err := h.catalog.Update(r.Context(), updated)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "product not found")
			return
		}
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product. Absent ids still answer 204.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "productID")); err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkBought toggles a product's bought state.
func (h *Handlers) MarkBought(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.MarkBought(r.Context(), chi.URLParam(r, "productID"))
	if errors.Is(err, catalog.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

type batchDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// BatchDelete removes all listed products in one write.
func (h *Handlers) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req batchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if err := h.catalog.BatchDelete(r.Context(), req.IDs); err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to delete products")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type importRequest struct {
	URL   string         `json:"url" validate:"required"`
	Draft ProductRequest `json:"draft"`
}

type importResponse struct {
	Draft *models.Draft `json:"draft,omitempty"`
	Error string        `json:"error,omitempty"`
}

// ImportDraft extracts product data from a URL into a draft. Failures are
// reported as a single user-facing message, not an HTTP error, because the
// dialog stays open and the user keeps editing.
func (h *Handlers) ImportDraft(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	draft, err := h.importer.FromURL(r.Context(), req.URL, req.Draft.draft())
	if errors.Is(err, importer.ErrSuperseded) {
		h.respondJSON(w, http.StatusOK, importResponse{})
		return
	}
	if err != nil {
		h.respondJSON(w, http.StatusOK, importResponse{Error: importer.UserMessage(err)})
		return
	}

	h.respondJSON(w, http.StatusOK, importResponse{Draft: draft})
}

// GetPriceHistory fetches remote price history for a stored product.
func (h *Handlers) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(chi.URLParam(r, "productID"))
	if errors.Is(err, catalog.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if product.URL == "" {
		h.respondError(w, http.StatusBadRequest, "product has no source URL")
		return
	}

	summary, err := h.prices.GetPriceHistory(r.Context(), product.URL)
	switch {
	case errors.Is(err, pricetracking.ErrNotConfigured):
		h.respondError(w, http.StatusBadRequest, "Price tracking API key not configured. Please set up your API keys.")
		return
	case errors.Is(err, pricetracking.ErrTimeout):
		h.respondError(w, http.StatusGatewayTimeout, "Price tracking is taking longer than expected. Please try again.")
		return
	case errors.Is(err, pricetracking.ErrNoData):
		h.respondError(w, http.StatusNotFound, "No price history available for this product.")
		return
	case err != nil:
		h.logger.Error("price history lookup failed", "id", product.ID, "error", err)
		h.respondError(w, http.StatusBadGateway, "Failed to fetch price history. Please check your API key and try again.")
		return
	}

	h.respondJSON(w, http.StatusOK, summary)
}

// GetAnalytics returns dashboard aggregates over the catalog.
func (h *Handlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, analytics.Compute(h.catalog.List(), time.Now()))
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "gte":
			return fe.Field() + " must be at least " + fe.Param()
		case "lte":
			return fe.Field() + " must be at most " + fe.Param()
		case "min":
			return fe.Field() + " must have at least " + fe.Param() + " entries"
		}
		return fe.Field() + " is invalid"
	}
	return "invalid request"
}
