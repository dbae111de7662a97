package api

import (
	"encoding/json"
	"net/http"

	"github.com/cartodev/carto/internal/catalog"
	"github.com/cartodev/carto/internal/storage"
)

type settingsResponse struct {
	AccentColor                string `json:"accentColor"`
	DarkMode                   string `json:"darkMode"`
	Currency                   string `json:"currency"`
	OnboardingCompleted        bool   `json:"onboardingCompleted"`
	EcommerceKeyConfigured     bool   `json:"ecommerceApiKeyConfigured"`
	PriceTrackingKeyConfigured bool   `json:"priceTrackingApiKeyConfigured"`
}

// GetSettings reports preferences and API key configuration status. Key
// values themselves are never echoed back.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	values := make(map[string]string)
	for _, key := range []string{
		storage.PrefAccentColor,
		storage.PrefDarkMode,
		storage.PrefCurrency,
		storage.PrefOnboardingDone,
		storage.PrefEcommerceAPIKey,
		storage.PrefPriceTrackingAPIKey,
	} {
		value, err := h.store.LoadPreference(ctx, key)
		if err != nil {
			h.logger.Error("failed to load preference", "key", key, "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to load settings")
			return
		}
		values[key] = value
	}

	h.respondJSON(w, http.StatusOK, settingsResponse{
		AccentColor:                values[storage.PrefAccentColor],
		DarkMode:                   values[storage.PrefDarkMode],
		Currency:                   values[storage.PrefCurrency],
		OnboardingCompleted:        values[storage.PrefOnboardingDone] == "true",
		EcommerceKeyConfigured:     values[storage.PrefEcommerceAPIKey] != "",
		PriceTrackingKeyConfigured: values[storage.PrefPriceTrackingAPIKey] != "",
	})
}

type updateSettingsRequest struct {
	AccentColor         string `json:"accentColor"`
	DarkMode            string `json:"darkMode"`
	Currency            string `json:"currency"`
	OnboardingCompleted *bool  `json:"onboardingCompleted"`
	EcommerceAPIKey     string `json:"ecommerceApiKey"`
	PriceTrackingAPIKey string `json:"priceTrackingApiKey"`
}

// UpdateSettings saves the preferences present in the request; absent
// fields are left untouched.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	updates := map[string]string{
		storage.PrefAccentColor:         req.AccentColor,
		storage.PrefDarkMode:            req.DarkMode,
		storage.PrefCurrency:            req.Currency,
		storage.PrefEcommerceAPIKey:     req.EcommerceAPIKey,
		storage.PrefPriceTrackingAPIKey: req.PriceTrackingAPIKey,
	}
	if req.OnboardingCompleted != nil {
		if *req.OnboardingCompleted {
			updates[storage.PrefOnboardingDone] = "true"
		} else {
			updates[storage.PrefOnboardingDone] = "false"
		}
	}

	for key, value := range updates {
		if value == "" {
			continue
		}
		if err := h.store.SavePreference(ctx, key, value); err != nil {
			h.logger.Error("failed to save preference", "key", key, "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
	}

	h.GetSettings(w, r)
}

// ExportData streams the full catalog snapshot as a downloadable file.
func (h *Handlers) ExportData(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.catalog.Export(r.Context())
	if err != nil {
		h.logger.Error("export failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to export data")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="carto-export.json"`)
	h.respondJSON(w, http.StatusOK, snapshot)
}

// ImportData replaces the catalog with an uploaded snapshot.
func (h *Handlers) ImportData(w http.ResponseWriter, r *http.Request) {
	var snapshot catalog.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid snapshot file")
		return
	}

	if err := h.catalog.Import(r.Context(), snapshot); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int{"imported": len(snapshot.Products)})
}
