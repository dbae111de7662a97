package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartodev/carto/internal/config"
	"github.com/cartodev/carto/internal/models"
	"github.com/cartodev/carto/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "carto-data.json"))
	require.NoError(t, err)

	svc, err := NewService(context.Background(), store, config.CatalogConfig{DefaultCurrency: "USD"}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return svc
}

func TestAddSeedsPriceHistory(t *testing.T) {
	svc := newTestService(t)

	product, err := svc.Add(context.Background(), models.Draft{Name: "Echo Dot", Price: 44.99})
	require.NoError(t, err)

	assert.NotEmpty(t, product.ID)
	assert.False(t, product.CreatedAt.IsZero())
	assert.False(t, product.PurchasingThisMonth)
	require.Len(t, product.PriceHistory, 1)
	assert.Equal(t, 44.99, product.PriceHistory[0].Price)
}

func TestAddDefaultsCurrency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.Add(ctx, models.Draft{Name: "Echo Dot", Price: 44.99})
	require.NoError(t, err)
	assert.Equal(t, "USD", product.Currency)

	// An explicit currency on the draft is kept as-is.
	product, err = svc.Add(ctx, models.Draft{Name: "Galaxy Tab", Price: 159.99, Currency: "INR"})
	require.NoError(t, err)
	assert.Equal(t, "INR", product.Currency)
}

func TestAddRejectsInvalidDraft(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, models.Draft{Price: 10})
	assert.Error(t, err)

	_, err = svc.Add(ctx, models.Draft{Name: "Widget", Price: -1})
	assert.Error(t, err)
}

func TestUpdateAppendsHistoryOnPriceChange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.Add(ctx, models.Draft{Name: "Echo Dot", Price: 44.99})
	require.NoError(t, err)

	product.Price = 39.99
	updated, err := svc.Update(ctx, *product)
	require.NoError(t, err)

	require.Len(t, updated.PriceHistory, 2)
	assert.Equal(t, 39.99, updated.PriceHistory[1].Price)
	assert.Equal(t, product.CreatedAt.Unix(), updated.CreatedAt.Unix())

	// Editing without a price change must not grow the history.
	updated.Notes = "birthday gift"
	again, err := svc.Update(ctx, *updated)
	require.NoError(t, err)
	assert.Len(t, again.PriceHistory, 2)
	assert.Equal(t, "birthday gift", again.Notes)
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Update(context.Background(), models.Product{ID: "nope", Name: "X", Price: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkBoughtTogglesDatesTogether(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.Add(ctx, models.Draft{Name: "Echo Dot", Price: 44.99})
	require.NoError(t, err)

	bought, err := svc.MarkBought(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, bought.IsBought)
	require.NotNil(t, bought.PurchaseDate)
	require.NotNil(t, bought.BoughtDate)
	assert.Equal(t, *bought.PurchaseDate, *bought.BoughtDate)

	unbought, err := svc.MarkBought(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, unbought.IsBought)
	assert.Nil(t, unbought.PurchaseDate)
	assert.Nil(t, unbought.BoughtDate)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.Add(ctx, models.Draft{Name: "Echo Dot", Price: 44.99})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, product.ID))
	assert.Empty(t, svc.List())

	// Deleting an absent id is a no-op, not an error.
	require.NoError(t, svc.Delete(ctx, product.ID))
}

func TestBatchDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"A", "B", "C", "D"} {
		p, err := svc.Add(ctx, models.Draft{Name: name, Price: 1})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	require.NoError(t, svc.BatchDelete(ctx, []string{ids[0], ids[2], "absent"}))

	remaining := svc.List()
	require.Len(t, remaining, 2)
	assert.Equal(t, "B", remaining[0].Name)
	assert.Equal(t, "D", remaining[1].Name)
}

func TestCatalogSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carto-data.json")
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	store, err := storage.NewFileStore(path)
	require.NoError(t, err)
	svc, err := NewService(ctx, store, config.CatalogConfig{DefaultCurrency: "USD"}, logger)
	require.NoError(t, err)

	product, err := svc.Add(ctx, models.Draft{Name: "Echo Dot", Price: 44.99})
	require.NoError(t, err)

	store2, err := storage.NewFileStore(path)
	require.NoError(t, err)
	svc2, err := NewService(ctx, store2, config.CatalogConfig{DefaultCurrency: "USD"}, logger)
	require.NoError(t, err)

	loaded, err := svc2.Get(product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, loaded.Name)
	require.Len(t, loaded.PriceHistory, 1)
}

func TestExportImportRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, models.Draft{Name: "Echo Dot", Price: 44.99, Category: "Audio"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, models.Draft{Name: "Galaxy Tab", Price: 159.99})
	require.NoError(t, err)

	snapshot, err := svc.Export(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Products, 2)
	assert.False(t, snapshot.ExportDate.IsZero())

	// Import into a fresh catalog reproduces the same product array.
	other := newTestService(t)
	require.NoError(t, other.Import(ctx, *snapshot))

	restored := other.List()
	require.Len(t, restored, 2)
	for i := range snapshot.Products {
		assert.Equal(t, snapshot.Products[i].ID, restored[i].ID)
		assert.Equal(t, snapshot.Products[i].Name, restored[i].Name)
		assert.Equal(t, snapshot.Products[i].Price, restored[i].Price)
		assert.Equal(t, len(snapshot.Products[i].PriceHistory), len(restored[i].PriceHistory))
	}
}

func TestImportCarriesPreferences(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "carto-data.json"))
	require.NoError(t, err)
	svc, err := NewService(ctx, store, config.CatalogConfig{DefaultCurrency: "USD"}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	err = svc.Import(ctx, Snapshot{
		Products:    []models.Product{},
		AccentColor: "#FF6B35",
		Currency:    "INR",
	})
	require.NoError(t, err)

	accent, err := store.LoadPreference(ctx, storage.PrefAccentColor)
	require.NoError(t, err)
	assert.Equal(t, "#FF6B35", accent)

	currency, err := store.LoadPreference(ctx, storage.PrefCurrency)
	require.NoError(t, err)
	assert.Equal(t, "INR", currency)
}

func TestImportRejectsInvalidSnapshot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.Error(t, svc.Import(ctx, Snapshot{Products: nil}))

	assert.Error(t, svc.Import(ctx, Snapshot{
		Products: []models.Product{{ID: "x", Name: ""}},
	}))
}
