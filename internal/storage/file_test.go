package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartodev/carto/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carto-data.json")
	ctx := context.Background()

	fs, err := NewFileStore(path)
	require.NoError(t, err)

	products := []models.Product{
		*models.NewProduct(models.Draft{Name: "Echo Dot", Price: 44.99}),
		*models.NewProduct(models.Draft{Name: "Galaxy Tab", Price: 159.99}),
	}

	require.NoError(t, fs.SaveProducts(ctx, products))
	require.NoError(t, fs.SavePreference(ctx, PrefCurrency, "USD"))

	// Reopen from disk to prove it persisted.
	reopened, err := NewFileStore(path)
	require.NoError(t, err)

	loaded, err := reopened.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(products), len(loaded))
	assert.Equal(t, products[0].ID, loaded[0].ID)
	assert.Equal(t, products[0].Name, loaded[0].Name)
	assert.Equal(t, products[0].Price, loaded[0].Price)
	require.Len(t, loaded[0].PriceHistory, 1)

	currency, err := reopened.LoadPreference(ctx, PrefCurrency)
	require.NoError(t, err)
	assert.Equal(t, "USD", currency)
}

func TestFileStoreEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	ctx := context.Background()

	fs, err := NewFileStore(path)
	require.NoError(t, err)

	products, err := fs.LoadProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	value, err := fs.LoadPreference(ctx, PrefDarkMode)
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestFileStoreLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "carto-data.json")

	fs, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, fs.SaveProducts(context.Background(), []models.Product{}))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
