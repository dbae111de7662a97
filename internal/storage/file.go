package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/cartodev/carto/internal/models"
)

type fileData struct {
	Products    []models.Product  `json:"products"`
	Preferences map[string]string `json:"preferences"`
}

// FileStore keeps the catalog in a single JSON file. Writes go through a
// temp file and rename so a crash mid-write never truncates the data.
type FileStore struct {
	mu       sync.RWMutex
	filename string
	data     fileData
}

func NewFileStore(filename string) (*FileStore, error) {
	fs := &FileStore{
		filename: filename,
		data: fileData{
			Products:    []models.Product{},
			Preferences: make(map[string]string),
		},
	}

	if err := fs.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}

	return fs, nil
}

func (fs *FileStore) SaveProducts(_ context.Context, products []models.Product) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.data.Products = products
	return fs.save()
}

func (fs *FileStore) LoadProducts(_ context.Context) ([]models.Product, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	products := make([]models.Product, len(fs.data.Products))
	copy(products, fs.data.Products)
	return products, nil
}

func (fs *FileStore) SavePreference(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.data.Preferences[key] = value
	return fs.save()
}

func (fs *FileStore) LoadPreference(_ context.Context, key string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.data.Preferences[key], nil
}

func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.data, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := fs.filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpFile, fs.filename)
}

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filename)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, &fs.data); err != nil {
		return err
	}

	if fs.data.Products == nil {
		fs.data.Products = []models.Product{}
	}
	if fs.data.Preferences == nil {
		fs.data.Preferences = make(map[string]string)
	}

	return nil
}
