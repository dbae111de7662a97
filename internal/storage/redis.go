package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cartodev/carto/internal/config"
	"github.com/cartodev/carto/internal/models"
)

const productsKey = "carto-products"

// RedisStore keeps the catalog under a single Redis key and each preference
// under its own key, mirroring the file backend's layout.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (rs *RedisStore) SaveProducts(ctx context.Context, products []models.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}

	if err := rs.client.Set(ctx, productsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}

	return nil
}

func (rs *RedisStore) LoadProducts(ctx context.Context) ([]models.Product, error) {
	data, err := rs.client.Get(ctx, productsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

func (rs *RedisStore) SavePreference(ctx context.Context, key, value string) error {
	if err := rs.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

func (rs *RedisStore) LoadPreference(ctx context.Context, key string) (string, error) {
	value, err := rs.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load preference %s: %w", key, err)
	}
	return value, nil
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
