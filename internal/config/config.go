package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server        ServerConfig
	Storage       StorageConfig
	Redis         RedisConfig
	Scraping      ScrapingConfig
	PriceTracking PriceTrackingConfig
	Catalog       CatalogConfig
	Logging       LoggingConfig
}

type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig selects the persistence backend. "file" writes the catalog
// to a JSON file, "redis" keeps it under a single Redis key.
type StorageConfig struct {
	Backend  string
	FilePath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ScrapingConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type PriceTrackingConfig struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
	PollAttempts int
}

type CatalogConfig struct {
	DefaultCurrency string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 8085),
			Host:            getEnv("SERVER_HOST", "127.0.0.1"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", "file"),
			FilePath: getEnv("STORAGE_FILE_PATH", "carto-data.json"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Scraping: ScrapingConfig{
			APIKey:  getEnv("SCRAPING_API_KEY", ""),
			BaseURL: getEnv("SCRAPING_BASE_URL", "https://app.scrapingbee.com/api/v1/"),
			Timeout: getEnvDuration("SCRAPING_TIMEOUT", 30*time.Second),
		},
		PriceTracking: PriceTrackingConfig{
			APIKey:       getEnv("PRICE_API_KEY", ""),
			BaseURL:      getEnv("PRICE_API_BASE_URL", "https://api.priceapi.com/v2"),
			PollInterval: getEnvDuration("PRICE_API_POLL_INTERVAL", 2*time.Second),
			PollAttempts: getEnvInt("PRICE_API_POLL_ATTEMPTS", 10),
		},
		Catalog: CatalogConfig{
			DefaultCurrency: getEnv("DEFAULT_CURRENCY", "USD"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Storage.Backend != "file" && c.Storage.Backend != "redis" {
		return fmt.Errorf("STORAGE_BACKEND must be \"file\" or \"redis\", got %q", c.Storage.Backend)
	}

	if c.Storage.Backend == "file" && c.Storage.FilePath == "" {
		return fmt.Errorf("STORAGE_FILE_PATH must not be empty")
	}

	if c.PriceTracking.PollAttempts < 1 {
		return fmt.Errorf("PRICE_API_POLL_ATTEMPTS must be at least 1")
	}

	if c.PriceTracking.PollInterval <= 0 {
		return fmt.Errorf("PRICE_API_POLL_INTERVAL must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
