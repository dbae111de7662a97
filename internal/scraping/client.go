// Package scraping wraps the third-party scraping proxy used to fetch raw
// product page markup.
package scraping

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cartodev/carto/internal/config"
)

// ErrNotConfigured is returned before any network call when no API key is
// set. Callers should prompt for key setup rather than retry.
var ErrNotConfigured = errors.New("scraping API key not configured")

// UpstreamError reports a non-2xx response from the scraping provider.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("scraping request failed with status %d", e.StatusCode)
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func NewClient(cfg config.ScrapingConfig, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With("component", "scraping"),
	}
}

// FetchMarkup requests the rendered markup for targetURL through the proxy.
// A single attempt is made; the provider carries the API key and target as
// query parameters.
func (c *Client) FetchMarkup(ctx context.Context, targetURL string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("url", targetURL)
	params.Set("render_js", "false")
	params.Set("premium_proxy", "true")
	params.Set("country_code", "us")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	c.logger.Info("fetching markup", "url", targetURL)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("scraping request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}
