package scraping

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartodev/carto/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFetchMarkup(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"api_key":       r.URL.Query().Get("api_key"),
			"url":           r.URL.Query().Get("url"),
			"render_js":     r.URL.Query().Get("render_js"),
			"premium_proxy": r.URL.Query().Get("premium_proxy"),
			"country_code":  r.URL.Query().Get("country_code"),
		}
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	c := NewClient(config.ScrapingConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, testLogger())

	html, err := c.FetchMarkup(context.Background(), "https://www.amazon.com/dp/B0BXXPG6FP")
	require.NoError(t, err)

	assert.Equal(t, "<html><body>ok</body></html>", html)
	assert.Equal(t, "test-key", gotQuery["api_key"])
	assert.Equal(t, "https://www.amazon.com/dp/B0BXXPG6FP", gotQuery["url"])
	assert.Equal(t, "false", gotQuery["render_js"])
	assert.Equal(t, "true", gotQuery["premium_proxy"])
	assert.Equal(t, "us", gotQuery["country_code"])
}

func TestFetchMarkupMissingKey(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	c := NewClient(config.ScrapingConfig{BaseURL: server.URL}, testLogger())

	_, err := c.FetchMarkup(context.Background(), "https://www.amazon.com/dp/B0BXXPG6FP")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, requests, "no network call should happen without a key")
}

func TestFetchMarkupUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(config.ScrapingConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, testLogger())

	_, err := c.FetchMarkup(context.Background(), "https://www.amazon.com/dp/B0BXXPG6FP")

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
}
