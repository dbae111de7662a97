// Package pricetracking wraps the third-party price-history API. Jobs are
// created remotely and polled until they reach a terminal state.
package pricetracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cartodev/carto/internal/config"
	"github.com/cartodev/carto/internal/parser"
	"github.com/cartodev/carto/internal/poll"
)

var (
	// ErrNotConfigured is returned before any network call when no API key
	// is set.
	ErrNotConfigured = errors.New("price tracking API key not configured")

	// ErrTimeout is returned when the job does not reach a terminal state
	// within the poll attempt ceiling.
	ErrTimeout = errors.New("price tracking job did not finish in time")

	// ErrNoData is returned when a finished job contains no price entries.
	ErrNoData = errors.New("no price data available for product")
)

// Entry is one remote price observation.
type Entry struct {
	Price float64   `json:"price"`
	Date  time.Time `json:"date"`
	Type  string    `json:"type"` // current or historical
}

// Summary aggregates the flattened price sequence of a finished job.
type Summary struct {
	PriceHistory []Entry `json:"priceHistory"`
	LowestPrice  float64 `json:"lowestPrice"`
	HighestPrice float64 `json:"highestPrice"`
	AveragePrice float64 `json:"averagePrice"`
}

type Client struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	pollAttempts int
	client       *http.Client
	logger       *slog.Logger
}

func NewClient(cfg config.PriceTrackingConfig, logger *slog.Logger) *Client {
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		pollInterval: cfg.PollInterval,
		pollAttempts: cfg.PollAttempts,
		client:       &http.Client{Timeout: 30 * time.Second},
		logger:       logger.With("component", "pricetracking"),
	}
}

// flexFloat accepts both JSON numbers and numeric strings; the provider
// serializes prices as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type jobResponse struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Content []struct {
		Price        flexFloat `json:"price"`
		PriceHistory []struct {
			Price flexFloat `json:"price"`
			Date  string    `json:"date"`
		} `json:"price_history"`
	} `json:"content"`
}

// GetPriceHistory creates a remote job for productURL, polls it to
// completion and summarizes the flattened price sequence.
func (c *Client) GetPriceHistory(ctx context.Context, productURL string) (*Summary, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	job, err := c.createJob(ctx, productURL)
	if err != nil {
		return nil, err
	}

	c.logger.Info("price tracking job created", "id", job.ID, "url", productURL)

	var finished *jobResponse
	err = poll.Until(ctx, c.pollAttempts, c.pollInterval, func(ctx context.Context) (bool, error) {
		status, err := c.fetchJob(ctx, job.ID)
		if err != nil {
			return false, err
		}

		switch status.Status {
		case "finished":
			finished = status
			return true, nil
		case "error":
			return false, fmt.Errorf("price tracking job failed: %s", status.Message)
		default:
			return false, nil
		}
	})
	if err != nil {
		if errors.Is(err, poll.ErrAttemptsExhausted) {
			return nil, ErrTimeout
		}
		return nil, err
	}

	return summarize(finished)
}

func (c *Client) createJob(ctx context.Context, productURL string) (*jobResponse, error) {
	source := parser.DetectSource(productURL)

	// Amazon URLs carry the product identifier; keying the job on it gives
	// an exact product match instead of a search.
	key := productURL
	if source == "amazon" {
		if asin, ok := parser.ExtractASIN(productURL); ok {
			key = asin
		}
	}

	payload, err := json.Marshal(map[string]any{
		"source":  source,
		"country": "us",
		"topic":   "search",
		"key":     key,
		"max_age": 86400,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode job request: %w", err)
	}

	url := fmt.Sprintf("%s/jobs?token=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build job request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	job, err := c.doJSON(req)
	if err != nil {
		return nil, err
	}

	if job.Status == "error" {
		return nil, fmt.Errorf("failed to create price tracking job: %s", job.Message)
	}

	return job, nil
}

func (c *Client) fetchJob(ctx context.Context, jobID string) (*jobResponse, error) {
	url := fmt.Sprintf("%s/jobs/%s?token=%s", c.baseURL, jobID, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	return c.doJSON(req)
}

func (c *Client) doJSON(req *http.Request) (*jobResponse, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price tracking request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("price tracking request failed with status %d", resp.StatusCode)
	}

	var job jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &job, nil
}

// summarize flattens the current price plus historical entries into one
// sequence and computes min, max and mean. An empty sequence is a distinct
// no-data result, never NaN.
func summarize(job *jobResponse) (*Summary, error) {
	var entries []Entry

	if len(job.Content) > 0 {
		product := job.Content[0]

		if product.Price > 0 {
			entries = append(entries, Entry{
				Price: float64(product.Price),
				Date:  time.Now(),
				Type:  "current",
			})
		}

		for _, h := range product.PriceHistory {
			entries = append(entries, Entry{
				Price: float64(h.Price),
				Date:  parseEntryDate(h.Date),
				Type:  "historical",
			})
		}
	}

	if len(entries) == 0 {
		return nil, ErrNoData
	}

	summary := &Summary{
		PriceHistory: entries,
		LowestPrice:  entries[0].Price,
		HighestPrice: entries[0].Price,
	}

	var sum float64
	for _, e := range entries {
		if e.Price < summary.LowestPrice {
			summary.LowestPrice = e.Price
		}
		if e.Price > summary.HighestPrice {
			summary.HighestPrice = e.Price
		}
		sum += e.Price
	}
	summary.AveragePrice = sum / float64(len(entries))

	return summary, nil
}

func parseEntryDate(raw string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
