// Package importer turns a pasted product URL into a draft by fetching the
// page through the scraping client and running the retailer parser over it.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/cartodev/carto/internal/models"
	"github.com/cartodev/carto/internal/parser"
	"github.com/cartodev/carto/internal/scraping"
)

// ErrSuperseded is returned when a newer import started before this one
// finished; the stale result is discarded.
var ErrSuperseded = errors.New("import superseded by a newer request")

// Fetcher fetches raw markup for a product URL.
type Fetcher interface {
	FetchMarkup(ctx context.Context, url string) (string, error)
}

type Orchestrator struct {
	fetcher Fetcher
	parser  *parser.RetailerParser
	logger  *slog.Logger
}

func New(fetcher Fetcher, p *parser.RetailerParser, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		parser:  p,
		logger:  logger.With("component", "importer"),
	}
}

// FromURL extracts product data for url and merges it into draft. Fields
// extraction does not cover, notes and flags in particular, keep their
// draft values.
func (o *Orchestrator) FromURL(ctx context.Context, url string, draft models.Draft) (*models.Draft, error) {
	if !strings.Contains(url, "http") {
		return nil, fmt.Errorf("invalid product URL: %s", url)
	}

	html, err := o.fetcher.FetchMarkup(ctx, url)
	if err != nil {
		o.logger.Warn("markup fetch failed", "url", url, "error", err)
		return nil, err
	}

	extracted, err := o.parser.Parse(html, url)
	if err != nil {
		o.logger.Warn("extraction failed", "url", url, "error", err)
		return nil, err
	}

	draft.URL = url
	draft.Name = extracted.Name
	draft.Price = extracted.Price
	draft.Category = extracted.Category
	draft.Image = extracted.Image
	draft.Description = extracted.Description
	draft.Rating = extracted.Rating

	o.logger.Info("product extracted", "url", url, "name", draft.Name)
	return &draft, nil
}

// UserMessage maps an import failure to the single message shown to the
// user for that operation.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, scraping.ErrNotConfigured):
		return "E-commerce API key not configured. Please set up your API keys."
	case errors.Is(err, parser.ErrNoProduct):
		return "Failed to extract product information from the page."
	default:
		return "Failed to fetch product information. Please check your API key and try again."
	}
}

// Session serializes result application for overlapping imports. Each
// import takes the next sequence number; when a result arrives for a
// superseded number it is dropped, so rapid URL edits cannot apply an old
// page over a newer one.
type Session struct {
	orchestrator *Orchestrator
	seq          atomic.Uint64
}

func NewSession(o *Orchestrator) *Session {
	return &Session{orchestrator: o}
}

func (s *Session) FromURL(ctx context.Context, url string, draft models.Draft) (*models.Draft, error) {
	token := s.seq.Add(1)

	result, err := s.orchestrator.FromURL(ctx, url, draft)

	if s.seq.Load() != token {
		return nil, ErrSuperseded
	}

	return result, err
}
