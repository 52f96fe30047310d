// Package search runs catalog searches: it parses free text, applies facet
// selections and returns the filtered products with an explanation of what
// was understood.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/katalog/internal/catalog"
	"github.com/hyperjump/katalog/internal/config"
	"github.com/hyperjump/katalog/internal/filter"
	"github.com/hyperjump/katalog/internal/metrics"
	"github.com/hyperjump/katalog/internal/models"
	"github.com/hyperjump/katalog/internal/query"
)

// Mode selects which constraints a search uses.
type Mode string

const (
	// ModeNatural uses only the parsed free-text query.
	ModeNatural Mode = "natural"
	// ModeFacet uses only the facet selection.
	ModeFacet Mode = "facet"
	// ModeCombined applies the parsed query and then the facets.
	ModeCombined Mode = "combined"
)

// ErrInvalidMode is returned for an unknown search mode.
var ErrInvalidMode = errors.New("invalid search mode")

// ParseMode validates s. An empty string yields the empty Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeNatural, ModeFacet, ModeCombined:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Engine searches a catalog.
type Engine struct {
	catalog     *catalog.Catalog
	cache       *ParseCache
	defaultMode Mode
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records searches and parse cache usage on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a search engine over cat. cfg may be nil.
func NewEngine(cat *catalog.Catalog, cfg *config.SearchConfig, opts ...Option) *Engine {
	if cfg == nil {
		var defaults config.Config
		config.ApplyDefaults(&defaults)
		cfg = &defaults.Search
	}
	e := &Engine{
		catalog:     cat,
		cache:       NewParseCache(cfg.ParseCacheSize),
		defaultMode: ModeNatural,
		logger:      zap.NewNop(),
	}
	if m, err := ParseMode(cfg.DefaultMode); err == nil && m != "" {
		e.defaultMode = m
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine searches.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Parse returns the structured form of text. Results are memoized; the
// returned value is the caller's to modify.
func (e *Engine) Parse(text string) *models.ParsedQuery {
	if parsed, ok := e.cache.Get(text); ok {
		if e.metrics != nil {
			e.metrics.ParseCacheHits.Inc()
		}
		return parsed
	}
	if e.metrics != nil {
		e.metrics.ParseCacheMisses.Inc()
	}
	parsed := query.Parse(text)
	e.cache.Set(text, parsed)
	return parsed
}

// resolveMode picks the mode for req. Without an explicit mode, a request
// with only facets is a facet search; everything else uses the default.
func (e *Engine) resolveMode(req *models.SearchRequest) (Mode, error) {
	m, err := ParseMode(req.Mode)
	if err != nil {
		return "", err
	}
	if m != "" {
		return m, nil
	}
	if strings.TrimSpace(req.Query) == "" && req.Facets != nil && !req.Facets.IsUnset() {
		return ModeFacet, nil
	}
	return e.defaultMode, nil
}

// Search runs req against the current catalog. Products keep catalog order.
func (e *Engine) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	start := time.Now()
	if req == nil {
		req = &models.SearchRequest{}
	}

	mode, err := e.resolveMode(req)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		label := string(mode)
		if label == "" {
			label = "invalid"
		}
		e.metrics.ObserveSearch(label, time.Since(start).Seconds(), 0, err)
		return nil, err
	}

	products := e.catalog.Products()
	text := strings.TrimSpace(req.Query)
	resp := &models.SearchResponse{
		Query:       req.Query,
		Mode:        string(mode),
		CatalogSize: len(products),
	}

	var parsed *models.ParsedQuery
	facets := models.NewFacetSelection()
	switch mode {
	case ModeNatural:
		if text != "" {
			parsed = e.Parse(req.Query)
		}
	case ModeFacet:
		facets = req.FacetsOrUnset()
	case ModeCombined:
		if text != "" {
			parsed = e.Parse(req.Query)
		}
		facets = req.FacetsOrUnset()
	}

	resp.Products = filter.Apply(products, parsed, facets)
	resp.Total = len(resp.Products)
	if parsed != nil {
		resp.Parsed = parsed
		resp.Understanding = query.Summary(parsed)
	}
	resp.QueryTime = time.Since(start).Milliseconds()

	e.metrics.ObserveSearch(string(mode), time.Since(start).Seconds(), resp.Total, nil)
	e.logger.Debug("search",
		zap.String("mode", string(mode)),
		zap.String("query", req.Query),
		zap.Int("results", resp.Total),
		zap.Int("catalog_size", resp.CatalogSize))
	return resp, nil
}
