package catalog

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hyperjump/katalog/internal/metrics"
	"github.com/hyperjump/katalog/internal/models"
)

// Catalog holds the current product collection. Readers get the slice loaded
// by the last successful Reload; a failed reload leaves it in place.
type Catalog struct {
	source  Source
	logger  *zap.Logger
	metrics *metrics.Metrics
	group   singleflight.Group

	mu         sync.RWMutex
	products   []*models.Product
	byID       map[string]*models.Product
	categories []string
	loadedAt   time.Time
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. Default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records reloads and catalog size on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// New returns an empty catalog backed by source. Call Reload to populate it.
func New(source Source, opts ...Option) *Catalog {
	c := &Catalog{
		source: source,
		logger: zap.NewNop(),
		byID:   map[string]*models.Product{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open creates a catalog and loads it once.
func Open(ctx context.Context, source Source, opts ...Option) (*Catalog, error) {
	c := New(source, opts...)
	if _, err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload loads the source again and swaps in the new collection. Concurrent
// calls share a single load, which is not cancelled when one caller gives
// up. Returns the number of products loaded.
func (c *Catalog) Reload(ctx context.Context) (int, error) {
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("reload", func() (any, error) {
		return c.reload(loadCtx)
	})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("catalog reload shared with concurrent caller")
		}
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	}
}

func (c *Catalog) reload(ctx context.Context) (int, error) {
	start := time.Now()
	products, err := c.source.Load(ctx)
	if err == nil {
		err = Validate(products)
	}
	if err != nil {
		c.metrics.ObserveReload(0, err)
		c.logger.Error("catalog reload failed", zap.String("source", c.source.Name()), zap.Error(err))
		return 0, fmt.Errorf("failed to load catalog from %s: %w", c.source.Name(), err)
	}

	byID := make(map[string]*models.Product, len(products))
	var categories []string
	for _, p := range products {
		byID[p.ID] = p
		if p.Category != "" {
			categories = append(categories, p.Category)
		}
	}
	slices.Sort(categories)
	categories = slices.Compact(categories)

	c.mu.Lock()
	c.products = products
	c.byID = byID
	c.categories = categories
	c.loadedAt = time.Now()
	c.mu.Unlock()

	c.metrics.ObserveReload(len(products), nil)
	c.logger.Info("catalog loaded",
		zap.String("source", c.source.Name()),
		zap.Int("products", len(products)),
		zap.Int("categories", len(categories)),
		zap.Duration("took", time.Since(start)))
	return len(products), nil
}

// Products returns the current collection in catalog order. The slice and
// its products must not be modified.
func (c *Catalog) Products() []*models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.products
}

// Get returns the product with id.
func (c *Catalog) Get(id string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Categories returns the distinct product categories, sorted.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.categories)
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// LoadedAt returns the time of the last successful load.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// SourceName describes where the products come from.
func (c *Catalog) SourceName() string {
	return c.source.Name()
}

// Close releases the source if it holds resources.
func (c *Catalog) Close() error {
	if closer, ok := c.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
