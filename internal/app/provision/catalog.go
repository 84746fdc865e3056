package provision

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/foodmarket/provision-backend/internal/app/model"
	"github.com/foodmarket/provision-backend/pkg/logger"
)

// ProductSource fetches the full product collection.
type ProductSource interface {
	FindAll(ctx context.Context) ([]model.Product, error)
}

// Catalog caches the product collection after the first successful load and
// serves it read-only. A failed load is retried on the next call.
type Catalog struct {
	source ProductSource

	mu        sync.RWMutex
	loaded    bool
	products  []model.Product
	byID      map[string]int
	byBarcode map[string]int
}

func NewCatalog(source ProductSource) *Catalog {
	return &Catalog{source: source}
}

func (c *Catalog) ensure(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	products, err := c.source.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to load product catalog", err)
		return fmt.Errorf("load catalog: %w", err)
	}

	c.products = products
	c.byID = make(map[string]int, len(products))
	c.byBarcode = make(map[string]int, len(products))
	for i, p := range products {
		c.byID[p.ID] = i
		if p.Barcode != "" {
			c.byBarcode[p.Barcode] = i
		}
	}
	c.loaded = true

	logger.Info("Product catalog loaded", map[string]interface{}{
		"count": len(products),
	})
	return nil
}

// Products returns a copy of the cached catalog.
func (c *Catalog) Products(ctx context.Context) ([]model.Product, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Product(nil), c.products...), nil
}

func (c *Catalog) Find(ctx context.Context, id string) (model.Product, bool, error) {
	return c.lookup(ctx, func() (int, bool) {
		i, ok := c.byID[id]
		return i, ok
	})
}

func (c *Catalog) FindByBarcode(ctx context.Context, barcode string) (model.Product, bool, error) {
	barcode = strings.TrimSpace(barcode)
	return c.lookup(ctx, func() (int, bool) {
		i, ok := c.byBarcode[barcode]
		return i, ok
	})
}

func (c *Catalog) lookup(ctx context.Context, find func() (int, bool)) (model.Product, bool, error) {
	if err := c.ensure(ctx); err != nil {
		return model.Product{}, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := find()
	if !ok {
		return model.Product{}, false, nil
	}
	return c.products[i], true, nil
}

// Invalidate drops the cache so the next read reloads it.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.products = nil
	c.byID = nil
	c.byBarcode = nil
}
