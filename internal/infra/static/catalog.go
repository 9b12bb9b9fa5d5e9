// Package static serves the product catalog from a bundled JSON file.
// It is the fallback ProductSource when no commerce backend is configured.
package static

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"encoding/json"

	"github.com/3dstuff/store-bff-go/internal/domain"

	"go.uber.org/zap"
)

// Catalog is a read-only product source backed by a JSON document.
// The file is read once and kept in memory; Reload re-reads it.
type Catalog struct {
	path   string
	logger *zap.Logger

	mu       sync.RWMutex
	products []domain.Product
}

// NewCatalog loads the catalog file. A missing or malformed file is an
// error: a fallback that serves nothing is worse than failing at startup.
func NewCatalog(path string, logger *zap.Logger) (*Catalog, error) {
	c := &Catalog{path: path, logger: logger}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the catalog file from disk.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", c.path, err)
	}

	// Prices normalize on unmarshal via domain.Price, so entries with
	// "R$ 59,90" strings land here as numbers already.
	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return fmt.Errorf("parse catalog %s: %w", c.path, err)
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()

	c.logger.Info("static catalog loaded",
		zap.String("path", c.path),
		zap.Int("products", len(products)),
	)
	return nil
}

// ListProducts returns catalog items, optionally filtered by category
// (case-insensitive; "Todos" means all).
func (c *Catalog) ListProducts(_ context.Context, category string) ([]domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if category == "" || strings.EqualFold(category, "Todos") {
		out := make([]domain.Product, len(c.products))
		copy(out, c.products)
		return out, nil
	}

	var out []domain.Product
	for _, p := range c.products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetProduct returns one product by id.
func (c *Catalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "product", ID: id}
}
