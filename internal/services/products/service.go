// Package products owns the active product catalog.
package products

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/xelth-com/loadboard/internal/catalog"
	"github.com/xelth-com/loadboard/internal/models"
)

// Store persists the catalog
type Store interface {
	All(ctx context.Context) ([]models.Product, error)
	ReplaceAll(ctx context.Context, products []models.Product) error
}

// Service caches the catalog index and keeps it in step with the store
type Service struct {
	store Store

	mu    sync.RWMutex
	index *catalog.Index
}

func NewService(s Store) *Service {
	return &Service{store: s, index: catalog.NewIndex(nil)}
}

// Load reads the stored catalog. An empty store is seeded from seedFile when given,
// otherwise from the built-in defaults.
func (s *Service) Load(ctx context.Context, seedFile string) error {
	products, err := s.store.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	if len(products) == 0 {
		products, err = seed(seedFile)
		if err != nil {
			return err
		}
		if err := s.store.ReplaceAll(ctx, products); err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
		log.Printf("🆕 Seeded catalog with %d products", len(products))
	}

	s.swap(products)
	log.Printf("✅ Catalog loaded: %d products", len(products))
	return nil
}

func seed(file string) ([]models.Product, error) {
	if file == "" {
		return catalog.Default(), nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()
	return catalog.Parse(filepath.Base(file), f)
}

// Index returns the current catalog index. It implements units.Catalog.
func (s *Service) Index() *catalog.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Lookup makes the service usable wherever a units.Catalog is expected
func (s *Service) Lookup(code string) (models.Product, bool) {
	return s.Index().Lookup(code)
}

// Upload replaces the catalog with a parsed CSV or XLSX file
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (int, error) {
	products, err := catalog.Parse(filename, r)
	if err != nil {
		return 0, err
	}
	return s.replace(ctx, products)
}

// Reset restores the built-in catalog
func (s *Service) Reset(ctx context.Context) (int, error) {
	return s.replace(ctx, catalog.Default())
}

func (s *Service) replace(ctx context.Context, products []models.Product) (int, error) {
	if err := s.store.ReplaceAll(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to store products: %w", err)
	}
	s.swap(products)
	log.Printf("🔄 Catalog replaced: %d products", len(products))
	return len(products), nil
}

func (s *Service) swap(products []models.Product) {
	idx := catalog.NewIndex(products)
	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
}
