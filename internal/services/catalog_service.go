package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	domain "github.com/darfidda/storefront/internal/domain"
	"github.com/darfidda/storefront/internal/repositories"
)

// CatalogServiceDeps bundles dependencies required to construct a CatalogService implementation.
type CatalogServiceDeps struct {
	Products repositories.CatalogRepository
	Logger   func(context.Context, string, map[string]any)
}

type catalogService struct {
	repo   repositories.CatalogRepository
	logger func(context.Context, string, map[string]any)

	mu       sync.RWMutex
	products []domain.Product
	byID     map[string]domain.Product
	loaded   bool
}

// NewCatalogService wires a CatalogService backed by the provided repository.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, ErrCatalogRepositoryMissing
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &catalogService{
		repo:   deps.Products,
		logger: logger,
	}, nil
}

// Load fetches the catalogue and validates it before serving queries.
// Duplicate product identifiers are rejected to keep cart keys unambiguous.
func (s *catalogService) Load(ctx context.Context) error {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogLoad, err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, product := range products {
		if _, exists := byID[product.ID]; exists {
			return fmt.Errorf("%w: duplicate product id %q", ErrCatalogLoad, product.ID)
		}
		byID[product.ID] = product
	}

	s.mu.Lock()
	s.products = products
	s.byID = byID
	s.loaded = true
	s.mu.Unlock()

	s.logger(ctx, "catalog.loaded", map[string]any{"products": len(products)})
	return nil
}

// Products returns the full catalogue in document order.
func (s *catalogService) Products(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrCatalogNotLoaded
	}
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// ProductsByCategory filters the catalogue by mega category. Matching is
// case-insensitive and an empty category returns everything.
func (s *catalogService) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return s.Products(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrCatalogNotLoaded
	}

	out := make([]domain.Product, 0)
	for _, product := range s.products {
		if strings.ToLower(product.MegaCategory) == category {
			out = append(out, product)
		}
	}
	return out, nil
}

// FindByID looks up a single product by identifier.
func (s *catalogService) FindByID(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, ErrCatalogProductNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return domain.Product{}, ErrCatalogNotLoaded
	}

	product, ok := s.byID[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %q", ErrCatalogProductNotFound, productID)
	}
	return product, nil
}
