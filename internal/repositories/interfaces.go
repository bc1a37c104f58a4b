package repositories

import (
	"context"
	"errors"

	domain "github.com/darfidda/storefront/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CartRepository persists the single durable cart slot between sessions.
type CartRepository interface {
	// Load returns the stored cart lines. A missing slot yields an empty slice, not an error.
	Load(ctx context.Context) ([]domain.CartLine, error)
	// Save replaces the stored cart lines with the provided snapshot.
	Save(ctx context.Context, lines []domain.CartLine) error
	// Erase removes the cart slot entirely.
	Erase(ctx context.Context) error
}

// CatalogRepository loads the product catalogue from its backing document.
type CatalogRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// OrderRepository archives submitted orders for later inspection.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.OrderRecord) error
}

// IsNotFound reports whether err categorises as a missing record.
func IsNotFound(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsUnavailable reports whether err categorises as a transient backend outage.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}
